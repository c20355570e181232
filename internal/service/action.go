package service

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/deppfellow/obs-live-suite/internal/validation"
)

// ActionInfo describes an action for GET /actions.
type ActionInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// Params names the JSON fields the action reads, empty when none.
	Params []string `json:"params"`
}

type actionFunc func(ctx context.Context, params json.RawMessage) (any, error)

type action struct {
	info ActionInfo
	run  actionFunc
}

// ActionService maps Stream Deck button actions onto the services.
type ActionService struct {
	actions map[string]action
}

// NewActionService registers every Stream Deck action.
func NewActionService(overlay *OverlayService, media *MediaService, quizService *QuizService, obsService *OBSService, profiles *ProfileService) *ActionService {
	s := &ActionService{actions: make(map[string]action)}

	s.register("lower.show", "Show a lower third", []string{"guest_id", "title", "subtitle", "theme_id", "duration_seconds"},
		withParams(func(ctx context.Context, p *model.ShowLowerThirdPayload) (any, error) {
			return overlay.ShowLowerThird(ctx, p)
		}))
	s.register("lower.hide", "Hide the lower third", nil, noParams(func(ctx context.Context) (any, error) {
		return overlay.HideLowerThird(), nil
	}))

	s.register("poster.show", "Show a poster", []string{"poster_id"},
		withParams(func(ctx context.Context, p *model.ShowPosterPayload) (any, error) {
			return overlay.ShowPoster(ctx, p.PosterID)
		}))
	s.register("poster.hide", "Hide the poster", nil, noParams(func(ctx context.Context) (any, error) {
		return overlay.HidePoster(), nil
	}))
	s.register("poster.next", "Show the next poster", nil, noParams(func(ctx context.Context) (any, error) {
		return overlay.NextPoster(ctx)
	}))

	s.register("countdown.start", "Start the countdown", []string{"seconds", "label"},
		withParams(func(ctx context.Context, p *model.StartCountdownPayload) (any, error) {
			return overlay.StartCountdown(p), nil
		}))
	s.register("countdown.pause", "Pause the countdown", nil, noParams(func(ctx context.Context) (any, error) {
		return overlay.PauseCountdown()
	}))
	s.register("countdown.resume", "Resume the countdown", nil, noParams(func(ctx context.Context) (any, error) {
		return overlay.ResumeCountdown()
	}))
	s.register("countdown.reset", "Reset the countdown", nil, noParams(func(ctx context.Context) (any, error) {
		return overlay.ResetCountdown(), nil
	}))

	s.register("media.play", "Play media", nil, noParams(func(ctx context.Context) (any, error) {
		return media.Play()
	}))
	s.register("media.pause", "Pause media", nil, noParams(func(ctx context.Context) (any, error) {
		return media.Pause()
	}))
	s.register("media.next", "Next media item", nil, noParams(func(ctx context.Context) (any, error) {
		return media.Next()
	}))
	s.register("media.previous", "Previous media item", nil, noParams(func(ctx context.Context) (any, error) {
		return media.Previous()
	}))

	s.register("quiz.show", "Show the next (or given) question", []string{"index"},
		withParams(func(ctx context.Context, p *model.ShowQuestionPayload) (any, error) {
			return quizService.ShowQuestion(ctx, p)
		}))
	s.register("quiz.open", "Open answers", nil, noParams(func(ctx context.Context) (any, error) {
		return quizService.OpenAnswers(ctx)
	}))
	s.register("quiz.lock", "Lock answers", nil, noParams(func(ctx context.Context) (any, error) {
		return quizService.Lock(ctx)
	}))
	s.register("quiz.reveal", "Reveal the answer", nil, noParams(func(ctx context.Context) (any, error) {
		return quizService.Reveal(ctx)
	}))
	s.register("quiz.score", "Apply scores", nil, noParams(func(ctx context.Context) (any, error) {
		return quizService.ApplyScores(ctx)
	}))

	s.register("obs.scene", "Switch the OBS program scene", []string{"scene_name"},
		withParams(func(ctx context.Context, p *model.SetScenePayload) (any, error) {
			if err := obsService.SetScene(ctx, p); err != nil {
				return nil, err
			}
			return map[string]string{"scene_name": p.SceneName}, nil
		}))

	s.register("profile.activate", "Activate a profile", []string{"profile_id"},
		withParams(func(ctx context.Context, p *model.ActivateProfileParams) (any, error) {
			return profiles.Activate(ctx, p.ProfileID)
		}))

	return s
}

func (s *ActionService) register(name, description string, params []string, run actionFunc) {
	if params == nil {
		params = []string{}
	}
	s.actions[name] = action{
		info: ActionInfo{Name: name, Description: description, Params: params},
		run:  run,
	}
}

// List returns the actions sorted by name.
func (s *ActionService) List() []ActionInfo {
	infos := make([]ActionInfo, 0, len(s.actions))
	for _, a := range s.actions {
		infos = append(infos, a.info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Dispatch runs action name with its raw JSON params.
func (s *ActionService) Dispatch(ctx context.Context, name string, params json.RawMessage) (any, error) {
	a, ok := s.actions[name]
	if !ok {
		return nil, notFound("ACTION_NOT_FOUND", "Unknown action: "+name)
	}
	return a.run(ctx, params)
}

// withParams decodes and validates params into P before calling fn.
func withParams[P any, PT interface {
	*P
	validation.Validatable
}](fn func(ctx context.Context, p PT) (any, error)) actionFunc {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		p := PT(new(P))
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, p); err != nil {
				return nil, badRequest("ACTION_PARAMS_INVALID", "Action params must be a JSON object: "+err.Error())
			}
		}
		if err := validation.Validate(p); err != nil {
			return nil, err
		}
		return fn(ctx, p)
	}
}

func noParams(fn func(ctx context.Context) (any, error)) actionFunc {
	return func(ctx context.Context, _ json.RawMessage) (any, error) {
		return fn(ctx)
	}
}
