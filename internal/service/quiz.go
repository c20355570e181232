package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/deppfellow/obs-live-suite/internal/errs"
	"github.com/deppfellow/obs-live-suite/internal/hub"
	"github.com/deppfellow/obs-live-suite/internal/lib/job"
	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/deppfellow/obs-live-suite/internal/quiz"
	"github.com/deppfellow/obs-live-suite/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// QuizService runs the live quiz: it drives the engine, persists a snapshot
// after every change, broadcasts the public view on the quiz channel and
// locks timed questions at their deadline.
type QuizService struct {
	// mu orders engine changes with their persistence and broadcast, so
	// overlays and the database never see snapshots out of order.
	mu sync.Mutex

	engine    *quiz.Engine
	questions QuestionStore
	players   PlayerStore
	sessions  SessionStore

	hub    hub.Broadcaster
	jobs   job.Scheduler
	logger *zerolog.Logger
	now    clock

	defaultTimeLimit time.Duration
}

// QuizDeps are the stores and infrastructure NewQuizService wires in.
// DefaultTimeLimit applies to questions stored without a time limit.
type QuizDeps struct {
	Questions        QuestionStore
	Players          PlayerStore
	Sessions         SessionStore
	Hub              hub.Broadcaster
	Jobs             job.Scheduler
	Logger           *zerolog.Logger
	DefaultTimeLimit time.Duration
}

// NewQuizService builds the service with no session loaded and registers
// the auto-lock handler on d.Jobs. Call Restore to resume the active session.
func NewQuizService(d QuizDeps) *QuizService {
	s := &QuizService{
		engine:    newEngine(d.DefaultTimeLimit),
		questions: d.Questions,
		players:   d.Players,
		sessions:  d.Sessions,
		hub:       d.Hub,
		jobs:      d.Jobs,
		logger:    d.Logger,
		now:       time.Now,

		defaultTimeLimit: d.DefaultTimeLimit,
	}

	s.jobs.Handle(job.TaskQuizAutoLock, s.handleAutoLock)

	return s
}

func newEngine(defaultTimeLimit time.Duration) *quiz.Engine {
	engine := quiz.NewEngine()
	engine.SetDefaultTimeLimit(defaultTimeLimit)
	return engine
}

// View returns the public quiz state.
func (s *QuizService) View() quiz.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.View()
}

// Load makes sessionID the active session and rewinds it to idle.
func (s *QuizService) Load(ctx context.Context, sessionID uuid.UUID) (*quiz.View, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	questions, err := sessionQuestions(ctx, s.questions, session.QuestionIDs)
	if err != nil {
		return nil, err
	}

	if err := quiz.ValidateSession(questions); err != nil {
		return nil, quizError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The engine only switches once the database agrees, so a restart
	// restores the session that is running.
	if err := s.sessions.SetActive(ctx, session.ID); err != nil {
		return nil, err
	}
	if err := s.engine.Load(session.ID, session.Title, questions); err != nil {
		return nil, quizError(err)
	}

	return s.commitLocked(ctx, "quiz.load"), nil
}

// Unload closes the active session. Its last snapshot stays stored.
func (s *QuizService) Unload(ctx context.Context) (*quiz.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.ClearActive(ctx); err != nil {
		return nil, err
	}
	s.engine = newEngine(s.defaultTimeLimit)

	view := s.engine.View()
	publish(s.hub, s.logger, hub.ChannelQuiz, "quiz.unload", view)
	return &view, nil
}

func (s *QuizService) ShowQuestion(ctx context.Context, p *model.ShowQuestionPayload) (*quiz.View, error) {
	return s.apply(ctx, "quiz.show_question", func() error {
		return s.engine.ShowQuestion(p.Index)
	})
}

// OpenAnswers starts accepting answers and, for a timed question, schedules
// the auto-lock at the deadline.
func (s *QuizService) OpenAnswers(ctx context.Context) (*quiz.View, error) {
	var deadline *time.Time

	view, err := s.apply(ctx, "quiz.open_answers", func() error {
		var err error
		deadline, err = s.engine.OpenAnswers(s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	if deadline != nil {
		s.scheduleAutoLock(view.SessionID, view.RoundID, deadline.Sub(s.now()))
	}
	return view, nil
}

func (s *QuizService) Submit(ctx context.Context, p *model.SubmitAnswerPayload) (*quiz.View, error) {
	in := quiz.AnswerInput{Choice: p.Choice, Value: p.Value, Text: p.Text}
	return s.apply(ctx, "quiz.answer", func() error {
		return s.engine.Submit(p.PlayerID, in, s.now())
	})
}

func (s *QuizService) Lock(ctx context.Context) (*quiz.View, error) {
	return s.apply(ctx, "quiz.lock", func() error { return s.engine.Lock() })
}

func (s *QuizService) Reveal(ctx context.Context) (*quiz.View, error) {
	return s.apply(ctx, "quiz.reveal", func() error { return s.engine.Reveal() })
}

func (s *QuizService) Award(ctx context.Context, p *model.AwardPayload) (*quiz.View, error) {
	return s.apply(ctx, "quiz.award", func() error {
		return s.engine.Award(p.PlayerID, p.Correct)
	})
}

func (s *QuizService) ApplyScores(ctx context.Context) (*quiz.View, error) {
	return s.apply(ctx, "quiz.score_update", func() error { return s.engine.ApplyScores() })
}

func (s *QuizService) End(ctx context.Context) (*quiz.View, error) {
	return s.apply(ctx, "quiz.end", func() error { return s.engine.End() })
}

func (s *QuizService) Reset(ctx context.Context) (*quiz.View, error) {
	return s.apply(ctx, "quiz.reset", func() error { return s.engine.Reset() })
}

// Join adds a roster player to the running quiz.
func (s *QuizService) Join(ctx context.Context, p *model.PlayerRefPayload) (*quiz.View, error) {
	player, err := s.players.GetByID(ctx, p.PlayerID)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, "quiz.player_joined", func() error {
		s.engine.Join(*player)
		return nil
	})
}

func (s *QuizService) Leave(ctx context.Context, p *model.PlayerRefPayload) (*quiz.View, error) {
	return s.apply(ctx, "quiz.player_left", func() error {
		return s.engine.Leave(p.PlayerID)
	})
}

func (s *QuizService) AdjustScore(ctx context.Context, p *model.AdjustScorePayload) (*quiz.View, error) {
	return s.apply(ctx, "quiz.score_adjusted", func() error {
		_, err := s.engine.AdjustScore(p.PlayerID, p.Delta)
		return err
	})
}

func (s *QuizService) Leaderboard() []quiz.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Leaderboard()
}

// apply runs one engine change on the loaded session, then persists and
// broadcasts it as typ.
func (s *QuizService) apply(ctx context.Context, typ string, fn func() error) (*quiz.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine.SessionID() == uuid.Nil {
		return nil, quizError(quiz.ErrNoSession)
	}
	if err := fn(); err != nil {
		return nil, quizError(err)
	}

	return s.commitLocked(ctx, typ), nil
}

// commitLocked persists the snapshot and broadcasts the view. The engine is
// the source of truth while running, so a failed write is logged and the
// next change writes the full snapshot again.
func (s *QuizService) commitLocked(ctx context.Context, typ string) *quiz.View {
	snapshot := s.engine.Snapshot()

	state, err := json.Marshal(snapshot)
	if err == nil {
		err = s.sessions.SaveState(ctx, snapshot.SessionID, state)
	}
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("session_id", snapshot.SessionID.String()).
			Str("type", typ).
			Msg("failed to persist quiz state")
	}

	view := s.engine.View()
	publish(s.hub, s.logger, hub.ChannelQuiz, typ, view)
	return &view
}

func (s *QuizService) scheduleAutoLock(sessionID, roundID uuid.UUID, delay time.Duration) {
	if delay < 0 {
		delay = 0
	}

	task, err := job.NewQuizAutoLockTask(sessionID, roundID)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), broadcastTimeout)
		defer cancel()
		err = s.jobs.Schedule(ctx, task, delay)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("round_id", roundID.String()).Msg("failed to schedule quiz auto-lock")
	}
}

// handleAutoLock locks answers unless the host already moved on.
func (s *QuizService) handleAutoLock(ctx context.Context, task *asynq.Task) error {
	payload, err := job.DecodePayload[job.QuizAutoLockPayload](task)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine.SessionID() != payload.SessionID || !s.engine.LockRound(payload.RoundID) {
		return nil
	}

	s.logger.Info().Str("round_id", payload.RoundID.String()).Msg("quiz answers auto-locked")
	s.commitLocked(ctx, "quiz.lock")
	return nil
}

// Restore reloads the active session after a restart, including a pending
// auto-lock. Having no active session is not an error.
func (s *QuizService) Restore(ctx context.Context) error {
	session, err := s.sessions.GetActive(ctx)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil
		}
		return err
	}

	var snapshot quiz.Snapshot
	hasSnapshot := len(session.State) > 0 && string(session.State) != "null"
	if hasSnapshot {
		if err := json.Unmarshal(session.State, &snapshot); err != nil {
			return err
		}
	}

	// Snapshots carry the questions they were loaded with; older ones and
	// sessions never started fall back to the bank.
	var questions []model.QuizQuestion
	if len(snapshot.Questions) == 0 {
		questions, err = sessionQuestions(ctx, s.questions, session.QuestionIDs)
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if hasSnapshot {
		if err := s.engine.Restore(snapshot, questions); err != nil {
			return err
		}
	} else if err := s.engine.Load(session.ID, session.Title, questions); err != nil {
		return err
	}

	if snapshot.Phase == quiz.PhaseAcceptAnswers && snapshot.Deadline != nil {
		s.scheduleAutoLock(snapshot.SessionID, snapshot.RoundID, snapshot.Deadline.Sub(s.now()))
	}

	s.logger.Info().
		Str("session_id", session.ID.String()).
		Str("phase", string(s.engine.Phase())).
		Msg("quiz session restored")

	return nil
}

// quizError maps engine errors to client errors.
func quizError(err error) error {
	if isHTTPError(err) {
		return err
	}

	var code string
	status := 0

	switch {
	case errors.Is(err, quiz.ErrNoSession):
		code, status = "QUIZ_NOT_LOADED", http.StatusConflict
	case errors.Is(err, quiz.ErrInvalidTransition):
		code, status = "QUIZ_INVALID_TRANSITION", http.StatusConflict
	case errors.Is(err, quiz.ErrNoMoreQuestions):
		code, status = "QUIZ_NO_MORE_QUESTIONS", http.StatusConflict
	case errors.Is(err, quiz.ErrAnswersClosed):
		code, status = "QUIZ_ANSWERS_CLOSED", http.StatusConflict
	case errors.Is(err, quiz.ErrNotOpenQuestion):
		code, status = "QUIZ_NOT_OPEN_QUESTION", http.StatusConflict
	case errors.Is(err, quiz.ErrQuestionOutOfRange):
		code, status = "QUIZ_QUESTION_OUT_OF_RANGE", http.StatusBadRequest
	case errors.Is(err, quiz.ErrUnknownPlayer):
		code, status = "QUIZ_UNKNOWN_PLAYER", http.StatusBadRequest
	case errors.Is(err, quiz.ErrInvalidAnswer):
		code, status = "QUIZ_INVALID_ANSWER", http.StatusBadRequest
	case errors.Is(err, quiz.ErrNoAnswer):
		code, status = "QUIZ_NO_ANSWER", http.StatusBadRequest
	case errors.Is(err, quiz.ErrEmptySession):
		code, status = "QUIZ_SESSION_EMPTY", http.StatusBadRequest
	case errors.Is(err, quiz.ErrInvalidQuestion):
		code, status = "QUIZ_QUESTION_INVALID", http.StatusBadRequest
	default:
		return err
	}

	if status == http.StatusConflict {
		return errs.NewConflictError(err.Error(), true, &code)
	}
	return errs.NewBadRequestError(err.Error(), true, &code, nil, nil)
}
