package quiz

import (
	"time"

	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/google/uuid"
)

// QuestionView is a question as overlays see it. The correct answer is only
// filled from reveal on.
type QuestionView struct {
	ID               uuid.UUID          `json:"id"`
	Kind             model.QuestionKind `json:"kind"`
	Prompt           string             `json:"prompt"`
	MediaURL         string             `json:"media_url,omitempty"`
	Options          []string           `json:"options,omitempty"`
	Points           int                `json:"points"`
	TimeLimitSeconds int                `json:"time_limit_seconds"`
	CorrectIndex     *int               `json:"correct_index,omitempty"`
	CorrectValue     *float64           `json:"correct_value,omitempty"`
}

// View is the public quiz state broadcast on the quiz channel.
type View struct {
	SessionID   uuid.UUID     `json:"session_id"`
	Title       string        `json:"title"`
	Phase       Phase         `json:"phase"`
	Index       int           `json:"index"`
	Total       int           `json:"total"`
	RoundID     uuid.UUID     `json:"round_id"`
	Question    *QuestionView `json:"question,omitempty"`
	Deadline    *time.Time    `json:"deadline,omitempty"`
	AnswerCount int           `json:"answer_count"`
	Answered    []uuid.UUID   `json:"answered"`
	Answers     []Answer      `json:"answers,omitempty"`
	Results     []Result      `json:"results,omitempty"`
	Leaderboard []Player      `json:"leaderboard"`
}

func revealed(p Phase) bool {
	return p == PhaseReveal || p == PhaseScoreUpdate
}

// View returns the public state. Answers and results are hidden until reveal.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := View{
		SessionID:   e.sessionID,
		Title:       e.title,
		Phase:       e.phase,
		Index:       e.index,
		Total:       len(e.questions),
		RoundID:     e.roundID,
		AnswerCount: len(e.answers),
		Answered:    make([]uuid.UUID, 0, len(e.answers)),
		Leaderboard: e.leaderboardLocked(),
	}
	if e.deadline != nil {
		d := *e.deadline
		v.Deadline = &d
	}

	for _, p := range v.Leaderboard {
		if _, ok := e.answers[p.ID]; ok {
			v.Answered = append(v.Answered, p.ID)
		}
	}

	if e.index >= 0 && e.index < len(e.questions) && e.phase != PhaseIdle {
		q := e.questions[e.index]
		qv := &QuestionView{
			ID:               q.ID,
			Kind:             q.Kind,
			Prompt:           q.Prompt,
			MediaURL:         q.MediaURL,
			Options:          q.Options,
			Points:           q.Points,
			TimeLimitSeconds: q.TimeLimitSeconds,
		}
		if revealed(e.phase) {
			qv.CorrectIndex = q.CorrectIndex
			qv.CorrectValue = q.CorrectValue
		}
		v.Question = qv
	}

	if revealed(e.phase) {
		for _, p := range v.Leaderboard {
			if a, ok := e.answers[p.ID]; ok {
				v.Answers = append(v.Answers, a)
			}
			if r, ok := e.results[p.ID]; ok {
				v.Results = append(v.Results, *r)
			}
		}
	}

	return v
}

// CurrentQuestion returns the displayed question.
func (e *Engine) CurrentQuestion() (model.QuizQuestion, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.index < 0 || e.index >= len(e.questions) || e.phase == PhaseIdle {
		return model.QuizQuestion{}, false
	}
	return e.questions[e.index], true
}
