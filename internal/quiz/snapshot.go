package quiz

import (
	"fmt"
	"sort"
	"time"

	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/google/uuid"
)

// Snapshot is the persisted engine state, stored as quiz_sessions.state.
// It carries the questions as they were loaded, so editing the question bank
// does not change a session that is already running.
type Snapshot struct {
	SessionID uuid.UUID            `json:"session_id"`
	Title     string               `json:"title"`
	Questions []model.QuizQuestion `json:"questions,omitempty"`
	Phase     Phase                `json:"phase"`
	Index     int                  `json:"index"`
	RoundID   uuid.UUID            `json:"round_id"`
	Deadline  *time.Time           `json:"deadline,omitempty"`
	Players   []Player             `json:"players"`
	Answers   []Answer             `json:"answers"`
	Results   []Result             `json:"results"`
}

// Snapshot copies the engine state for persistence.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		SessionID: e.sessionID,
		Title:     e.title,
		Questions: append([]model.QuizQuestion(nil), e.questions...),
		Phase:     e.phase,
		Index:     e.index,
		RoundID:   e.roundID,
		Players:   e.leaderboardLocked(),
		Answers:   make([]Answer, 0, len(e.answers)),
		Results:   make([]Result, 0, len(e.results)),
	}
	if e.deadline != nil {
		d := *e.deadline
		s.Deadline = &d
	}
	for _, a := range e.answers {
		s.Answers = append(s.Answers, a)
	}
	sort.Slice(s.Answers, func(i, j int) bool { return s.Answers[i].SubmittedAt.Before(s.Answers[j].SubmittedAt) })
	for _, r := range e.results {
		s.Results = append(s.Results, *r)
	}
	sort.Slice(s.Results, func(i, j int) bool { return s.Results[i].PlayerID.String() < s.Results[j].PlayerID.String() })

	return s
}

// Restore replaces the engine state with s. The snapshot's own questions win;
// questions, the session's current questions in the bank, are used for
// snapshots written without them.
//
// Answers that no longer fit the current question are dropped together with
// their results.
func (e *Engine) Restore(s Snapshot, questions []model.QuizQuestion) error {
	if len(s.Questions) > 0 {
		questions = s.Questions
	}
	if err := ValidateSession(questions); err != nil {
		return err
	}
	if s.Index < -1 || s.Index >= len(questions) {
		return fmt.Errorf("%w: snapshot index %d for %d questions", ErrQuestionOutOfRange, s.Index, len(questions))
	}
	if s.Index == -1 && s.Phase != PhaseIdle {
		return fmt.Errorf("%w: phase %s without a question", ErrInvalidTransition, s.Phase)
	}

	switch s.Phase {
	case PhaseIdle, PhaseShowQuestion, PhaseAcceptAnswers, PhaseLock, PhaseReveal, PhaseScoreUpdate:
	default:
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidTransition, s.Phase)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.sessionID = s.SessionID
	e.title = s.Title
	e.questions = append([]model.QuizQuestion(nil), questions...)
	e.phase = s.Phase
	e.index = s.Index
	e.roundID = s.RoundID
	e.deadline = nil
	if s.Deadline != nil {
		d := *s.Deadline
		e.deadline = &d
	}

	e.players = make(map[uuid.UUID]*Player, len(s.Players))
	for _, p := range s.Players {
		p := p
		e.players[p.ID] = &p
	}

	e.answers = make(map[uuid.UUID]Answer, len(s.Answers))
	if s.Index >= 0 {
		q := questions[s.Index]
		for _, a := range s.Answers {
			valid, err := validateAnswer(q, AnswerInput{Choice: a.Choice, Value: a.Value, Text: a.Text})
			if err != nil {
				continue
			}
			valid.PlayerID = a.PlayerID
			valid.SubmittedAt = a.SubmittedAt
			e.answers[a.PlayerID] = valid
		}
	}

	e.results = make(map[uuid.UUID]*Result, len(s.Results))
	for _, r := range s.Results {
		if _, ok := e.answers[r.PlayerID]; !ok {
			continue
		}
		r := r
		e.results[r.PlayerID] = &r
	}

	return nil
}
