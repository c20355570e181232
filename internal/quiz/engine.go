// Package quiz is the host-side quiz state machine.
//
// The engine has no I/O. The quiz service persists its Snapshot after every
// transition and broadcasts its public View.
//
//	idle -> show_question -> accept_answers -> lock -> reveal -> score_update
//	                ^                                              |
//	                +----------------------------------------------+
//
// End returns to idle from any phase.
package quiz

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/google/uuid"
)

// Engine is the live quiz state machine. All methods are safe for
// concurrent use.
type Engine struct {
	mu sync.Mutex

	sessionID uuid.UUID
	title     string
	questions []model.QuizQuestion

	phase    Phase
	index    int
	roundID  uuid.UUID
	deadline *time.Time

	players map[uuid.UUID]*Player
	answers map[uuid.UUID]Answer
	results map[uuid.UUID]*Result

	defaultTimeLimit time.Duration
}

// NewEngine returns an engine with no session loaded.
func NewEngine() *Engine {
	return &Engine{
		phase:   PhaseIdle,
		index:   -1,
		players: make(map[uuid.UUID]*Player),
		answers: make(map[uuid.UUID]Answer),
		results: make(map[uuid.UUID]*Result),
	}
}

// SetDefaultTimeLimit applies d to questions stored without a time limit.
func (e *Engine) SetDefaultTimeLimit(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.defaultTimeLimit = d
}

// ValidateQuestion checks the fields a question kind needs.
func ValidateQuestion(q model.QuizQuestion) error {
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("%w: prompt is required", ErrInvalidQuestion)
	}
	if q.Points < 1 {
		return fmt.Errorf("%w: points must be at least 1", ErrInvalidQuestion)
	}

	switch q.Kind {
	case model.QuestionKindMCQ:
		if len(q.Options) < 2 || len(q.Options) > 6 {
			return fmt.Errorf("%w: multiple choice needs 2 to 6 options", ErrInvalidQuestion)
		}
		if q.CorrectIndex == nil || *q.CorrectIndex < 0 || *q.CorrectIndex >= len(q.Options) {
			return fmt.Errorf("%w: correct_index must point at an option", ErrInvalidQuestion)
		}
	case model.QuestionKindClosest:
		if q.CorrectValue == nil {
			return fmt.Errorf("%w: closest questions need correct_value", ErrInvalidQuestion)
		}
	case model.QuestionKindOpen:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidQuestion, q.Kind)
	}

	return nil
}

// ValidateSession checks that questions can be loaded as a session.
func ValidateSession(questions []model.QuizQuestion) error {
	if len(questions) == 0 {
		return ErrEmptySession
	}
	for i, q := range questions {
		if err := ValidateQuestion(q); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return nil
}

// Load starts a session. Joined players stay with their score reset.
func (e *Engine) Load(sessionID uuid.UUID, title string, questions []model.QuizQuestion) error {
	if err := ValidateSession(questions); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.sessionID = sessionID
	e.title = title
	e.questions = append([]model.QuizQuestion(nil), questions...)
	e.index = -1
	e.resetRoundLocked()
	e.phase = PhaseIdle

	for _, p := range e.players {
		p.Score = 0
	}

	return nil
}

func (e *Engine) resetRoundLocked() {
	e.roundID = uuid.Nil
	e.deadline = nil
	e.answers = make(map[uuid.UUID]Answer)
	e.results = make(map[uuid.UUID]*Result)
}

func (e *Engine) loadedLocked() error {
	if e.sessionID == uuid.Nil {
		return ErrNoSession
	}
	return nil
}

func (e *Engine) expectLocked(phases ...Phase) error {
	if err := e.loadedLocked(); err != nil {
		return err
	}
	for _, p := range phases {
		if e.phase == p {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot leave %s", ErrInvalidTransition, e.phase)
}

// ShowQuestion displays question index, or the next one when index is nil.
func (e *Engine) ShowQuestion(index *int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.expectLocked(PhaseIdle, PhaseScoreUpdate); err != nil {
		return err
	}

	next := e.index + 1
	if index != nil {
		if *index < 0 || *index >= len(e.questions) {
			return ErrQuestionOutOfRange
		}
		next = *index
	} else if next >= len(e.questions) {
		return ErrNoMoreQuestions
	}

	e.index = next
	e.resetRoundLocked()
	e.roundID = uuid.New()
	e.phase = PhaseShowQuestion

	return nil
}

// OpenAnswers starts accepting answers. It returns the answering deadline,
// nil for an untimed question.
func (e *Engine) OpenAnswers(now time.Time) (*time.Time, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.expectLocked(PhaseShowQuestion); err != nil {
		return nil, err
	}

	limit := time.Duration(e.questions[e.index].TimeLimitSeconds) * time.Second
	if limit == 0 {
		limit = e.defaultTimeLimit
	}
	if limit > 0 {
		d := now.Add(limit)
		e.deadline = &d
	}

	e.phase = PhaseAcceptAnswers

	if e.deadline == nil {
		return nil, nil
	}
	d := *e.deadline
	return &d, nil
}

// Submit records playerID's answer. A later answer replaces an earlier one.
func (e *Engine) Submit(playerID uuid.UUID, in AnswerInput, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.loadedLocked(); err != nil {
		return err
	}
	if e.phase != PhaseAcceptAnswers {
		return ErrAnswersClosed
	}
	if e.deadline != nil && now.After(*e.deadline) {
		return ErrAnswersClosed
	}
	if _, ok := e.players[playerID]; !ok {
		return ErrUnknownPlayer
	}

	answer, err := validateAnswer(e.questions[e.index], in)
	if err != nil {
		return err
	}
	answer.PlayerID = playerID
	answer.SubmittedAt = now.UTC()

	e.answers[playerID] = answer
	return nil
}

func validateAnswer(q model.QuizQuestion, in AnswerInput) (Answer, error) {
	switch q.Kind {
	case model.QuestionKindMCQ:
		if in.Choice == nil || *in.Choice < 0 || *in.Choice >= len(q.Options) {
			return Answer{}, fmt.Errorf("%w: choice must be between 0 and %d", ErrInvalidAnswer, len(q.Options)-1)
		}
		c := *in.Choice
		return Answer{Choice: &c}, nil

	case model.QuestionKindClosest:
		if in.Value == nil || math.IsNaN(*in.Value) || math.IsInf(*in.Value, 0) {
			return Answer{}, fmt.Errorf("%w: value must be a number", ErrInvalidAnswer)
		}
		v := *in.Value
		return Answer{Value: &v}, nil

	default:
		text := strings.TrimSpace(in.Text)
		if text == "" {
			return Answer{}, fmt.Errorf("%w: text is required", ErrInvalidAnswer)
		}
		return Answer{Text: text}, nil
	}
}

// Lock stops accepting answers.
func (e *Engine) Lock() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.expectLocked(PhaseAcceptAnswers); err != nil {
		return err
	}
	e.phase = PhaseLock
	return nil
}

// LockRound locks only when roundID is still answering. It reports whether
// it changed anything, so a stale auto-lock timer is harmless.
func (e *Engine) LockRound(roundID uuid.UUID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseAcceptAnswers || e.roundID != roundID {
		return false
	}
	e.phase = PhaseLock
	return true
}

// Reveal shows the correct answer and marks each answer right or wrong.
// Open questions start all wrong; the host marks them with Award.
func (e *Engine) Reveal() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.expectLocked(PhaseLock); err != nil {
		return err
	}

	e.results = score(e.questions[e.index], e.answers)
	e.phase = PhaseReveal
	return nil
}

// score computes per-player correctness for q. An answer of the wrong shape
// for q.Kind scores as wrong.
func score(q model.QuizQuestion, answers map[uuid.UUID]Answer) map[uuid.UUID]*Result {
	results := make(map[uuid.UUID]*Result, len(answers))

	switch q.Kind {
	case model.QuestionKindMCQ:
		for id, a := range answers {
			correct := a.Choice != nil && q.CorrectIndex != nil && *a.Choice == *q.CorrectIndex
			results[id] = &Result{PlayerID: id, Correct: correct}
		}

	case model.QuestionKindClosest:
		best := math.Inf(1)
		for id, a := range answers {
			if a.Value == nil || q.CorrectValue == nil {
				results[id] = &Result{PlayerID: id}
				continue
			}
			d := math.Abs(*a.Value - *q.CorrectValue)
			results[id] = &Result{PlayerID: id, Distance: &d}
			if d < best {
				best = d
			}
		}
		for _, r := range results {
			r.Correct = r.Distance != nil && *r.Distance == best
		}

	default:
		for id := range answers {
			results[id] = &Result{PlayerID: id}
		}
	}

	return results
}

// Award marks an open answer right or wrong during reveal.
func (e *Engine) Award(playerID uuid.UUID, correct bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.expectLocked(PhaseReveal); err != nil {
		return err
	}
	if e.questions[e.index].Kind != model.QuestionKindOpen {
		return ErrNotOpenQuestion
	}
	if _, ok := e.players[playerID]; !ok {
		return ErrUnknownPlayer
	}
	r, ok := e.results[playerID]
	if !ok {
		return ErrNoAnswer
	}
	r.Correct = correct
	return nil
}

// ApplyScores adds the question's points to every correct player.
func (e *Engine) ApplyScores() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.expectLocked(PhaseReveal); err != nil {
		return err
	}

	points := e.questions[e.index].Points
	for id, r := range e.results {
		if !r.Correct {
			continue
		}
		r.Points = points
		if p, ok := e.players[id]; ok {
			p.Score += points
		}
	}

	e.phase = PhaseScoreUpdate
	return nil
}

// End returns to idle from any phase, keeping scores and position.
func (e *Engine) End() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.loadedLocked(); err != nil {
		return err
	}
	e.resetRoundLocked()
	e.phase = PhaseIdle
	return nil
}

// Reset returns to idle before the first question with every score at zero.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.loadedLocked(); err != nil {
		return err
	}
	e.resetRoundLocked()
	e.index = -1
	e.phase = PhaseIdle
	for _, p := range e.players {
		p.Score = 0
	}
	return nil
}

// Join adds a player, or refreshes name and avatar when already joined.
func (e *Engine) Join(p model.QuizPlayer) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if existing, ok := e.players[p.ID]; ok {
		existing.DisplayName = p.DisplayName
		existing.AvatarURL = p.AvatarURL
		return
	}
	e.players[p.ID] = &Player{ID: p.ID, DisplayName: p.DisplayName, AvatarURL: p.AvatarURL}
}

// Leave removes a player with their answer for the current round.
func (e *Engine) Leave(playerID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.players[playerID]; !ok {
		return ErrUnknownPlayer
	}
	delete(e.players, playerID)
	delete(e.answers, playerID)
	delete(e.results, playerID)
	return nil
}

// AdjustScore applies a manual correction and returns the new score.
func (e *Engine) AdjustScore(playerID uuid.UUID, delta int) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.players[playerID]
	if !ok {
		return 0, ErrUnknownPlayer
	}
	p.Score += delta
	return p.Score, nil
}

// Leaderboard orders players by score desc, then display name asc.
func (e *Engine) Leaderboard() []Player {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.leaderboardLocked()
}

func (e *Engine) leaderboardLocked() []Player {
	out := make([]Player, 0, len(e.players))
	for _, p := range e.players {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].DisplayName != out[j].DisplayName {
			return out[i].DisplayName < out[j].DisplayName
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// SessionID returns the loaded session, uuid.Nil when none.
func (e *Engine) SessionID() uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionID
}

// RoundID identifies the current question display; it changes on every
// ShowQuestion.
func (e *Engine) RoundID() uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.roundID
}
