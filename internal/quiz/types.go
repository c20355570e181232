package quiz

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Phase is the host state of the running quiz.
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseShowQuestion  Phase = "show_question"
	PhaseAcceptAnswers Phase = "accept_answers"
	PhaseLock          Phase = "lock"
	PhaseReveal        Phase = "reveal"
	PhaseScoreUpdate   Phase = "score_update"
)

var (
	ErrNoSession          = errors.New("no quiz session loaded")
	ErrEmptySession       = errors.New("quiz session has no questions")
	ErrInvalidQuestion    = errors.New("invalid quiz question")
	ErrInvalidTransition  = errors.New("invalid quiz phase transition")
	ErrNoMoreQuestions    = errors.New("no more questions")
	ErrQuestionOutOfRange = errors.New("question index out of range")
	ErrAnswersClosed      = errors.New("answers are closed")
	ErrUnknownPlayer      = errors.New("player has not joined")
	ErrInvalidAnswer      = errors.New("invalid answer")
	ErrNoAnswer           = errors.New("player did not answer")
	ErrNotOpenQuestion    = errors.New("only open questions are awarded by the host")
)

// Player is a contestant and their running score.
type Player struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Score       int       `json:"score"`
}

// AnswerInput is what a player submits. Exactly one field is used, picked by
// the question kind.
type AnswerInput struct {
	Choice *int     `json:"choice,omitempty"`
	Value  *float64 `json:"value,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// Answer is a validated submission.
type Answer struct {
	PlayerID    uuid.UUID `json:"player_id"`
	Choice      *int      `json:"choice,omitempty"`
	Value       *float64  `json:"value,omitempty"`
	Text        string    `json:"text,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Result is the outcome of one player's answer once revealed.
type Result struct {
	PlayerID uuid.UUID `json:"player_id"`
	Correct  bool      `json:"correct"`
	// Distance is set for closest-number questions.
	Distance *float64 `json:"distance,omitempty"`
	// Points is filled by ApplyScores.
	Points int `json:"points"`
}
