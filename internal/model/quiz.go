package model

import (
	"encoding/json"

	"github.com/deppfellow/obs-live-suite/internal/validation"
	"github.com/google/uuid"
)

// QuestionKind decides how answers are validated and scored.
type QuestionKind string

const (
	// QuestionKindMCQ is multiple choice; answers are option indexes.
	QuestionKindMCQ QuestionKind = "mcq"
	// QuestionKindClosest is a numeric guess; closest answers win.
	QuestionKindClosest QuestionKind = "closest"
	// QuestionKindOpen is free text scored by the host.
	QuestionKindOpen QuestionKind = "open"
)

// QuizQuestion is a question from the question bank.
type QuizQuestion struct {
	Base
	Kind             QuestionKind `json:"kind" db:"kind"`
	Prompt           string       `json:"prompt" db:"prompt"`
	MediaURL         string       `json:"media_url" db:"media_url"`
	Options          []string     `json:"options" db:"options"`
	CorrectIndex     *int         `json:"correct_index" db:"correct_index"`
	CorrectValue     *float64     `json:"correct_value" db:"correct_value"`
	Points           int          `json:"points" db:"points"`
	TimeLimitSeconds int          `json:"time_limit_seconds" db:"time_limit_seconds"`
	Tags             []string     `json:"tags" db:"tags"`
}

// QuizPlayer is a contestant in the roster.
type QuizPlayer struct {
	Base
	DisplayName string `json:"display_name" db:"display_name"`
	AvatarURL   string `json:"avatar_url" db:"avatar_url"`
}

// QuizSession is an ordered selection of questions played as one show.
// State holds the last engine snapshot, nil until the session is loaded.
type QuizSession struct {
	Base
	Title       string          `json:"title" db:"title"`
	QuestionIDs []uuid.UUID     `json:"question_ids" db:"question_ids"`
	State       json.RawMessage `json:"state,omitempty" db:"state"`
	IsActive    bool            `json:"is_active" db:"is_active"`
}

// CreateQuestionPayload is the body of POST /quiz/questions. Kind specific
// rules (option count, correct answer) are checked by the quiz engine.
type CreateQuestionPayload struct {
	Kind             QuestionKind `json:"kind" validate:"required,oneof=mcq closest open"`
	Prompt           string       `json:"prompt" validate:"required,max=1000"`
	MediaURL         string       `json:"media_url" validate:"max=2000"`
	Options          []string     `json:"options" validate:"max=6,dive,required,max=200"`
	CorrectIndex     *int         `json:"correct_index" validate:"omitempty,min=0"`
	CorrectValue     *float64     `json:"correct_value"`
	Points           int          `json:"points" validate:"min=0,max=1000"`
	TimeLimitSeconds int          `json:"time_limit_seconds" validate:"min=0,max=3600"`
	Tags             []string     `json:"tags" validate:"max=20,dive,required,max=50"`
}

func (p *CreateQuestionPayload) Validate() error {
	return validation.Struct(p)
}

// Question builds the row. Points default to 1.
func (p *CreateQuestionPayload) Question() *QuizQuestion {
	points := p.Points
	if points == 0 {
		points = 1
	}
	return &QuizQuestion{
		Kind:             p.Kind,
		Prompt:           p.Prompt,
		MediaURL:         p.MediaURL,
		Options:          p.Options,
		CorrectIndex:     p.CorrectIndex,
		CorrectValue:     p.CorrectValue,
		Points:           points,
		TimeLimitSeconds: p.TimeLimitSeconds,
		Tags:             p.Tags,
	}
}

// UpdateQuestionPayload is the body of PUT /quiz/questions/:id.
type UpdateQuestionPayload struct {
	ID uuid.UUID `param:"id" json:"-" validate:"required"`
	CreateQuestionPayload
}

func (p *UpdateQuestionPayload) Validate() error {
	return validation.Struct(p)
}

func (p *UpdateQuestionPayload) Question() *QuizQuestion {
	q := p.CreateQuestionPayload.Question()
	q.ID = p.ID
	return q
}

// ListQuestionsPayload adds a tag filter to ListPayload.
type ListQuestionsPayload struct {
	ListPayload
	Tag string `query:"tag" validate:"max=50"`
}

func (p *ListQuestionsPayload) Validate() error {
	return validation.Struct(p)
}

// PlayerPayload is the body of POST/PUT /quiz/players.
type PlayerPayload struct {
	ID          uuid.UUID `param:"id" json:"-"`
	DisplayName string    `json:"display_name" validate:"required,max=80"`
	AvatarURL   string    `json:"avatar_url" validate:"max=2000"`
}

func (p *PlayerPayload) Validate() error {
	return validation.Struct(p)
}

func (p *PlayerPayload) Player() *QuizPlayer {
	return &QuizPlayer{Base: Base{ID: p.ID}, DisplayName: p.DisplayName, AvatarURL: p.AvatarURL}
}

// SessionPayload is the body of POST/PUT /quiz/sessions.
type SessionPayload struct {
	ID          uuid.UUID   `param:"id" json:"-"`
	Title       string      `json:"title" validate:"required,max=200"`
	QuestionIDs []uuid.UUID `json:"question_ids" validate:"required,min=1,max=500"`
}

func (p *SessionPayload) Validate() error {
	return validation.Struct(p)
}

func (p *SessionPayload) Session() *QuizSession {
	return &QuizSession{Base: Base{ID: p.ID}, Title: p.Title, QuestionIDs: p.QuestionIDs}
}

// ShowQuestionPayload shows question Index, or the next one when nil.
type ShowQuestionPayload struct {
	Index *int `json:"index" validate:"omitempty,min=0"`
}

func (p *ShowQuestionPayload) Validate() error {
	return validation.Struct(p)
}

// PlayerRefPayload names a player in the running quiz.
type PlayerRefPayload struct {
	PlayerID uuid.UUID `json:"player_id" validate:"required"`
}

func (p *PlayerRefPayload) Validate() error {
	return validation.Struct(p)
}

// SubmitAnswerPayload is the body of POST /quiz/answers. Which of Choice,
// Value and Text is used depends on the question kind.
type SubmitAnswerPayload struct {
	PlayerID uuid.UUID `json:"player_id" validate:"required"`
	Choice   *int      `json:"choice"`
	Value    *float64  `json:"value"`
	Text     string    `json:"text" validate:"max=500"`
}

func (p *SubmitAnswerPayload) Validate() error {
	return validation.Struct(p)
}

// AwardPayload marks an open answer right or wrong during reveal.
type AwardPayload struct {
	PlayerID uuid.UUID `json:"player_id" validate:"required"`
	Correct  bool      `json:"correct"`
}

func (p *AwardPayload) Validate() error {
	return validation.Struct(p)
}

// AdjustScorePayload applies a manual score correction.
type AdjustScorePayload struct {
	PlayerID uuid.UUID `json:"player_id" validate:"required"`
	Delta    int       `json:"delta" validate:"required,min=-10000,max=10000"`
}

func (p *AdjustScorePayload) Validate() error {
	return validation.Struct(p)
}

// LoadQuizPayload is the body of POST /quiz/load.
type LoadQuizPayload struct {
	SessionID uuid.UUID `json:"session_id" validate:"required"`
}

func (p *LoadQuizPayload) Validate() error {
	return validation.Struct(p)
}
