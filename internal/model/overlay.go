package model

import (
	"encoding/json"
	"time"

	"github.com/deppfellow/obs-live-suite/internal/validation"
	"github.com/google/uuid"
)

// LowerThirdState is what the lower third overlay currently displays.
type LowerThirdState struct {
	Visible  bool       `json:"visible"`
	ShowID   uuid.UUID  `json:"show_id,omitempty"`
	GuestID  *uuid.UUID `json:"guest_id,omitempty"`
	Title    string     `json:"title,omitempty"`
	Subtitle string     `json:"subtitle,omitempty"`
	Avatar   string     `json:"avatar_url,omitempty"`
	Accent   string     `json:"accent_color,omitempty"`
	Theme    *Theme     `json:"theme,omitempty"`
	ShownAt  *time.Time `json:"shown_at,omitempty"`
	HideAt   *time.Time `json:"hide_at,omitempty"`
}

// PosterState is the poster overlay state. Rotation is nil when stopped.
type PosterState struct {
	Visible  bool            `json:"visible"`
	Poster   *Poster         `json:"poster,omitempty"`
	Rotation *PosterRotation `json:"rotation,omitempty"`
}

// CountdownStatus is the countdown lifecycle.
type CountdownStatus string

const (
	CountdownIdle     CountdownStatus = "idle"
	CountdownRunning  CountdownStatus = "running"
	CountdownPaused   CountdownStatus = "paused"
	CountdownFinished CountdownStatus = "finished"
)

// CountdownState is the countdown overlay state. Remaining is computed from
// EndsAt while running.
type CountdownState struct {
	Status           CountdownStatus `json:"status"`
	Label            string          `json:"label,omitempty"`
	DurationSeconds  int             `json:"duration_seconds"`
	RemainingSeconds int             `json:"remaining_seconds"`
	EndsAt           *time.Time      `json:"ends_at,omitempty"`
	RunID            uuid.UUID       `json:"run_id,omitempty"`
}

// MediaState is the media overlay state.
type MediaState struct {
	PlaylistID *uuid.UUID    `json:"playlist_id,omitempty"`
	Name       string        `json:"name,omitempty"`
	Loop       bool          `json:"loop"`
	Index      int           `json:"index"`
	Playing    bool          `json:"playing"`
	Current    *PlaylistItem `json:"current,omitempty"`
	Total      int           `json:"total"`
}

// OverlayState is returned by GET /overlays.
type OverlayState struct {
	LowerThird LowerThirdState `json:"lower_third"`
	Poster     PosterState     `json:"poster"`
	Countdown  CountdownState  `json:"countdown"`
	Media      MediaState      `json:"media"`
}

// ShowLowerThirdPayload shows a guest, or a free title when GuestID is nil.
// DurationSeconds nil uses the configured default, 0 keeps it until hidden.
type ShowLowerThirdPayload struct {
	GuestID         *uuid.UUID `json:"guest_id"`
	Title           string     `json:"title" validate:"max=200"`
	Subtitle        string     `json:"subtitle" validate:"max=200"`
	ThemeID         *uuid.UUID `json:"theme_id"`
	DurationSeconds *int       `json:"duration_seconds" validate:"omitempty,min=0,max=3600"`
}

func (p *ShowLowerThirdPayload) Validate() error {
	if err := validation.Struct(p); err != nil {
		return err
	}
	if p.GuestID == nil && p.Title == "" {
		return validation.CustomValidationErrors{{Field: "title", Message: "is required without guest_id"}}
	}
	return nil
}

// ShowPosterPayload is the body of POST /overlays/poster/show.
type ShowPosterPayload struct {
	PosterID uuid.UUID `json:"poster_id" validate:"required"`
}

func (p *ShowPosterPayload) Validate() error {
	return validation.Struct(p)
}

// StartRotationPayload starts poster rotation. Empty PosterIDs rotates all
// enabled posters.
type StartRotationPayload struct {
	PosterIDs       []uuid.UUID `json:"poster_ids" validate:"max=200"`
	IntervalSeconds int         `json:"interval_seconds" validate:"required,min=5,max=86400"`
}

func (p *StartRotationPayload) Validate() error {
	return validation.Struct(p)
}

// StartCountdownPayload is the body of POST /overlays/countdown/start.
type StartCountdownPayload struct {
	Seconds int    `json:"seconds" validate:"required,min=1,max=86400"`
	Label   string `json:"label" validate:"max=120"`
}

func (p *StartCountdownPayload) Validate() error {
	return validation.Struct(p)
}

// AddCountdownPayload adds (or with a negative value removes) time.
type AddCountdownPayload struct {
	Seconds int `json:"seconds" validate:"required,min=-86400,max=86400"`
}

func (p *AddCountdownPayload) Validate() error {
	return validation.Struct(p)
}

// LoadPlaylistPayload is the body of POST /media/load.
type LoadPlaylistPayload struct {
	PlaylistID uuid.UUID `json:"playlist_id" validate:"required"`
	Autoplay   bool      `json:"autoplay"`
}

func (p *LoadPlaylistPayload) Validate() error {
	return validation.Struct(p)
}

// SelectMediaPayload is the body of POST /media/select.
type SelectMediaPayload struct {
	Index int `json:"index" validate:"min=0"`
}

func (p *SelectMediaPayload) Validate() error {
	return validation.Struct(p)
}

// SetScenePayload is the body of POST /obs/scene.
type SetScenePayload struct {
	SceneName string `json:"scene_name" validate:"required,max=200"`
}

func (p *SetScenePayload) Validate() error {
	return validation.Struct(p)
}

// ActionPayload binds POST /actions/:action. The whole body, if any, is
// kept as the action params.
type ActionPayload struct {
	Action string          `param:"action" json:"-" validate:"required,max=64"`
	Params json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps the body as raw params.
func (p *ActionPayload) UnmarshalJSON(b []byte) error {
	p.Params = append(json.RawMessage(nil), b...)
	return nil
}

func (p *ActionPayload) Validate() error {
	return validation.Struct(p)
}
