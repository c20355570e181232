package model

import (
	"github.com/deppfellow/obs-live-suite/internal/validation"
	"github.com/google/uuid"
)

// PosterRotation cycles posters on a fixed interval while a profile is active.
type PosterRotation struct {
	Enabled         bool        `json:"enabled"`
	IntervalSeconds int         `json:"interval_seconds" validate:"omitempty,min=5,max=86400"`
	PosterIDs       []uuid.UUID `json:"poster_ids" validate:"max=200"`
}

// AudioCues tells overlays whether to play a sound on show/hide.
type AudioCues struct {
	Enabled bool    `json:"enabled"`
	Volume  float64 `json:"volume" validate:"gte=0,lte=1"`
	OnShow  string  `json:"on_show" validate:"max=500"`
	OnHide  string  `json:"on_hide" validate:"max=500"`
}

// ProfileSettings is stored as JSONB.
type ProfileSettings struct {
	PosterRotation PosterRotation `json:"poster_rotation"`
	AudioCues      AudioCues      `json:"audio_cues"`
}

// Profile is a named bundle of show settings. At most one is active.
type Profile struct {
	Base
	Name     string          `json:"name" db:"name"`
	ThemeID  *uuid.UUID      `json:"theme_id" db:"theme_id"`
	Settings ProfileSettings `json:"settings" db:"settings"`
	IsActive bool            `json:"is_active" db:"is_active"`
}

// CreateProfilePayload is the body of POST /profiles.
type CreateProfilePayload struct {
	Name     string          `json:"name" validate:"required,max=80"`
	ThemeID  *uuid.UUID      `json:"theme_id"`
	Settings ProfileSettings `json:"settings"`
}

func (p *CreateProfilePayload) Validate() error {
	if err := validation.Struct(p); err != nil {
		return err
	}
	rot := p.Settings.PosterRotation
	if rot.Enabled && rot.IntervalSeconds == 0 {
		return validation.CustomValidationErrors{{
			Field:   "settings.poster_rotation.interval_seconds",
			Message: "is required when rotation is enabled",
		}}
	}
	return nil
}

func (p *CreateProfilePayload) Profile() *Profile {
	return &Profile{Name: p.Name, ThemeID: p.ThemeID, Settings: p.Settings}
}

// UpdateProfilePayload is the body of PUT /profiles/:id.
type UpdateProfilePayload struct {
	ID uuid.UUID `param:"id" json:"-" validate:"required"`
	CreateProfilePayload
}

func (p *UpdateProfilePayload) Validate() error {
	if err := validation.Struct(p); err != nil {
		return err
	}
	return p.CreateProfilePayload.Validate()
}

func (p *UpdateProfilePayload) Profile() *Profile {
	profile := p.CreateProfilePayload.Profile()
	profile.ID = p.ID
	return profile
}

// ActivateProfileParams are the params of the profile.activate action.
type ActivateProfileParams struct {
	ProfileID uuid.UUID `json:"profile_id" validate:"required"`
}

func (p *ActivateProfileParams) Validate() error {
	return validation.Struct(p)
}
