package model

import (
	"github.com/deppfellow/obs-live-suite/internal/validation"
	"github.com/google/uuid"
)

// Guest is a person who can be announced with a lower third.
type Guest struct {
	Base
	DisplayName string `json:"display_name" db:"display_name"`
	Subtitle    string `json:"subtitle" db:"subtitle"`
	AvatarURL   string `json:"avatar_url" db:"avatar_url"`
	AccentColor string `json:"accent_color" db:"accent_color"`
	IsEnabled   bool   `json:"is_enabled" db:"is_enabled"`
}

// CreateGuestPayload is the body of POST /guests.
type CreateGuestPayload struct {
	DisplayName string `json:"display_name" validate:"required,max=120"`
	Subtitle    string `json:"subtitle" validate:"max=200"`
	AvatarURL   string `json:"avatar_url" validate:"max=2000"`
	AccentColor string `json:"accent_color" validate:"omitempty,hexcolor"`
	IsEnabled   *bool  `json:"is_enabled"`
}

func (p *CreateGuestPayload) Validate() error {
	return validation.Struct(p)
}

// Guest builds the row to insert. Guests are enabled unless stated.
func (p *CreateGuestPayload) Guest() *Guest {
	return &Guest{
		DisplayName: p.DisplayName,
		Subtitle:    p.Subtitle,
		AvatarURL:   p.AvatarURL,
		AccentColor: p.AccentColor,
		IsEnabled:   boolOr(p.IsEnabled, true),
	}
}

// UpdateGuestPayload is the body of PUT /guests/:id.
type UpdateGuestPayload struct {
	ID uuid.UUID `param:"id" json:"-" validate:"required"`
	CreateGuestPayload
}

func (p *UpdateGuestPayload) Validate() error {
	return validation.Struct(p)
}

func (p *UpdateGuestPayload) Guest() *Guest {
	g := p.CreateGuestPayload.Guest()
	g.ID = p.ID
	return g
}
