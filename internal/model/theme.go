package model

import (
	"github.com/deppfellow/obs-live-suite/internal/validation"
	"github.com/google/uuid"
)

// LowerThirdLayout selects the lower third template.
type LowerThirdLayout string

const (
	LayoutClassic LowerThirdLayout = "classic"
	LayoutBar     LowerThirdLayout = "bar"
	LayoutCard    LowerThirdLayout = "card"
)

// ThemeColors are hex colors applied by every overlay.
type ThemeColors struct {
	Primary string `json:"primary" validate:"omitempty,hexcolor"`
	Accent  string `json:"accent" validate:"omitempty,hexcolor"`
	Surface string `json:"surface" validate:"omitempty,hexcolor"`
	Text    string `json:"text" validate:"omitempty,hexcolor"`
}

// ThemeFont is the overlay typeface.
type ThemeFont struct {
	Family string `json:"family" validate:"max=80"`
	Size   int    `json:"size" validate:"omitempty,min=8,max=200"`
}

// Theme is the visual style broadcast to overlays when a profile activates.
type Theme struct {
	Base
	Name             string           `json:"name" db:"name"`
	Colors           ThemeColors      `json:"colors" db:"colors"`
	Font             ThemeFont        `json:"font" db:"font"`
	LowerThirdLayout LowerThirdLayout `json:"lower_third_layout" db:"lower_third_layout"`
	IsDefault        bool             `json:"is_default" db:"is_default"`
}

// CreateThemePayload is the body of POST /themes.
type CreateThemePayload struct {
	Name             string           `json:"name" validate:"required,max=80"`
	Colors           ThemeColors      `json:"colors"`
	Font             ThemeFont        `json:"font"`
	LowerThirdLayout LowerThirdLayout `json:"lower_third_layout" validate:"omitempty,oneof=classic bar card"`
	IsDefault        bool             `json:"is_default"`
}

func (p *CreateThemePayload) Validate() error {
	return validation.Struct(p)
}

func (p *CreateThemePayload) Theme() *Theme {
	layout := p.LowerThirdLayout
	if layout == "" {
		layout = LayoutClassic
	}
	return &Theme{
		Name:             p.Name,
		Colors:           p.Colors,
		Font:             p.Font,
		LowerThirdLayout: layout,
		IsDefault:        p.IsDefault,
	}
}

// UpdateThemePayload is the body of PUT /themes/:id.
type UpdateThemePayload struct {
	ID uuid.UUID `param:"id" json:"-" validate:"required"`
	CreateThemePayload
}

func (p *UpdateThemePayload) Validate() error {
	return validation.Struct(p)
}

func (p *UpdateThemePayload) Theme() *Theme {
	t := p.CreateThemePayload.Theme()
	t.ID = p.ID
	return t
}
