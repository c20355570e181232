package model

import (
	"github.com/deppfellow/obs-live-suite/internal/validation"
	"github.com/google/uuid"
)

// PosterKind is how the poster overlay renders the file.
type PosterKind string

const (
	PosterKindImage   PosterKind = "image"
	PosterKindVideo   PosterKind = "video"
	PosterKindYouTube PosterKind = "youtube"
)

// Poster is a full-frame or side visual shown by the poster overlay.
type Poster struct {
	Base
	Title     string     `json:"title" db:"title"`
	FileURL   string     `json:"file_url" db:"file_url"`
	Kind      PosterKind `json:"kind" db:"kind"`
	Tags      []string   `json:"tags" db:"tags"`
	IsEnabled bool       `json:"is_enabled" db:"is_enabled"`
}

// CreatePosterPayload is the body of POST /posters.
type CreatePosterPayload struct {
	Title     string     `json:"title" validate:"required,max=200"`
	FileURL   string     `json:"file_url" validate:"required,max=2000"`
	Kind      PosterKind `json:"kind" validate:"required,oneof=image video youtube"`
	Tags      []string   `json:"tags" validate:"max=50,dive,required,max=50"`
	IsEnabled *bool      `json:"is_enabled"`
}

func (p *CreatePosterPayload) Validate() error {
	return validation.Struct(p)
}

func (p *CreatePosterPayload) Poster() *Poster {
	return &Poster{
		Title:     p.Title,
		FileURL:   p.FileURL,
		Kind:      p.Kind,
		Tags:      p.Tags,
		IsEnabled: boolOr(p.IsEnabled, true),
	}
}

// UpdatePosterPayload is the body of PUT /posters/:id.
type UpdatePosterPayload struct {
	ID uuid.UUID `param:"id" json:"-" validate:"required"`
	CreatePosterPayload
}

func (p *UpdatePosterPayload) Validate() error {
	return validation.Struct(p)
}

func (p *UpdatePosterPayload) Poster() *Poster {
	poster := p.CreatePosterPayload.Poster()
	poster.ID = p.ID
	return poster
}
