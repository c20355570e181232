package model

import (
	"github.com/deppfellow/obs-live-suite/internal/validation"
	"github.com/google/uuid"
)

// PlaylistItem is one media entry.
type PlaylistItem struct {
	URL             string `json:"url" validate:"required,max=2000"`
	Title           string `json:"title" validate:"max=200"`
	DurationSeconds int    `json:"duration_seconds" validate:"min=0"`
}

// Playlist is an ordered list of media items played by the media overlay.
type Playlist struct {
	Base
	Name  string         `json:"name" db:"name"`
	Loop  bool           `json:"loop" db:"loop_enabled"`
	Items []PlaylistItem `json:"items" db:"items"`
}

// CreatePlaylistPayload is the body of POST /playlists.
type CreatePlaylistPayload struct {
	Name  string         `json:"name" validate:"required,max=120"`
	Loop  bool           `json:"loop"`
	Items []PlaylistItem `json:"items" validate:"max=500,dive"`
}

func (p *CreatePlaylistPayload) Validate() error {
	return validation.Struct(p)
}

func (p *CreatePlaylistPayload) Playlist() *Playlist {
	return &Playlist{Name: p.Name, Loop: p.Loop, Items: p.Items}
}

// UpdatePlaylistPayload is the body of PUT /playlists/:id.
type UpdatePlaylistPayload struct {
	ID uuid.UUID `param:"id" json:"-" validate:"required"`
	CreatePlaylistPayload
}

func (p *UpdatePlaylistPayload) Validate() error {
	return validation.Struct(p)
}

func (p *UpdatePlaylistPayload) Playlist() *Playlist {
	pl := p.CreatePlaylistPayload.Playlist()
	pl.ID = p.ID
	return pl
}
