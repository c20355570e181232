package model

import (
	"github.com/deppfellow/obs-live-suite/internal/validation"
	"github.com/google/uuid"
)

// IDPayload binds the :id path parameter.
type IDPayload struct {
	ID uuid.UUID `param:"id" json:"-" validate:"required"`
}

func (p *IDPayload) Validate() error {
	return validation.Struct(p)
}

// ListPayload binds the query of paginated list endpoints.
type ListPayload struct {
	Page   int    `query:"page" validate:"min=0"`
	Limit  int    `query:"limit" validate:"min=0,max=200"`
	Search string `query:"q" validate:"max=200"`
}

func (p *ListPayload) Validate() error {
	return validation.Struct(p)
}

// EmptyPayload is used by endpoints without input.
type EmptyPayload struct{}

func (p *EmptyPayload) Validate() error {
	return nil
}

func boolOr(b *bool, fallback bool) bool {
	if b == nil {
		return fallback
	}
	return *b
}

// AssetNamePayload binds the asset path below the assets directory.
type AssetNamePayload struct {
	Name string `param:"*" json:"-" validate:"required,max=255"`
}

func (p *AssetNamePayload) Validate() error {
	return validation.Struct(p)
}
