// Package model holds the persisted domain types, the runtime overlay state
// and the request payloads bound by the handlers.
//
// Struct tags:
//   - db: column name used by pgx.RowToStructByName
//   - json: API field name
package model

import (
	"time"

	"github.com/google/uuid"
)

// Base is embedded by every table-backed model.
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PaginatedResponse wraps list endpoints.
type PaginatedResponse[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginatedResponse computes TotalPages and never returns a nil Data.
func NewPaginatedResponse[T any](data []T, page, limit, total int) PaginatedResponse[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return PaginatedResponse[T]{
		Data:       data,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
