package service

import (
	"context"

	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/google/uuid"
)

// GuestService manages guests.
type GuestService struct {
	guests GuestStore
}

func NewGuestService(guests GuestStore) *GuestService {
	return &GuestService{guests: guests}
}

func (s *GuestService) List(ctx context.Context, p *model.ListPayload) (*model.PaginatedResponse[model.Guest], error) {
	params := listParams(p)

	guests, total, err := s.guests.List(ctx, params)
	if err != nil {
		return nil, err
	}

	res := model.NewPaginatedResponse(guests, params.Page, params.Limit, total)
	return &res, nil
}

func (s *GuestService) Get(ctx context.Context, id uuid.UUID) (*model.Guest, error) {
	return s.guests.GetByID(ctx, id)
}

func (s *GuestService) Create(ctx context.Context, p *model.CreateGuestPayload) (*model.Guest, error) {
	return s.guests.Create(ctx, p.Guest())
}

func (s *GuestService) Update(ctx context.Context, p *model.UpdateGuestPayload) (*model.Guest, error) {
	return s.guests.Update(ctx, p.Guest())
}

func (s *GuestService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.guests.Delete(ctx, id)
}
