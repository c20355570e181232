package service

import (
	"context"

	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/google/uuid"
)

// PosterService manages the poster library.
type PosterService struct {
	posters PosterStore
}

func NewPosterService(posters PosterStore) *PosterService {
	return &PosterService{posters: posters}
}

func (s *PosterService) List(ctx context.Context, p *model.ListPayload) (*model.PaginatedResponse[model.Poster], error) {
	params := listParams(p)

	posters, total, err := s.posters.List(ctx, params)
	if err != nil {
		return nil, err
	}

	res := model.NewPaginatedResponse(posters, params.Page, params.Limit, total)
	return &res, nil
}

func (s *PosterService) Get(ctx context.Context, id uuid.UUID) (*model.Poster, error) {
	return s.posters.GetByID(ctx, id)
}

func (s *PosterService) Create(ctx context.Context, p *model.CreatePosterPayload) (*model.Poster, error) {
	return s.posters.Create(ctx, p.Poster())
}

func (s *PosterService) Update(ctx context.Context, p *model.UpdatePosterPayload) (*model.Poster, error) {
	return s.posters.Update(ctx, p.Poster())
}

func (s *PosterService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.posters.Delete(ctx, id)
}
