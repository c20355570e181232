package repository

import (
	"context"

	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postersTable = "posters"

// PosterRepository stores the poster library.
type PosterRepository struct {
	pool *pgxpool.Pool
}

func NewPosterRepository(pool *pgxpool.Pool) *PosterRepository {
	return &PosterRepository{pool: pool}
}

func (r *PosterRepository) List(ctx context.Context, p ListParams) ([]model.Poster, int, error) {
	p = p.Normalize()
	where := `WHERE @search::text = '' OR title ILIKE '%' || @search || '%' OR @search = ANY(tags)`

	total, err := count(ctx, r.pool, `SELECT COUNT(*) FROM posters `+where, p.args())
	if err != nil {
		return nil, 0, err
	}

	posters, err := queryAll[model.Poster](ctx, r.pool,
		`SELECT * FROM posters `+where+` ORDER BY created_at ASC LIMIT @limit OFFSET @offset`,
		p.args(),
	)
	if err != nil {
		return nil, 0, err
	}

	return posters, total, nil
}

// ListEnabled returns every enabled poster in creation order, the default
// rotation order.
func (r *PosterRepository) ListEnabled(ctx context.Context) ([]model.Poster, error) {
	return queryAll[model.Poster](ctx, r.pool, `SELECT * FROM posters WHERE is_enabled ORDER BY created_at ASC, id ASC`)
}

func (r *PosterRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Poster, error) {
	return queryOne[model.Poster](ctx, r.pool, postersTable, `SELECT * FROM posters WHERE id = $1`, id)
}

func (r *PosterRepository) Create(ctx context.Context, p *model.Poster) (*model.Poster, error) {
	return queryOne[model.Poster](ctx, r.pool, postersTable, `
		INSERT INTO posters (title, file_url, kind, tags, is_enabled)
		VALUES (@title, @file_url, @kind, @tags, @is_enabled)
		RETURNING *`,
		posterArgs(p),
	)
}

func (r *PosterRepository) Update(ctx context.Context, p *model.Poster) (*model.Poster, error) {
	args := posterArgs(p)
	args["id"] = p.ID

	return queryOne[model.Poster](ctx, r.pool, postersTable, `
		UPDATE posters SET
			title = @title,
			file_url = @file_url,
			kind = @kind,
			tags = @tags,
			is_enabled = @is_enabled
		WHERE id = @id
		RETURNING *`,
		args,
	)
}

func (r *PosterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.pool, postersTable, `DELETE FROM posters WHERE id = $1`, id)
}

func posterArgs(p *model.Poster) pgx.NamedArgs {
	return pgx.NamedArgs{
		"title":      p.Title,
		"file_url":   p.FileURL,
		"kind":       string(p.Kind),
		"tags":       nonNil(p.Tags),
		"is_enabled": p.IsEnabled,
	}
}
