package repository

import (
	"context"

	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const guestsTable = "guests"

// GuestRepository stores guests shown in the lower third.
type GuestRepository struct {
	pool *pgxpool.Pool
}

func NewGuestRepository(pool *pgxpool.Pool) *GuestRepository {
	return &GuestRepository{pool: pool}
}

func (r *GuestRepository) List(ctx context.Context, p ListParams) ([]model.Guest, int, error) {
	p = p.Normalize()
	where := `WHERE @search::text = '' OR display_name ILIKE '%' || @search || '%' OR subtitle ILIKE '%' || @search || '%'`

	total, err := count(ctx, r.pool, `SELECT COUNT(*) FROM guests `+where, p.args())
	if err != nil {
		return nil, 0, err
	}

	guests, err := queryAll[model.Guest](ctx, r.pool,
		`SELECT * FROM guests `+where+` ORDER BY display_name ASC, created_at ASC LIMIT @limit OFFSET @offset`,
		p.args(),
	)
	if err != nil {
		return nil, 0, err
	}

	return guests, total, nil
}

func (r *GuestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Guest, error) {
	return queryOne[model.Guest](ctx, r.pool, guestsTable, `SELECT * FROM guests WHERE id = $1`, id)
}

func (r *GuestRepository) Create(ctx context.Context, g *model.Guest) (*model.Guest, error) {
	return queryOne[model.Guest](ctx, r.pool, guestsTable, `
		INSERT INTO guests (display_name, subtitle, avatar_url, accent_color, is_enabled)
		VALUES (@display_name, @subtitle, @avatar_url, @accent_color, @is_enabled)
		RETURNING *`,
		guestArgs(g),
	)
}

func (r *GuestRepository) Update(ctx context.Context, g *model.Guest) (*model.Guest, error) {
	args := guestArgs(g)
	args["id"] = g.ID

	return queryOne[model.Guest](ctx, r.pool, guestsTable, `
		UPDATE guests SET
			display_name = @display_name,
			subtitle = @subtitle,
			avatar_url = @avatar_url,
			accent_color = @accent_color,
			is_enabled = @is_enabled
		WHERE id = @id
		RETURNING *`,
		args,
	)
}

func (r *GuestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.pool, guestsTable, `DELETE FROM guests WHERE id = $1`, id)
}

func guestArgs(g *model.Guest) pgx.NamedArgs {
	return pgx.NamedArgs{
		"display_name": g.DisplayName,
		"subtitle":     g.Subtitle,
		"avatar_url":   g.AvatarURL,
		"accent_color": g.AccentColor,
		"is_enabled":   g.IsEnabled,
	}
}
