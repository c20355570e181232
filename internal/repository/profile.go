package repository

import (
	"context"

	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const profilesTable = "profiles"

// ProfileRepository stores show profiles. At most one profile is active.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) List(ctx context.Context) ([]model.Profile, error) {
	return queryAll[model.Profile](ctx, r.pool, `SELECT * FROM profiles ORDER BY is_active DESC, name ASC`)
}

func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	return queryOne[model.Profile](ctx, r.pool, profilesTable, `SELECT * FROM profiles WHERE id = $1`, id)
}

// GetActive returns the active profile.
func (r *ProfileRepository) GetActive(ctx context.Context) (*model.Profile, error) {
	return queryOne[model.Profile](ctx, r.pool, profilesTable, `SELECT * FROM profiles WHERE is_active`)
}

// Create never activates; use Activate.
func (r *ProfileRepository) Create(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	return queryOne[model.Profile](ctx, r.pool, profilesTable, `
		INSERT INTO profiles (name, theme_id, settings)
		VALUES (@name, @theme_id, @settings)
		RETURNING *`,
		profileArgs(p),
	)
}

func (r *ProfileRepository) Update(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	args := profileArgs(p)
	args["id"] = p.ID

	return queryOne[model.Profile](ctx, r.pool, profilesTable, `
		UPDATE profiles SET
			name = @name,
			theme_id = @theme_id,
			settings = @settings
		WHERE id = @id
		RETURNING *`,
		args,
	)
}

// Activate makes id the only active profile.
func (r *ProfileRepository) Activate(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var out *model.Profile

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE profiles SET is_active = FALSE WHERE is_active AND id <> $1`, id); err != nil {
			return err
		}

		activated, err := queryOne[model.Profile](ctx, tx, profilesTable,
			`UPDATE profiles SET is_active = TRUE WHERE id = $1 RETURNING *`, id)
		out = activated
		return err
	})

	return out, err
}

func (r *ProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.pool, profilesTable, `DELETE FROM profiles WHERE id = $1`, id)
}

func profileArgs(p *model.Profile) pgx.NamedArgs {
	settings := p.Settings
	settings.PosterRotation.PosterIDs = nonNil(settings.PosterRotation.PosterIDs)

	return pgx.NamedArgs{
		"name":     p.Name,
		"theme_id": p.ThemeID,
		"settings": settings,
	}
}
