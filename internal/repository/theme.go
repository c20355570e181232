package repository

import (
	"context"

	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const themesTable = "themes"

// ThemeRepository stores overlay themes. At most one theme is the default.
type ThemeRepository struct {
	pool *pgxpool.Pool
}

func NewThemeRepository(pool *pgxpool.Pool) *ThemeRepository {
	return &ThemeRepository{pool: pool}
}

func (r *ThemeRepository) List(ctx context.Context) ([]model.Theme, error) {
	return queryAll[model.Theme](ctx, r.pool, `SELECT * FROM themes ORDER BY is_default DESC, name ASC`)
}

func (r *ThemeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Theme, error) {
	return queryOne[model.Theme](ctx, r.pool, themesTable, `SELECT * FROM themes WHERE id = $1`, id)
}

// GetDefault returns the theme flagged is_default.
func (r *ThemeRepository) GetDefault(ctx context.Context) (*model.Theme, error) {
	return queryOne[model.Theme](ctx, r.pool, themesTable, `SELECT * FROM themes WHERE is_default`)
}

// Create inserts t. When t is the new default the previous default is
// cleared in the same transaction.
func (r *ThemeRepository) Create(ctx context.Context, t *model.Theme) (*model.Theme, error) {
	var out *model.Theme

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if t.IsDefault {
			if _, err := tx.Exec(ctx, `UPDATE themes SET is_default = FALSE WHERE is_default`); err != nil {
				return err
			}
		}

		created, err := queryOne[model.Theme](ctx, tx, themesTable, `
			INSERT INTO themes (name, colors, font, lower_third_layout, is_default)
			VALUES (@name, @colors, @font, @lower_third_layout, @is_default)
			RETURNING *`,
			themeArgs(t),
		)
		out = created
		return err
	})

	return out, err
}

func (r *ThemeRepository) Update(ctx context.Context, t *model.Theme) (*model.Theme, error) {
	var out *model.Theme

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if t.IsDefault {
			if _, err := tx.Exec(ctx, `UPDATE themes SET is_default = FALSE WHERE is_default AND id <> $1`, t.ID); err != nil {
				return err
			}
		}

		args := themeArgs(t)
		args["id"] = t.ID

		updated, err := queryOne[model.Theme](ctx, tx, themesTable, `
			UPDATE themes SET
				name = @name,
				colors = @colors,
				font = @font,
				lower_third_layout = @lower_third_layout,
				is_default = @is_default
			WHERE id = @id
			RETURNING *`,
			args,
		)
		out = updated
		return err
	})

	return out, err
}

func (r *ThemeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.pool, themesTable, `DELETE FROM themes WHERE id = $1`, id)
}

func themeArgs(t *model.Theme) pgx.NamedArgs {
	return pgx.NamedArgs{
		"name":               t.Name,
		"colors":             t.Colors,
		"font":               t.Font,
		"lower_third_layout": string(t.LowerThirdLayout),
		"is_default":         t.IsDefault,
	}
}
