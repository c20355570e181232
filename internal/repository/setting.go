package repository

import (
	"context"
	"encoding/json"

	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

const settingsTable = "settings"

// SettingsRepository is a key/value store of JSON settings.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

func (r *SettingsRepository) List(ctx context.Context) ([]model.Setting, error) {
	return queryAll[model.Setting](ctx, r.pool, `SELECT * FROM settings ORDER BY key ASC`)
}

func (r *SettingsRepository) Get(ctx context.Context, key string) (*model.Setting, error) {
	return queryOne[model.Setting](ctx, r.pool, settingsTable, `SELECT * FROM settings WHERE key = $1`, key)
}

// Put inserts or replaces the value of key.
func (r *SettingsRepository) Put(ctx context.Context, key string, value json.RawMessage) (*model.Setting, error) {
	return queryOne[model.Setting](ctx, r.pool, settingsTable, `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING *`,
		key, value,
	)
}

func (r *SettingsRepository) Delete(ctx context.Context, key string) error {
	return execOne(ctx, r.pool, settingsTable, `DELETE FROM settings WHERE key = $1`, key)
}
