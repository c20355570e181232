package repository

import (
	"context"

	"github.com/deppfellow/obs-live-suite/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const playlistsTable = "playlists"

// PlaylistRepository stores playlists with their items as JSONB.
type PlaylistRepository struct {
	pool *pgxpool.Pool
}

func NewPlaylistRepository(pool *pgxpool.Pool) *PlaylistRepository {
	return &PlaylistRepository{pool: pool}
}

func (r *PlaylistRepository) List(ctx context.Context) ([]model.Playlist, error) {
	return queryAll[model.Playlist](ctx, r.pool, `SELECT * FROM playlists ORDER BY name ASC`)
}

func (r *PlaylistRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Playlist, error) {
	return queryOne[model.Playlist](ctx, r.pool, playlistsTable, `SELECT * FROM playlists WHERE id = $1`, id)
}

func (r *PlaylistRepository) Create(ctx context.Context, p *model.Playlist) (*model.Playlist, error) {
	return queryOne[model.Playlist](ctx, r.pool, playlistsTable, `
		INSERT INTO playlists (name, loop_enabled, items)
		VALUES (@name, @loop_enabled, @items)
		RETURNING *`,
		playlistArgs(p),
	)
}

func (r *PlaylistRepository) Update(ctx context.Context, p *model.Playlist) (*model.Playlist, error) {
	args := playlistArgs(p)
	args["id"] = p.ID

	return queryOne[model.Playlist](ctx, r.pool, playlistsTable, `
		UPDATE playlists SET
			name = @name,
			loop_enabled = @loop_enabled,
			items = @items
		WHERE id = @id
		RETURNING *`,
		args,
	)
}

func (r *PlaylistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.pool, playlistsTable, `DELETE FROM playlists WHERE id = $1`, id)
}

func playlistArgs(p *model.Playlist) pgx.NamedArgs {
	return pgx.NamedArgs{
		"name":         p.Name,
		"loop_enabled": p.Loop,
		"items":        nonNil(p.Items),
	}
}
