// Package repository handles all interactions with the database.
//
// It contains raw SQL queries and methods to fetch, persist,
// or update data, abstracting SQL logic away from the service layer.
//
// Rows are mapped with pgx.RowToStructByName, so every model field carries a
// db tag matching its column. Missing rows are returned as
// sqlerr.WrapNotFound errors so the HTTP layer can name the entity in its 404.
package repository

import (
	"context"

	"github.com/deppfellow/obs-live-suite/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ListParams pages and filters list queries.
type ListParams struct {
	Page   int
	Limit  int
	Search string
}

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Normalize clamps Page to >= 1 and Limit to 1..MaxLimit.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

func (p ListParams) args() pgx.NamedArgs {
	return pgx.NamedArgs{
		"search": p.Search,
		"limit":  p.Limit,
		"offset": p.Offset(),
	}
}

// queryAll runs sql and maps every row to T.
func queryAll[T any](ctx context.Context, db querier, sql string, args ...any) ([]T, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[T])
}

// queryOne runs sql and maps the first row to T. No rows is a not-found
// error for table.
func queryOne[T any](ctx context.Context, db querier, table, sql string, args ...any) (*T, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[T])
	if err != nil {
		return nil, sqlerr.WrapNotFound(table, err)
	}
	return row, nil
}

func count(ctx context.Context, db querier, sql string, args ...any) (int, error) {
	var n int
	if err := db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// execOne runs a statement that must touch exactly one row of table.
func execOne(ctx context.Context, db querier, table, sql string, args ...any) error {
	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return sqlerr.WrapNotFound(table, pgx.ErrNoRows)
	}
	return nil
}

// nonNil keeps NOT NULL array columns from receiving NULL.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
