// Package sqlerr handles database driver errors.
//
// It parses SQLSTATE codes from pgx and converts them into client-facing
// errs.HTTPError values (a unique violation on themes.name becomes
// "A theme with this Name already exists").
package sqlerr
