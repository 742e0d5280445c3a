// Package store implements core.Store on database/sql for PostgreSQL (pgx)
// and SQLite (modernc.org/sqlite).
//
// Statements are written with '?' markers and rebound for the active
// dialect. Queries compiled by core.CompileFilter are already numbered and
// are executed as-is.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/contactbook/internal/core"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// inChunk caps the number of ids bound in one IN (...) list.
const inChunk = 500

// Store is a SQL-backed core.Store.
type Store struct {
	db      *sql.DB
	dialect core.Dialect
	pool    *pgxpool.Pool // nil for SQLite
	now     func() time.Time
}

var _ core.Store = (*Store)(nil)

// New wraps an open database. Callers normally use Open instead.
func New(db *sql.DB, d core.Dialect) *Store {
	return &Store{db: db, dialect: d, now: time.Now}
}

// DB exposes the underlying handle, mainly for tests.
func (s *Store) DB() *sql.DB { return s.db }

// Dialect implements core.Store.
func (s *Store) Dialect() core.Dialect { return s.dialect }

// Ping implements core.Store.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database handle and, for PostgreSQL, the pool.
func (s *Store) Close() error {
	err := s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	raw, err := schemaFS.ReadFile("schema/" + s.dialect.Name() + ".sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	for _, stmt := range strings.Split(string(raw), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) exec(ctx context.Context, q querier, query string, args ...any) (sql.Result, error) {
	res, err := q.ExecContext(ctx, s.dialect.Rebind(query), args...)
	return res, mapError(err)
}

func (s *Store) query(ctx context.Context, q querier, query string, args ...any) (*sql.Rows, error) {
	rows, err := q.QueryContext(ctx, s.dialect.Rebind(query), args...)
	return rows, mapError(err)
}

func (s *Store) queryRow(ctx context.Context, q querier, query string, args ...any) *sql.Row {
	return q.QueryRowContext(ctx, s.dialect.Rebind(query), args...)
}

// withTx runs fn in a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", mapError(err))
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", mapError(err))
	}
	return nil
}

func (s *Store) timeArg(t time.Time) any {
	return s.dialect.TimeArg(t)
}

func (s *Store) optTimeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return s.dialect.TimeArg(*t)
}

func (s *Store) count(ctx context.Context, q querier, query string, args ...any) (int64, error) {
	var n int64
	if err := s.queryRow(ctx, q, query, args...).Scan(&n); err != nil {
		return 0, mapError(err)
	}
	return n, nil
}

func newID() string {
	return uuid.NewString()
}

// placeholders returns "?, ?, ..." with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

// chunks splits ids into slices of at most inChunk elements.
func chunks(ids []string) [][]string {
	var out [][]string
	for len(ids) > inChunk {
		out = append(out, ids[:inChunk])
		ids = ids[inChunk:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}

func stringArgs(prefix []any, ids []string) []any {
	args := make([]any, 0, len(prefix)+len(ids))
	args = append(args, prefix...)
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}

// timeScanner decodes timestamps stored either natively or as text.
type timeScanner struct {
	dst   *time.Time
	dstPt **time.Time
}

func scanTime(dst *time.Time) *timeScanner     { return &timeScanner{dst: dst} }
func scanNullTime(dst **time.Time) *timeScanner { return &timeScanner{dstPt: dst} }

func (ts *timeScanner) Scan(src any) error {
	if src == nil {
		if ts.dstPt != nil {
			*ts.dstPt = nil
			return nil
		}
		return errors.New("scan time: unexpected NULL")
	}
	t, ok := core.ParseStoredTime(src)
	if !ok {
		return fmt.Errorf("scan time: unsupported value %T", src)
	}
	if ts.dstPt != nil {
		*ts.dstPt = &t
		return nil
	}
	*ts.dst = t
	return nil
}
