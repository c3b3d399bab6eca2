// Package sqlite is the journal's embedded persistence layer.
//
// A single table holds every entry. Rows are inserted and listed, and the
// whole table can be erased; there is no update and no per-row delete.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/MrSnakeDoc/vault/internal/domain"
	"github.com/MrSnakeDoc/vault/internal/logger"
	"github.com/MrSnakeDoc/vault/internal/utils"
)

// Store persists journal entries in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
	log logger.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets where non-fatal store problems are reported.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) { s.log = l.Named("store") }
}

// Open opens (or creates) the database at path and applies migrations.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite has a single writer anyway, and an in-memory
	// database only exists on the connection that created it.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		utils.Close(db)
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if _, err := Migrate(ctx, db); err != nil {
		utils.Close(db)
		return nil, err
	}

	return New(db, opts...), nil
}

// New wraps an already migrated database.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now, log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append inserts an entry. A duplicate id fails with domain.ErrConstraint and
// leaves the table untouched. A zero timestamp is replaced by the current time.
func (s *Store) Append(ctx context.Context, e domain.JournalEntry) error {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}

	var summary any
	if e.Summary != nil {
		summary = *e.Summary
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO journal_entries (id, text, timestamp, summary) VALUES (?, ?, ?, ?)`,
		e.ID, e.Text, formatTimestamp(ts), summary)
	if err != nil {
		if isConstraint(err) {
			return fmt.Errorf("%w: journal entry %q already exists", domain.ErrConstraint, e.ID)
		}
		return &domain.StoreError{Op: "insert journal entry", Err: err}
	}
	return nil
}

// ListAll returns every entry, newest first. Ties are broken by id so the
// order is stable.
func (s *Store) ListAll(ctx context.Context) ([]domain.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, timestamp, summary FROM journal_entries ORDER BY timestamp DESC, id ASC`)
	if err != nil {
		return nil, &domain.StoreError{Op: "select journal entries", Err: err}
	}
	defer utils.Close(rows)

	entries := make([]domain.JournalEntry, 0)
	for rows.Next() {
		var (
			e       domain.JournalEntry
			rawTS   any
			summary sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Text, &rawTS, &summary); err != nil {
			return nil, &domain.StoreError{Op: "scan journal entry", Err: err}
		}
		ts, err := parseTimestamp(rawTS)
		if err != nil {
			return nil, &domain.StoreError{Op: "parse timestamp of " + e.ID, Err: err}
		}
		e.Timestamp = ts
		if summary.Valid {
			text := summary.String
			e.Summary = &text
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "iterate journal entries", Err: err}
	}
	return entries, nil
}

// ClearAll deletes every entry and reports how many rows were removed, or
// -1 when the count is unknown. Clearing an empty journal is not an error.
func (s *Store) ClearAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM journal_entries`)
	if err != nil {
		return 0, &domain.StoreError{Op: "delete journal entries", Err: err}
	}
	return s.affected(res, "delete journal entries"), nil
}

// affected returns the row count of res. The statement has already run, so
// a driver that cannot count is logged and reported as -1.
func (s *Store) affected(res sql.Result, op string) int64 {
	n, err := res.RowsAffected()
	if err != nil {
		s.log.Warn("row count unavailable", logger.String("op", op), logger.Error(err))
		return -1
	}
	return n
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &domain.StoreError{Op: "ping", Err: err}
	}
	return nil
}

// Optimize lets SQLite refresh its query planner statistics.
func (s *Store) Optimize(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize"); err != nil {
		return &domain.StoreError{Op: "optimize", Err: err}
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(domain.TimestampLayout)
}

func parseTimestamp(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		return domain.ParseTimestamp(v)
	case []byte:
		return domain.ParseTimestamp(string(v))
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", raw)
	}
}

func isConstraint(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}
