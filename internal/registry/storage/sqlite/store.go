// Package sqlite provides a SQLite-backed registry storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/lapelpin/lapelpin/internal/platform/storage/sqlitemigrate"
	"github.com/lapelpin/lapelpin/internal/registry/domain"
	"github.com/lapelpin/lapelpin/internal/registry/storage"
	"github.com/lapelpin/lapelpin/internal/registry/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists registry state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite registry store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Issuance relies on read-then-write transactions; a single connection
	// keeps them serialized without SQLITE_BUSY churn.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// RegistryState returns the registry counters and base URI.
func (s *Store) RegistryState(ctx context.Context) (storage.RegistryState, error) {
	if err := ctx.Err(); err != nil {
		return storage.RegistryState{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.RegistryState{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT base_uri, total_issued FROM registry WHERE id = 1`)
	var state storage.RegistryState
	if err := row.Scan(&state.BaseURI, &state.TotalIssued); err != nil {
		return storage.RegistryState{}, fmt.Errorf("read registry state: %w", err)
	}
	return state, nil
}

// SetBaseURI replaces the registry fallback metadata URI and records the
// change in the registry history.
func (s *Store) SetBaseURI(ctx context.Context, baseURI string, at time.Time) (domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return domain.Event{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Event{}, fmt.Errorf("storage is not configured")
	}
	baseURI = strings.TrimSpace(baseURI)
	if baseURI == "" {
		return domain.Event{}, fmt.Errorf("base uri is required")
	}
	if at.IsZero() {
		at = time.Now()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Event{}, fmt.Errorf("begin set base uri: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE registry SET base_uri = ?, updated_at = ? WHERE id = 1`,
		baseURI,
		toMillis(at),
	); err != nil {
		return domain.Event{}, fmt.Errorf("set base uri: %w", err)
	}
	event, err := appendEvent(ctx, tx, eventRecord{
		kind:      string(domain.EventBaseURIChanged),
		createdAt: at,
	})
	if err != nil {
		return domain.Event{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Event{}, fmt.Errorf("commit set base uri: %w", err)
	}
	return event, nil
}

var _ storage.Store = (*Store)(nil)

func scanErrNotFound(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
