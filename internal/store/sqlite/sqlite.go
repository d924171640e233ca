// Package sqlite persists the state blobs in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"twonest/internal/core"
	"twonest/internal/store"

	_ "modernc.org/sqlite"
)

// Store implements store.StateStore on a single state_blobs table.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.StateStore = (*Store)(nil)

// New opens (creating if needed) the database at dbPath and runs
// migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) LoadApp(ctx context.Context) (core.AppState, error) {
	var st core.AppState
	if ok := s.loadBlob(ctx, store.KeyApp, &st); !ok {
		return core.NewAppState(s.now()), nil
	}
	return st, nil
}

func (s *Store) SaveApp(ctx context.Context, st core.AppState) error {
	return s.saveBlob(ctx, store.KeyApp, st)
}

func (s *Store) LoadGamification(ctx context.Context) (core.GamificationState, error) {
	var g core.GamificationState
	if ok := s.loadBlob(ctx, store.KeyGamification, &g); !ok {
		return core.NewGamificationState(), nil
	}
	return g, nil
}

func (s *Store) SaveGamification(ctx context.Context, g core.GamificationState) error {
	return s.saveBlob(ctx, store.KeyGamification, g)
}

func (s *Store) LoadAlerts(ctx context.Context) (core.AlertState, error) {
	var a core.AlertState
	if ok := s.loadBlob(ctx, store.KeyAlerts, &a); !ok || a == nil {
		return core.NewAlertState(), nil
	}
	return a, nil
}

func (s *Store) SaveAlerts(ctx context.Context, a core.AlertState) error {
	return s.saveBlob(ctx, store.KeyAlerts, a)
}

// loadBlob reports whether a usable blob was found. A missing row or a
// corrupt payload both mean "use the default"; corruption is logged.
func (s *Store) loadBlob(ctx context.Context, key string, dst any) bool {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM state_blobs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		slog.WarnContext(ctx, "State blob read failed, reinitializing", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal([]byte(value), dst); err != nil {
		slog.WarnContext(ctx, "State blob corrupt, reinitializing", "key", key, "error", err)
		return false
	}
	return true
}

func (s *Store) saveBlob(ctx context.Context, key string, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s blob: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO state_blobs (key, value, updated_at) VALUES (?, ?, datetime('now'))
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value))
	if err != nil {
		return fmt.Errorf("write %s blob: %w", key, err)
	}
	return nil
}
