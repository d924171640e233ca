// Package memory keeps state in process memory, optionally mirrored to
// JSON files in a data directory so restarts keep the household ledger.
package memory

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"twonest/internal/core"
	"twonest/internal/store"
)

type Store struct {
	mu      sync.Mutex
	dataDir string // empty = no file mirroring
	now     func() time.Time

	app    *core.AppState
	gamify *core.GamificationState
	alerts core.AlertState
}

var _ store.StateStore = (*Store)(nil)

// New returns a purely in-memory store.
func New() *Store {
	return &Store{now: time.Now}
}

// NewFromFiles seeds the store from JSON files under dataDir when they
// exist and mirrors every save back to them. File write failures are
// logged, never fatal: state continues in memory.
func NewFromFiles(dataDir string) *Store {
	s := &Store{dataDir: dataDir, now: time.Now}
	s.seed(store.KeyApp, &s.app)
	s.seed(store.KeyGamification, &s.gamify)
	var a core.AlertState
	if s.seedInto(store.KeyAlerts, &a) {
		s.alerts = a
	}
	return s
}

func (s *Store) Close() error { return nil }

func (s *Store) LoadApp(ctx context.Context) (core.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.app == nil {
		st := core.NewAppState(s.now())
		s.app = &st
	}
	return *s.app, nil
}

func (s *Store) SaveApp(ctx context.Context, st core.AppState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.app = &st
	s.mirror(ctx, store.KeyApp, st)
	return nil
}

func (s *Store) LoadGamification(ctx context.Context) (core.GamificationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gamify == nil {
		g := core.NewGamificationState()
		s.gamify = &g
	}
	return *s.gamify, nil
}

func (s *Store) SaveGamification(ctx context.Context, g core.GamificationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gamify = &g
	s.mirror(ctx, store.KeyGamification, g)
	return nil
}

func (s *Store) LoadAlerts(ctx context.Context) (core.AlertState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.alerts == nil {
		s.alerts = core.NewAlertState()
	}
	out := make(core.AlertState, len(s.alerts))
	for k, v := range s.alerts {
		out[k] = v
	}
	return out, nil
}

func (s *Store) SaveAlerts(ctx context.Context, a core.AlertState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = a
	s.mirror(ctx, store.KeyAlerts, a)
	return nil
}

func (s *Store) seed(key string, dst any) {
	s.seedInto(key, dst)
}

// seedInto reads dataDir/<key>.json into dst. Pointer fields stay nil
// when the file is missing or corrupt so loads fall back to defaults.
func (s *Store) seedInto(key string, dst any) bool {
	if s.dataDir == "" {
		return false
	}
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		slog.Warn("Seed file corrupt, ignoring", "key", key, "error", err)
		return false
	}
	return true
}

func (s *Store) mirror(ctx context.Context, key string, v any) {
	if s.dataDir == "" {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		slog.ErrorContext(ctx, "State mirror marshal failed", "key", key, "error", err)
		return
	}
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		slog.WarnContext(ctx, "State mirror write failed", "key", key, "error", err)
		return
	}
	if err := os.WriteFile(s.path(key), raw, 0644); err != nil {
		slog.WarnContext(ctx, "State mirror write failed", "key", key, "error", err)
	}
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dataDir, key+".json")
}
