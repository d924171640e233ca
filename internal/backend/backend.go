// Package backend selects and builds the state store from configuration.
package backend

import (
	"fmt"
	"log/slog"

	"twonest/internal/config"
	"twonest/internal/store"
	"twonest/internal/store/memory"
	"twonest/internal/store/sqlite"
)

// Type names a state store implementation.
type Type string

const (
	Memory Type = "memory"
	SQLite Type = "sqlite"
)

func (t Type) String() string { return string(t) }

func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite:
		return true
	default:
		return false
	}
}

// CleanupFunc releases store resources.
type CleanupFunc func() error

// Result contains the store and its cleanup function.
type Result struct {
	Store   store.StateStore
	Cleanup CleanupFunc
}

// Open builds the configured state store.
func Open(cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	t := Type(cfg.DataBackend)
	switch t {
	case SQLite:
		st, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		logger.Info("Initialized sqlite state store", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: st, Cleanup: st.Close}, nil
	case Memory:
		st := memory.NewFromFiles(cfg.DataDirectory)
		logger.Info("Initialized memory state store", "data_directory", cfg.DataDirectory)
		return &Result{Store: st, Cleanup: st.Close}, nil
	default:
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}
}
