// Package store defines the persistence ports for the three
// independently persisted state blobs: application state, gamification
// state, and the alert fired-key map.
package store

import (
	"context"

	"twonest/internal/core"
)

// Blob identifiers. Each blob is persisted as serialized text under its
// own key.
const (
	KeyApp          = "app"
	KeyGamification = "gamification"
	KeyAlerts       = "alerts"
)

// StateStore loads and saves whole-value state blobs. Loads follow
// load-or-default semantics: a missing or corrupt blob reinitializes to
// the default rather than failing.
type StateStore interface {
	LoadApp(ctx context.Context) (core.AppState, error)
	SaveApp(ctx context.Context, s core.AppState) error

	LoadGamification(ctx context.Context) (core.GamificationState, error)
	SaveGamification(ctx context.Context, g core.GamificationState) error

	LoadAlerts(ctx context.Context) (core.AlertState, error)
	SaveAlerts(ctx context.Context, a core.AlertState) error

	Close() error
}
