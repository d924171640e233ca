package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"twonest/internal/core"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

func TestLoadDefaults(t *testing.T) {
	s := New()
	ctx := context.Background()

	app, err := s.LoadApp(ctx)
	if err != nil {
		t.Fatalf("load app: %v", err)
	}
	if len(app.Transactions) != 0 || app.Settings.Users[0] == "" {
		t.Fatalf("unexpected default app state: %+v", app)
	}

	g, err := s.LoadGamification(ctx)
	if err != nil {
		t.Fatalf("load gamification: %v", err)
	}
	if g.Level != 1 || g.XP != 0 {
		t.Fatalf("unexpected default gamification: %+v", g)
	}

	a, err := s.LoadAlerts(ctx)
	if err != nil {
		t.Fatalf("load alerts: %v", err)
	}
	if len(a) != 0 {
		t.Fatalf("unexpected default alerts: %v", a)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	app, _ := s.LoadApp(ctx)
	app.Transactions = append(app.Transactions, core.Transaction{ID: "t1", Date: "2025-03-01", Type: core.Income, Amount: 10})
	if err := s.SaveApp(ctx, app); err != nil {
		t.Fatalf("save app: %v", err)
	}
	got, _ := s.LoadApp(ctx)
	if len(got.Transactions) != 1 || got.Transactions[0].ID != "t1" {
		t.Fatalf("got %+v", got.Transactions)
	}

	alerts := core.AlertState{"2025-03:overall80": true}
	if err := s.SaveAlerts(ctx, alerts); err != nil {
		t.Fatalf("save alerts: %v", err)
	}
	a, _ := s.LoadAlerts(ctx)
	if !a["2025-03:overall80"] {
		t.Fatalf("got %v", a)
	}
}

func TestFileMirrorSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s := NewFromFiles(dir)
	app, _ := s.LoadApp(ctx)
	app.Budgets.Overall = 1500
	if err := s.SaveApp(ctx, app); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A fresh store over the same directory sees the saved state.
	again := NewFromFiles(dir)
	got, _ := again.LoadApp(ctx)
	if got.Budgets.Overall != 1500 {
		t.Fatalf("overall = %v, want 1500", got.Budgets.Overall)
	}
}

func TestCorruptSeedFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	if err := writeFile(filepath.Join(dir, "app.json"), "{not json"); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := NewFromFiles(dir)
	app, err := s.LoadApp(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(app.Transactions) != 0 {
		t.Fatalf("corrupt seed must reinitialize, got %+v", app)
	}
}
