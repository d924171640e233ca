package core

import (
	"testing"
	"time"
)

func summaryFor(t *testing.T, txs []Transaction, b Budgets) Summary {
	t.Helper()
	return Summarize(txs, "2025-03", b, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))
}

func TestAlertsFireOncePerKey(t *testing.T) {
	b := Budgets{Overall: 100, AlertThreshold: 0.8}
	txs := []Transaction{{Date: "2025-03-01", Type: Expense, Category: "Fun", Amount: 85}}
	sum := summaryFor(t, txs, b)
	fired := NewAlertState()

	// Three consecutive evaluations over the same aggregates: exactly
	// one warning.
	total := 0
	for i := 0; i < 3; i++ {
		total += len(EvaluateAlerts(sum, b, fired))
	}
	if total != 1 {
		t.Fatalf("fired %d notifications, want 1", total)
	}
	if !fired["2025-03:overall80"] {
		t.Fatalf("expected overall80 key marked, got %v", fired)
	}
}

func TestAlertsOverBudgetEscalation(t *testing.T) {
	b := Budgets{Overall: 100, AlertThreshold: 0.8}
	fired := NewAlertState()

	sum := summaryFor(t, []Transaction{{Date: "2025-03-01", Type: Expense, Amount: 85}}, b)
	notes := EvaluateAlerts(sum, b, fired)
	if len(notes) != 1 || notes[0].Severity != SeverityWarning {
		t.Fatalf("first pass: %+v", notes)
	}

	sum = summaryFor(t, []Transaction{{Date: "2025-03-01", Type: Expense, Amount: 120}}, b)
	notes = EvaluateAlerts(sum, b, fired)
	if len(notes) != 1 || notes[0].Severity != SeverityError {
		t.Fatalf("second pass: %+v", notes)
	}
}

func TestAlertsUnclampedRatio(t *testing.T) {
	b := Budgets{Overall: 100, AlertThreshold: 0.8}
	sum := summaryFor(t, []Transaction{{Date: "2025-03-01", Type: Expense, Amount: 250}}, b)
	fired := NewAlertState()
	notes := EvaluateAlerts(sum, b, fired)
	if len(notes) != 2 {
		t.Fatalf("want warning + error, got %+v", notes)
	}
	// Display pct clamps at 100 but the alert detail reports the real ratio.
	if notes[1].Detail != "Spending is at 250% of the monthly budget" {
		t.Fatalf("detail = %q", notes[1].Detail)
	}
}

func TestAlertsPerCategory(t *testing.T) {
	b := Budgets{
		PerCategory:    map[string]float64{"Groceries": 100, "Fun": 50},
		AlertThreshold: 0.8,
	}
	txs := []Transaction{
		{Date: "2025-03-01", Type: Expense, Category: "Groceries", Amount: 90},
		{Date: "2025-03-02", Type: Expense, Category: "Fun", Amount: 60},
	}
	sum := summaryFor(t, txs, b)
	fired := NewAlertState()
	notes := EvaluateAlerts(sum, b, fired)
	// Fun crosses both thresholds, Groceries only the warning one.
	if len(notes) != 3 {
		t.Fatalf("got %d notifications: %+v", len(notes), notes)
	}
	for _, key := range []string{"2025-03:cat80:Groceries", "2025-03:cat80:Fun", "2025-03:cat100:Fun"} {
		if !fired[key] {
			t.Fatalf("key %q not marked: %v", key, fired)
		}
	}
}

func TestAlertsNoBudgetNoFire(t *testing.T) {
	sum := summaryFor(t, []Transaction{{Date: "2025-03-01", Type: Expense, Amount: 10000}}, Budgets{})
	if notes := EvaluateAlerts(sum, Budgets{}, NewAlertState()); len(notes) != 0 {
		t.Fatalf("no configured budget must not fire, got %+v", notes)
	}
}

func TestAlertsDefaultThreshold(t *testing.T) {
	// A zero threshold falls back to the 0.8 default.
	b := Budgets{Overall: 100}
	sum := summaryFor(t, []Transaction{{Date: "2025-03-01", Type: Expense, Amount: 85}}, b)
	if notes := EvaluateAlerts(sum, b, NewAlertState()); len(notes) != 1 {
		t.Fatalf("got %+v", notes)
	}
	sum = summaryFor(t, []Transaction{{Date: "2025-03-01", Type: Expense, Amount: 50}}, b)
	if notes := EvaluateAlerts(sum, b, NewAlertState()); len(notes) != 0 {
		t.Fatalf("below default threshold must not fire, got %+v", notes)
	}
}
