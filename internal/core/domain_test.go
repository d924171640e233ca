package core

import (
	"testing"
	"time"
)

func testSettings() Settings {
	s := DefaultSettings()
	s.Users = [2]string{"ana", "ben"}
	return s
}

func TestTransactionValidate(t *testing.T) {
	s := testSettings()
	good := Transaction{ID: "1", Date: "2025-03-10", User: "ana", Type: Expense, Category: "Groceries", Amount: 12.5}
	if err := good.Validate(s); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		tx   Transaction
		want error
	}{
		{"bad date", Transaction{Date: "10/03/2025", User: "ana", Type: Expense, Amount: 1}, ErrInvalidDate},
		{"bad type", Transaction{Date: "2025-03-10", User: "ana", Type: "transfer", Amount: 1}, ErrInvalidType},
		{"zero amount", Transaction{Date: "2025-03-10", User: "ana", Type: Expense, Amount: 0}, ErrInvalidAmount},
		{"negative amount", Transaction{Date: "2025-03-10", User: "ana", Type: Income, Amount: -3}, ErrInvalidAmount},
		{"unknown user", Transaction{Date: "2025-03-10", User: "zoe", Type: Income, Amount: 1}, ErrUnknownUser},
		{"split on settlement", Transaction{Date: "2025-03-10", User: "ana", Type: Settlement, Amount: 1, Split: &SplitPolicy{Mode: SplitEven}}, ErrUnexpectedSplit},
		{"bad split mode", Transaction{Date: "2025-03-10", User: "ana", Type: Expense, Amount: 1, Split: &SplitPolicy{Mode: "half"}}, ErrInvalidSplit},
	}
	for _, tc := range cases {
		if err := tc.tx.Validate(s); err != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestGoalValidate(t *testing.T) {
	if err := (Goal{Name: "Holiday", Target: 500}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Goal{Name: "  ", Target: 500}).Validate(); err != ErrEmptyGoalName {
		t.Fatalf("expected ErrEmptyGoalName, got %v", err)
	}
	if err := (Goal{Name: "Car", Target: -1}).Validate(); err != ErrInvalidTarget {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
	// Saved past the target is fine.
	if err := (Goal{Name: "Car", Target: 100, Saved: 150}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestInMonth(t *testing.T) {
	tx := Transaction{Date: "2025-03-10"}
	if !tx.InMonth("2025-03") {
		t.Fatalf("expected 2025-03-10 in 2025-03")
	}
	if tx.InMonth("2025-04") {
		t.Fatalf("did not expect 2025-03-10 in 2025-04")
	}
}

func TestNewAppStateDefaults(t *testing.T) {
	st := NewAppState(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	if st.Meta.Created != "2025-03-10" {
		t.Fatalf("created = %q", st.Meta.Created)
	}
	if st.Budgets.AlertThreshold != DefaultAlertThreshold {
		t.Fatalf("threshold = %v", st.Budgets.AlertThreshold)
	}
	if st.Settings.Users[0] == "" || st.Settings.Users[1] == "" {
		t.Fatalf("expected two default participants")
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"12.34", 12.34, true},
		{"12,34", 12.34, true},
		{" 2.50 ", 2.5, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}
