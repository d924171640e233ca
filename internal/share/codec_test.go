package share

import (
	"reflect"
	"testing"

	"twonest/internal/core"
)

func sampleSnapshot() core.Snapshot {
	b := core.DefaultBudgets()
	b.Overall = 1200
	b.PerCategory = map[string]float64{"Groceries": 400}
	s := core.DefaultSettings()
	s.Users = [2]string{"ana", "ben"}
	return core.Snapshot{
		Transactions: []core.Transaction{
			{ID: "t1", Date: "2025-03-01", User: "ana", Type: core.Expense, Category: "Groceries", Amount: 42.5,
				Notes: "crème brûlée & 団子 🍡", Split: &core.SplitPolicy{Mode: core.SplitEven}},
			{ID: "t2", Date: "2025-03-02", User: "ben", Type: core.Income, Amount: 2000},
		},
		Budgets:  &b,
		Settings: &s,
		Goals:    []core.Goal{{ID: "g1", Name: "Viaggio a Kyōto", Target: 3000, Saved: 150}},
	}
}

func TestRoundTrip(t *testing.T) {
	s := sampleSnapshot()
	token, err := Encode(s)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, s) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, s)
	}
}

func TestDecodeMalformed(t *testing.T) {
	token, err := Encode(sampleSnapshot())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	cases := []string{
		"",
		"!!!not base64!!!",
		token[:len(token)/2], // truncated
		"aGVsbG8",            // valid base64, not a snapshot
	}
	for _, in := range cases {
		if _, err := Decode(in); err != ErrDecode {
			t.Fatalf("Decode(%q) = %v, want ErrDecode", in, err)
		}
	}
}

func TestReplace(t *testing.T) {
	current := sampleSnapshot()
	imported := core.Snapshot{Transactions: []core.Transaction{{ID: "x"}}}
	got := Replace(current, imported)
	if len(got.Transactions) != 1 || got.Transactions[0].ID != "x" || got.Budgets != nil {
		t.Fatalf("got %+v", got)
	}
}

func TestMergeAppendsWithoutDedup(t *testing.T) {
	current := sampleSnapshot()
	imported := sampleSnapshot() // same ids on purpose

	merged := Merge(current, imported)
	if len(merged.Transactions) != 4 {
		t.Fatalf("transactions = %d, want 4 (no dedup by id)", len(merged.Transactions))
	}
	if len(merged.Goals) != 2 {
		t.Fatalf("goals = %d, want 2", len(merged.Goals))
	}
	// Imported entries come after current ones.
	if merged.Transactions[2].ID != "t1" {
		t.Fatalf("imported transactions must be appended, got %+v", merged.Transactions)
	}

	// Re-importing the merge result doubles again.
	again := Merge(merged, imported)
	if len(again.Transactions) != 6 {
		t.Fatalf("transactions = %d, want 6", len(again.Transactions))
	}
}

func TestMergeKeepsCurrentConfigWhenAbsent(t *testing.T) {
	current := sampleSnapshot()
	imported := core.Snapshot{Transactions: []core.Transaction{{ID: "x"}}}

	merged := Merge(current, imported)
	if merged.Budgets == nil || merged.Budgets.Overall != 1200 {
		t.Fatalf("budgets must survive an import without budgets: %+v", merged.Budgets)
	}
	if merged.Settings == nil || merged.Settings.Users[0] != "ana" {
		t.Fatalf("settings must survive an import without settings: %+v", merged.Settings)
	}

	nb := core.Budgets{Overall: 9}
	imported.Budgets = &nb
	merged = Merge(current, imported)
	if merged.Budgets.Overall != 9 {
		t.Fatalf("imported budgets must overwrite wholesale: %+v", merged.Budgets)
	}
}
