package core

import "testing"

var pair = [2]string{"ana", "ben"}

func TestComputeBalanceEvenSplit(t *testing.T) {
	txs := []Transaction{
		{Date: "2025-03-01", User: "ana", Type: Expense, Amount: 100, Split: &SplitPolicy{Mode: SplitEven}},
	}
	res := ComputeBalance(txs, pair)
	if res.Balance != 50 || res.Creditor != "ana" {
		t.Fatalf("got %+v, want balance 50 creditor ana", res)
	}

	// A settlement of 50 from the debtor clears it.
	txs = append(txs, Transaction{Date: "2025-03-02", User: "ben", Type: Settlement, Amount: 50})
	res = ComputeBalance(txs, pair)
	if res.Balance != 0 || res.Creditor != "" {
		t.Fatalf("got %+v, want settled", res)
	}
}

func TestComputeBalanceEvenIgnoresStoredShares(t *testing.T) {
	txs := []Transaction{
		{User: "ana", Type: Expense, Amount: 80, Split: &SplitPolicy{
			Mode:   SplitEven,
			Shares: map[string]float64{"ana": 70, "ben": 10}, // stale, must be ignored
		}},
	}
	res := ComputeBalance(txs, pair)
	if res.Balance != 40 {
		t.Fatalf("balance = %v, want 40", res.Balance)
	}
}

func TestComputeBalanceCustomSplit(t *testing.T) {
	txs := []Transaction{
		{User: "ben", Type: Expense, Amount: 90, Split: &SplitPolicy{
			Mode:   SplitCustom,
			Shares: map[string]float64{"ana": 30, "ben": 60},
		}},
	}
	res := ComputeBalance(txs, pair)
	// Ben paid; only Ana's share moves the balance, in Ben's favor.
	if res.Balance != -30 || res.Creditor != "ben" {
		t.Fatalf("got %+v, want balance -30 creditor ben", res)
	}
}

func TestComputeBalanceUnsplitAndIncome(t *testing.T) {
	txs := []Transaction{
		{User: "ana", Type: Expense, Amount: 200}, // no split: fully borne by payer
		{User: "ana", Type: Expense, Amount: 40, Split: &SplitPolicy{Mode: SplitNone}},
		{User: "ben", Type: Income, Amount: 1000},
	}
	res := ComputeBalance(txs, pair)
	if res.Balance != 0 || res.Creditor != "" {
		t.Fatalf("got %+v, want settled", res)
	}
}

func TestSettleUp(t *testing.T) {
	tx, err := SettleUp(50, pair, "id-1", "2025-03-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.User != "ben" || tx.Type != Settlement || tx.Amount != 50 || tx.Date != "2025-03-15" {
		t.Fatalf("got %+v", tx)
	}

	tx, err = SettleUp(-12.5, pair, "id-2", "2025-03-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.User != "ana" || tx.Amount != 12.5 {
		t.Fatalf("got %+v", tx)
	}

	if _, err := SettleUp(0, pair, "id-3", "2025-03-15"); err != ErrNothingToSettle {
		t.Fatalf("expected ErrNothingToSettle, got %v", err)
	}
}
