package core

import "errors"

// ErrNothingToSettle is returned by SettleUp when the balance is zero.
var ErrNothingToSettle = errors.New("nothing to settle")

// BalanceResult is the two-party running balance for a transaction set.
// Positive balance means the partner owes the primary; negative means
// the primary owes the partner. Creditor is empty when settled.
type BalanceResult struct {
	Balance  float64 `json:"balance"`
	Creditor string  `json:"creditor,omitempty"`
}

// ComputeBalance folds the split-share rules over the transactions.
// The fold is a pure summation, so the result is order-independent.
//
// Only the non-payer's share moves the balance: the payer already
// covered their own share. A settlement from the primary raises the
// balance, one from the partner lowers it.
func ComputeBalance(txs []Transaction, users [2]string) BalanceResult {
	primary, partner := users[0], users[1]
	var balance float64
	for _, t := range txs {
		switch t.Type {
		case Expense:
			if t.Split == nil || t.Split.Mode == SplitNone {
				continue
			}
			shares := t.Split.Shares
			if t.Split.Mode == SplitEven {
				// Even splits ignore any stored shares.
				half := t.Amount / 2
				shares = map[string]float64{primary: half, partner: half}
			}
			if shares == nil {
				continue
			}
			if t.User == primary {
				balance += shares[partner]
			} else if t.User == partner {
				balance -= shares[primary]
			}
		case Settlement:
			if t.User == primary {
				balance += t.Amount
			} else if t.User == partner {
				balance -= t.Amount
			}
		}
	}

	res := BalanceResult{Balance: balance}
	switch {
	case balance > 0:
		res.Creditor = primary
	case balance < 0:
		res.Creditor = partner
	}
	return res
}

// SettleUp synthesizes the settlement transaction that clears the given
// balance: from the debtor to the creditor, for the full outstanding
// amount, dated today. Returns ErrNothingToSettle when |balance| is 0.
func SettleUp(balance float64, users [2]string, id, today string) (Transaction, error) {
	amt := balance
	if amt < 0 {
		amt = -amt
	}
	if amt <= 0 {
		return Transaction{}, ErrNothingToSettle
	}
	debtor := users[1]
	if balance < 0 {
		debtor = users[0]
	}
	return Transaction{
		ID:     id,
		Date:   today,
		User:   debtor,
		Type:   Settlement,
		Amount: amt,
		Notes:  "Settle up",
	}, nil
}
