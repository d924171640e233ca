// Package export renders the transaction ledger as CSV text.
package export

import (
	"encoding/csv"
	"strconv"
	"strings"

	"twonest/internal/core"
)

// Columns mirror the transaction record fields, in declaration order.
var header = []string{"id", "date", "user", "type", "category", "amount", "notes", "split"}

// CSV encodes the transactions as CSV: a header row followed by one row
// per transaction. An empty list yields an empty string, not a
// header-only file.
func CSV(txs []core.Transaction) (string, error) {
	if len(txs) == 0 {
		return "", nil
	}
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, t := range txs {
		split := ""
		if t.Split != nil {
			split = string(t.Split.Mode)
		}
		row := []string{
			t.ID,
			t.Date,
			t.User,
			string(t.Type),
			t.Category,
			strconv.FormatFloat(t.Amount, 'f', -1, 64),
			t.Notes,
			split,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
