package core

import (
	"math"
	"sort"
	"time"
)

type (
	// MonthlyTotals sums the reference month. Expense includes
	// settlement amounts: a settlement counts toward total spending even
	// though it is a transfer, not a purchase.
	MonthlyTotals struct {
		Expense float64 `json:"expense"`
		Income  float64 `json:"income"`
	}

	// CategoryTotal is one category's expense sum for the month.
	// Settlements and income are excluded here.
	CategoryTotal struct {
		Category string  `json:"category"`
		Amount   float64 `json:"amount"`
	}

	// Progress reports spend against a configured limit. Pct is rounded
	// and clamped to [0,100] for display; alert evaluation works on the
	// unclamped ratio instead.
	Progress struct {
		Category string  `json:"category,omitempty"`
		Used     float64 `json:"used"`
		Limit    float64 `json:"limit"`
		Pct      int     `json:"pct"`
	}

	// HistoryPoint is one calendar month in the trend series. Only
	// income and expense types are counted; settlements are excluded.
	HistoryPoint struct {
		Month   string  `json:"month"`
		Income  float64 `json:"income"`
		Expense float64 `json:"expense"`
	}

	// Summary is everything the hosting UI derives for one reference
	// month. It is recomputed from scratch on every state change.
	Summary struct {
		Month       string          `json:"month"`
		Totals      MonthlyTotals   `json:"totals"`
		Categories  []CategoryTotal `json:"categories"`
		Overall     Progress        `json:"overall"`
		PerCategory []Progress      `json:"perCategory"`
		History     []HistoryPoint  `json:"history"`
	}
)

// HistoryMonths is the fixed length of the trend series.
const HistoryMonths = 6

// Summarize computes the monthly aggregates for the reference month.
// The history series always ends at now's calendar month, regardless of
// which month is being viewed. Total over any well-formed input: empty
// lists and zero budgets produce zero values, never a panic.
func Summarize(txs []Transaction, monthKey string, b Budgets, now time.Time) Summary {
	sum := Summary{Month: monthKey}

	catUsed := make(map[string]float64)
	var catOrder []string
	for _, t := range txs {
		if !t.InMonth(monthKey) {
			continue
		}
		switch t.Type {
		case Income:
			sum.Totals.Income += t.Amount
		case Expense:
			sum.Totals.Expense += t.Amount
			if _, seen := catUsed[t.Category]; !seen {
				catOrder = append(catOrder, t.Category)
			}
			catUsed[t.Category] += t.Amount
		case Settlement:
			sum.Totals.Expense += t.Amount
		}
	}

	sum.Categories = make([]CategoryTotal, 0, len(catOrder))
	for _, c := range catOrder {
		sum.Categories = append(sum.Categories, CategoryTotal{Category: c, Amount: catUsed[c]})
	}
	// Descending by amount; ties keep first-encountered order.
	sort.SliceStable(sum.Categories, func(i, j int) bool {
		return sum.Categories[i].Amount > sum.Categories[j].Amount
	})

	sum.Overall = Progress{
		Used:  sum.Totals.Expense,
		Limit: b.Overall,
		Pct:   progressPct(sum.Totals.Expense, b.Overall),
	}

	// Deterministic order for configured category limits.
	limited := make([]string, 0, len(b.PerCategory))
	for c := range b.PerCategory {
		limited = append(limited, c)
	}
	sort.Strings(limited)
	sum.PerCategory = make([]Progress, 0, len(limited))
	for _, c := range limited {
		limit := b.PerCategory[c]
		sum.PerCategory = append(sum.PerCategory, Progress{
			Category: c,
			Used:     catUsed[c],
			Limit:    limit,
			Pct:      progressPct(catUsed[c], limit),
		})
	}

	sum.History = historySeries(txs, now)
	return sum
}

// progressPct rounds 100*used/limit and clamps to [0,100]. A zero limit
// means no cap, reported as 0.
func progressPct(used, limit float64) int {
	if limit <= 0 {
		return 0
	}
	pct := int(math.Round(100 * used / limit))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct
}

// historySeries returns exactly HistoryMonths entries for the calendar
// months ending at now's month, oldest first.
func historySeries(txs []Transaction, now time.Time) []HistoryPoint {
	series := make([]HistoryPoint, 0, HistoryMonths)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(HistoryMonths - 1), 0)
	for i := 0; i < HistoryMonths; i++ {
		key := MonthKey(first.AddDate(0, i, 0))
		point := HistoryPoint{Month: key}
		for _, t := range txs {
			if !t.InMonth(key) {
				continue
			}
			switch t.Type {
			case Income:
				point.Income += t.Amount
			case Expense:
				point.Expense += t.Amount
			}
		}
		series = append(series, point)
	}
	return series
}
