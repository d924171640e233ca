package core

import (
	"fmt"
	"math"
	"sort"
)

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type (
	Severity string

	// Notification is a toast-style event for the hosting UI.
	Notification struct {
		Severity Severity `json:"severity"`
		Title    string   `json:"title"`
		Detail   string   `json:"detail,omitempty"`
	}

	// AlertState maps "{month}:{condition}" keys to an already-fired
	// flag. Keys accumulate across months; they are small strings and
	// never cleared.
	AlertState map[string]bool
)

// NewAlertState returns an empty fired-key set.
func NewAlertState() AlertState {
	return AlertState{}
}

// EvaluateAlerts compares the month's aggregates against the budget
// thresholds and returns the notifications that fire now. Firing is
// permanent per key: the fired set makes repeated evaluation idempotent
// within a month, even if the threshold changes or spending drops.
//
// Ratios here are unclamped, unlike the display percentages.
func EvaluateAlerts(sum Summary, b Budgets, fired AlertState) []Notification {
	var out []Notification
	threshold := b.AlertThreshold
	if threshold <= 0 {
		threshold = DefaultAlertThreshold
	}

	if b.Overall > 0 {
		ratio := sum.Totals.Expense / b.Overall
		if ratio >= threshold {
			if key := sum.Month + ":overall80"; !fired[key] {
				fired[key] = true
				out = append(out, Notification{
					Severity: SeverityWarning,
					Title:    "Budget warning",
					Detail:   fmt.Sprintf("Spending is at %d%% of the monthly budget", roundPct(ratio)),
				})
			}
		}
		if ratio >= 1 {
			if key := sum.Month + ":overall100"; !fired[key] {
				fired[key] = true
				out = append(out, Notification{
					Severity: SeverityError,
					Title:    "Budget exceeded",
					Detail:   fmt.Sprintf("Spending is at %d%% of the monthly budget", roundPct(ratio)),
				})
			}
		}
	}

	cats := make([]string, 0, len(b.PerCategory))
	for c := range b.PerCategory {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	used := make(map[string]float64, len(sum.Categories))
	for _, ct := range sum.Categories {
		used[ct.Category] = ct.Amount
	}

	for _, c := range cats {
		limit := b.PerCategory[c]
		if limit <= 0 {
			continue
		}
		ratio := used[c] / limit
		if ratio >= threshold {
			if key := sum.Month + ":cat80:" + c; !fired[key] {
				fired[key] = true
				out = append(out, Notification{
					Severity: SeverityWarning,
					Title:    "Category budget warning",
					Detail:   fmt.Sprintf("%s is at %d%% of its limit", c, roundPct(ratio)),
				})
			}
		}
		if ratio >= 1 {
			if key := sum.Month + ":cat100:" + c; !fired[key] {
				fired[key] = true
				out = append(out, Notification{
					Severity: SeverityError,
					Title:    "Category budget exceeded",
					Detail:   fmt.Sprintf("%s is at %d%% of its limit", c, roundPct(ratio)),
				})
			}
		}
	}

	return out
}

func roundPct(ratio float64) int {
	return int(math.Round(100 * ratio))
}
