package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income     TxType = "income"
	Expense    TxType = "expense"
	Settlement TxType = "settlement"
)

const (
	SplitNone   SplitMode = "none"
	SplitEven   SplitMode = "even"
	SplitCustom SplitMode = "custom"
)

// DefaultAlertThreshold is the spend-to-budget ratio that triggers a warning.
const DefaultAlertThreshold = 0.8

type (
	TxType    string
	SplitMode string

	// SplitPolicy describes how an expense is divided between the two
	// participants. Shares maps participant name to the portion of the
	// amount that participant owes.
	SplitPolicy struct {
		Mode   SplitMode          `json:"mode"`
		Shares map[string]float64 `json:"shares,omitempty"`
	}

	// Transaction is immutable once created; it is only ever removed,
	// never edited in place. Split is present only for expenses.
	Transaction struct {
		ID       string       `json:"id"`
		Date     string       `json:"date"` // YYYY-MM-DD
		User     string       `json:"user"`
		Type     TxType       `json:"type"`
		Category string       `json:"category,omitempty"`
		Amount   float64      `json:"amount"`
		Notes    string       `json:"notes,omitempty"`
		Split    *SplitPolicy `json:"split,omitempty"`
	}

	// Budgets holds the monthly caps. Overall or a per-category limit of 0
	// means "no cap configured".
	Budgets struct {
		Overall        float64            `json:"overall"`
		PerCategory    map[string]float64 `json:"perCategory,omitempty"`
		Currency       string             `json:"currency"`
		AlertThreshold float64            `json:"alertThreshold"`
	}

	// Settings configures the household. Exactly two participants are
	// supported; the pair is ordered (index 0 is the primary).
	Settings struct {
		Users      [2]string `json:"users"`
		Categories []string  `json:"categories"`
		Currency   string    `json:"currency"`
		AppName    string    `json:"appName"`
	}

	// Goal is a savings goal. Saved may exceed Target.
	Goal struct {
		ID     string  `json:"id"`
		Name   string  `json:"name"`
		Target float64 `json:"target"`
		Saved  float64 `json:"saved"`
		Due    string  `json:"due,omitempty"`
	}

	// Meta records bookkeeping about the persisted state.
	Meta struct {
		Created string `json:"created"`
	}

	// AppState is the root state value. It is owned by a single
	// controller and replaced wholesale on every mutation.
	AppState struct {
		Transactions []Transaction `json:"transactions"`
		Budgets      Budgets       `json:"budgets"`
		Settings     Settings      `json:"settings"`
		Goals        []Goal        `json:"goals"`
		Meta         Meta          `json:"meta"`
	}

	// Snapshot is the four-section shareable view of AppState. Budgets
	// and Settings are pointers so an imported snapshot can distinguish
	// "absent" from "zero" during a merge.
	Snapshot struct {
		Transactions []Transaction `json:"transactions"`
		Budgets      *Budgets      `json:"budgets,omitempty"`
		Settings     *Settings     `json:"settings,omitempty"`
		Goals        []Goal        `json:"goals"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidSplit    = errors.New("invalid split mode")
	ErrUnknownUser     = errors.New("unknown participant")
	ErrUnexpectedSplit = errors.New("split only applies to expenses")
	ErrEmptyGoalName   = errors.New("empty goal name")
	ErrInvalidTarget   = errors.New("invalid goal amount")
)

// DateLayout is the calendar-date form used throughout: sortable and
// prefix-filterable by month.
const DateLayout = "2006-01-02"

// MonthLayout is the reference-month key form.
const MonthLayout = "2006-01"

// MonthKey returns the YYYY-MM key for t.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// DateKey returns the YYYY-MM-DD form for t.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// InMonth reports whether the transaction belongs to the given month.
// Membership is a prefix test on the date string.
func (t Transaction) InMonth(monthKey string) bool {
	return strings.HasPrefix(t.Date, monthKey)
}

func (ty TxType) IsValid() bool {
	switch ty {
	case Income, Expense, Settlement:
		return true
	default:
		return false
	}
}

func (m SplitMode) IsValid() bool {
	switch m {
	case SplitNone, SplitEven, SplitCustom:
		return true
	default:
		return false
	}
}

// Validate checks a transaction at the input boundary against the
// configured participants.
func (t Transaction) Validate(s Settings) error {
	if _, err := time.Parse(DateLayout, t.Date); err != nil {
		return ErrInvalidDate
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if t.User != s.Users[0] && t.User != s.Users[1] {
		return ErrUnknownUser
	}
	if t.Split != nil {
		if t.Type != Expense {
			return ErrUnexpectedSplit
		}
		if !t.Split.Mode.IsValid() {
			return ErrInvalidSplit
		}
	}
	return nil
}

// Validate checks a goal at the input boundary.
func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyGoalName
	}
	if g.Target <= 0 || g.Saved < 0 {
		return ErrInvalidTarget
	}
	return nil
}

// DefaultSettings returns the initial household configuration.
func DefaultSettings() Settings {
	return Settings{
		Users:      [2]string{"Me", "Partner"},
		Categories: []string{"Groceries", "Rent", "Utilities", "Transport", "Dining", "Fun", "Health", "Other"},
		Currency:   "EUR",
		AppName:    "TwoNest",
	}
}

// DefaultBudgets returns the initial budget configuration: no caps, the
// default alert threshold.
func DefaultBudgets() Budgets {
	return Budgets{
		Overall:        0,
		PerCategory:    map[string]float64{},
		Currency:       "EUR",
		AlertThreshold: DefaultAlertThreshold,
	}
}

// NewAppState returns a freshly initialized state.
func NewAppState(now time.Time) AppState {
	return AppState{
		Transactions: []Transaction{},
		Budgets:      DefaultBudgets(),
		Settings:     DefaultSettings(),
		Goals:        []Goal{},
		Meta:         Meta{Created: DateKey(now)},
	}
}

// Snapshot returns the shareable four-section view of the state.
func (a AppState) Snapshot() Snapshot {
	b := a.Budgets
	s := a.Settings
	return Snapshot{
		Transactions: append([]Transaction(nil), a.Transactions...),
		Budgets:      &b,
		Settings:     &s,
		Goals:        append([]Goal(nil), a.Goals...),
	}
}
