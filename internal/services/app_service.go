package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"twonest/internal/amqp"
	"twonest/internal/core"
	"twonest/internal/export"
	"twonest/internal/share"
	"twonest/internal/store"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrGoalNotFound        = errors.New("goal not found")
	ErrInvalidImportMode   = errors.New("invalid import mode")
	ErrInvalidBudget       = errors.New("invalid budget")
	ErrInvalidSettings     = errors.New("invalid settings")
)

// ImportMode selects how an imported snapshot is resolved against
// current state.
type ImportMode string

const (
	ImportMerge   ImportMode = "merge"
	ImportReplace ImportMode = "replace"
)

func (m ImportMode) IsValid() bool {
	return m == ImportMerge || m == ImportReplace
}

// Dashboard is the aggregate read model for the main view. Notifications
// carries alerts fired since the previous dashboard read.
type Dashboard struct {
	Month         string                 `json:"month"`
	Summary       core.Summary           `json:"summary"`
	Balance       core.BalanceResult     `json:"balance"`
	Gamification  core.GamificationState `json:"gamification"`
	Notifications []core.Notification    `json:"notifications"`
	Currency      string                 `json:"currency"`
}

// AppService owns all state transitions. Every mutation loads state,
// applies the change, recomputes derived state, and persists the result
// before returning; a mutex serializes writers so derived state never
// runs against a torn snapshot.
type AppService struct {
	mu         sync.Mutex
	store      store.StateStore
	amqpClient *amqp.Client
	now        func() time.Time

	pending []core.Notification
}

func NewAppService(store store.StateStore, amqpClient *amqp.Client) *AppService {
	return &AppService{
		store:      store,
		amqpClient: amqpClient,
		now:        time.Now,
	}
}

// AddTransaction validates and stores a transaction, awards XP, and
// schedules the sheet mirror. The ID is assigned here; any caller-set
// value is ignored.
func (s *AppService) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.LoadApp(ctx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load state: %w", err)
	}

	tx.ID = uuid.NewString()
	if err := tx.Validate(state.Settings); err != nil {
		return core.Transaction{}, err
	}

	state.Transactions = append(state.Transactions, tx)

	gamify, err := s.store.LoadGamification(ctx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load gamification: %w", err)
	}
	gamify = core.ApplyTransactionAdded(gamify, tx.Type)

	if err := s.recompute(ctx, state, gamify); err != nil {
		return core.Transaction{}, err
	}

	s.publishSync(ctx, tx.ID)

	slog.InfoContext(ctx, "Transaction added",
		"transaction_id", tx.ID,
		"tx_type", tx.Type,
		"amount", tx.Amount)
	return tx, nil
}

// DeleteTransaction removes a transaction by id. Derived state is
// recomputed from the remaining transactions; XP already awarded for the
// deleted entry is kept.
func (s *AppService) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.LoadApp(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	idx := -1
	for i, tx := range state.Transactions {
		if tx.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrTransactionNotFound
	}
	state.Transactions = append(state.Transactions[:idx], state.Transactions[idx+1:]...)

	gamify, err := s.store.LoadGamification(ctx)
	if err != nil {
		return fmt.Errorf("load gamification: %w", err)
	}
	if err := s.recompute(ctx, state, gamify); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction deleted", "transaction_id", id)
	return nil
}

// ListTransactions returns transactions, optionally filtered to one
// YYYY-MM month.
func (s *AppService) ListTransactions(ctx context.Context, monthKey string) ([]core.Transaction, error) {
	state, err := s.store.LoadApp(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if monthKey == "" {
		return state.Transactions, nil
	}
	return monthTransactions(state.Transactions, monthKey), nil
}

// GetDashboard assembles the main view for the given month (current
// month when empty) and drains notifications fired since the last read.
func (s *AppService) GetDashboard(ctx context.Context, monthKey string) (Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if monthKey == "" {
		monthKey = core.MonthKey(s.now())
	}

	state, err := s.store.LoadApp(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load state: %w", err)
	}
	gamify, err := s.store.LoadGamification(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load gamification: %w", err)
	}

	sum := core.Summarize(state.Transactions, monthKey, state.Budgets, s.now())

	notifications := append([]core.Notification(nil), s.pending...)
	s.pending = nil

	return Dashboard{
		Month:         monthKey,
		Summary:       sum,
		Balance:       core.ComputeBalance(monthTransactions(state.Transactions, monthKey), state.Settings.Users),
		Gamification:  gamify,
		Notifications: notifications,
		Currency:      state.Budgets.Currency,
	}, nil
}

// SettleUp records the settlement transaction that zeroes the pair
// balance. Returns core.ErrNothingToSettle when the pair is even.
func (s *AppService) SettleUp(ctx context.Context) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.LoadApp(ctx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load state: %w", err)
	}

	// The balance is scoped to the current month; the settlement lands
	// in the same month, so it zeroes exactly what it was computed from.
	monthKey := core.MonthKey(s.now())
	res := core.ComputeBalance(monthTransactions(state.Transactions, monthKey), state.Settings.Users)
	tx, err := core.SettleUp(res.Balance, state.Settings.Users, uuid.NewString(), core.DateKey(s.now()))
	if err != nil {
		return core.Transaction{}, err
	}
	state.Transactions = append(state.Transactions, tx)

	gamify, err := s.store.LoadGamification(ctx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load gamification: %w", err)
	}
	gamify = core.ApplyTransactionAdded(gamify, tx.Type)

	if err := s.recompute(ctx, state, gamify); err != nil {
		return core.Transaction{}, err
	}

	s.publishSync(ctx, tx.ID)

	slog.InfoContext(ctx, "Settlement recorded",
		"transaction_id", tx.ID,
		"balance", res.Balance,
		"user", tx.User)
	return tx, nil
}

// GetBudgets returns the current budget configuration.
func (s *AppService) GetBudgets(ctx context.Context) (core.Budgets, error) {
	state, err := s.store.LoadApp(ctx)
	if err != nil {
		return core.Budgets{}, fmt.Errorf("load state: %w", err)
	}
	return state.Budgets, nil
}

// UpdateBudgets replaces the budget configuration and re-evaluates
// alerts against the new limits.
func (s *AppService) UpdateBudgets(ctx context.Context, b core.Budgets) error {
	if b.Overall < 0 {
		return fmt.Errorf("%w: negative overall limit", ErrInvalidBudget)
	}
	for cat, limit := range b.PerCategory {
		if limit < 0 {
			return fmt.Errorf("%w: negative limit for %s", ErrInvalidBudget, cat)
		}
	}
	if b.AlertThreshold < 0 || b.AlertThreshold > 1 {
		return fmt.Errorf("%w: alert threshold out of range", ErrInvalidBudget)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.LoadApp(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if b.PerCategory == nil {
		b.PerCategory = map[string]float64{}
	}
	state.Budgets = b

	gamify, err := s.store.LoadGamification(ctx)
	if err != nil {
		return fmt.Errorf("load gamification: %w", err)
	}
	return s.recompute(ctx, state, gamify)
}

// GetSettings returns the current settings.
func (s *AppService) GetSettings(ctx context.Context) (core.Settings, error) {
	state, err := s.store.LoadApp(ctx)
	if err != nil {
		return core.Settings{}, fmt.Errorf("load state: %w", err)
	}
	return state.Settings, nil
}

// UpdateSettings replaces the settings. Renaming a participant does not
// rewrite historical transactions; old names simply stop matching the
// pair and drop out of the balance.
func (s *AppService) UpdateSettings(ctx context.Context, st core.Settings) error {
	if st.Users[0] == "" || st.Users[1] == "" {
		return fmt.Errorf("%w: both participants need a name", ErrInvalidSettings)
	}
	if st.Users[0] == st.Users[1] {
		return fmt.Errorf("%w: participants must differ", ErrInvalidSettings)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.LoadApp(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if st.Categories == nil {
		st.Categories = state.Settings.Categories
	}
	state.Settings = st
	return s.persistApp(ctx, state)
}

// ListGoals returns all savings goals.
func (s *AppService) ListGoals(ctx context.Context) ([]core.Goal, error) {
	state, err := s.store.LoadApp(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	return state.Goals, nil
}

// AddGoal validates and stores a new savings goal.
func (s *AppService) AddGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	g.ID = uuid.NewString()
	g.Saved = 0
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.LoadApp(ctx)
	if err != nil {
		return core.Goal{}, fmt.Errorf("load state: %w", err)
	}
	state.Goals = append(state.Goals, g)
	if err := s.persistApp(ctx, state); err != nil {
		return core.Goal{}, err
	}

	slog.InfoContext(ctx, "Goal added", "goal_id", g.ID, "target", g.Target)
	return g, nil
}

// ContributeToGoal adds to a goal's saved amount. Saved may exceed the
// target; overshoot is allowed.
func (s *AppService) ContributeToGoal(ctx context.Context, id string, amount float64) (core.Goal, error) {
	if amount <= 0 {
		return core.Goal{}, core.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.LoadApp(ctx)
	if err != nil {
		return core.Goal{}, fmt.Errorf("load state: %w", err)
	}
	for i := range state.Goals {
		if state.Goals[i].ID != id {
			continue
		}
		state.Goals[i].Saved += amount
		if err := s.persistApp(ctx, state); err != nil {
			return core.Goal{}, err
		}
		return state.Goals[i], nil
	}
	return core.Goal{}, ErrGoalNotFound
}

// DeleteGoal removes a goal by id.
func (s *AppService) DeleteGoal(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.LoadApp(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	for i, g := range state.Goals {
		if g.ID != id {
			continue
		}
		state.Goals = append(state.Goals[:i], state.Goals[i+1:]...)
		return s.persistApp(ctx, state)
	}
	return ErrGoalNotFound
}

// GetGamification returns the current gamification state.
func (s *AppService) GetGamification(ctx context.Context) (core.GamificationState, error) {
	g, err := s.store.LoadGamification(ctx)
	if err != nil {
		return core.GamificationState{}, fmt.Errorf("load gamification: %w", err)
	}
	return g, nil
}

// ExportCSV renders all transactions as a CSV document.
func (s *AppService) ExportCSV(ctx context.Context) (string, error) {
	state, err := s.store.LoadApp(ctx)
	if err != nil {
		return "", fmt.Errorf("load state: %w", err)
	}
	return export.CSV(state.Transactions)
}

// ShareToken encodes the current state as a share token.
func (s *AppService) ShareToken(ctx context.Context) (string, error) {
	state, err := s.store.LoadApp(ctx)
	if err != nil {
		return "", fmt.Errorf("load state: %w", err)
	}
	return share.Encode(state.Snapshot())
}

// Import decodes a share token and folds it into the current state
// according to mode. A malformed token leaves state untouched and
// returns share.ErrDecode.
func (s *AppService) Import(ctx context.Context, token string, mode ImportMode) error {
	if !mode.IsValid() {
		return ErrInvalidImportMode
	}
	snap, err := share.Decode(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.LoadApp(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	var resolved core.Snapshot
	switch mode {
	case ImportReplace:
		resolved = share.Replace(state.Snapshot(), snap)
	default:
		resolved = share.Merge(state.Snapshot(), snap)
	}

	state.Transactions = resolved.Transactions
	state.Goals = resolved.Goals
	if resolved.Budgets != nil {
		state.Budgets = *resolved.Budgets
	}
	if resolved.Settings != nil {
		state.Settings = *resolved.Settings
	}
	if state.Transactions == nil {
		state.Transactions = []core.Transaction{}
	}
	if state.Goals == nil {
		state.Goals = []core.Goal{}
	}

	gamify, err := s.store.LoadGamification(ctx)
	if err != nil {
		return fmt.Errorf("load gamification: %w", err)
	}
	if err := s.recompute(ctx, state, gamify); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Snapshot imported",
		"operation", "import",
		"mode", string(mode),
		"transactions", len(resolved.Transactions))
	return nil
}

// monthTransactions filters the ledger to one YYYY-MM month.
func monthTransactions(txs []core.Transaction, monthKey string) []core.Transaction {
	out := []core.Transaction{}
	for _, tx := range txs {
		if tx.InMonth(monthKey) {
			out = append(out, tx)
		}
	}
	return out
}

// recompute runs the derived-state pipeline after a mutation: summarize
// the current month, evaluate alerts, apply the daily and monthly
// gamification checks, then persist all three blobs.
func (s *AppService) recompute(ctx context.Context, state core.AppState, gamify core.GamificationState) error {
	now := s.now()
	sum := core.Summarize(state.Transactions, core.MonthKey(now), state.Budgets, now)

	fired, err := s.store.LoadAlerts(ctx)
	if err != nil {
		return fmt.Errorf("load alerts: %w", err)
	}
	notifications := core.EvaluateAlerts(sum, state.Budgets, fired)

	gamify = core.ApplyNoSpendCheck(gamify, state.Transactions, core.DateKey(now))
	gamify = core.ApplyUnderBudgetCheck(gamify, sum.Totals, state.Budgets)

	if err := s.persistApp(ctx, state); err != nil {
		return err
	}
	if err := s.store.SaveGamification(ctx, gamify); err != nil {
		return fmt.Errorf("save gamification: %w", err)
	}
	if err := s.store.SaveAlerts(ctx, fired); err != nil {
		return fmt.Errorf("save alerts: %w", err)
	}

	if len(notifications) > 0 {
		s.pending = append(s.pending, notifications...)
		s.publishNotifications(ctx, notifications, sum.Month)
	}
	return nil
}

func (s *AppService) persistApp(ctx context.Context, state core.AppState) error {
	if err := s.store.SaveApp(ctx, state); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (s *AppService) publishSync(ctx context.Context, id string) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishTransactionSync(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"transaction_id", id, "error", err)
		// The transaction is saved locally; the mirror catches up later.
	}
}

func (s *AppService) publishNotifications(ctx context.Context, ns []core.Notification, month string) {
	if s.amqpClient == nil {
		return
	}
	for _, n := range ns {
		if err := s.amqpClient.PublishNotification(ctx, n, month); err != nil {
			slog.ErrorContext(ctx, "Failed to publish notification",
				"title", n.Title, "error", err)
		}
	}
}

// Close releases the store and the AMQP connection.
func (s *AppService) Close() error {
	var errs []error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close app service: %v", errs)
	}
	return nil
}
