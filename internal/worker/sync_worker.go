package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"twonest/internal/amqp"
	"twonest/internal/sheets"
	"twonest/internal/store"
)

// SyncWorker mirrors transactions from the state store to an external sheet.
type SyncWorker struct {
	store  store.StateStore
	sheets sheets.TransactionWriter

	mu       sync.Mutex
	mirrored map[string]bool
}

func NewSyncWorker(store store.StateStore, sheets sheets.TransactionWriter) *SyncWorker {
	return &SyncWorker{
		store:    store,
		sheets:   sheets,
		mirrored: make(map[string]bool),
	}
}

// HandleSyncMessage processes a single transaction sync message from AMQP.
// Redeliveries of an already mirrored transaction are acked without a
// second append.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID)

	w.mu.Lock()
	done := w.mirrored[msg.ID]
	w.mu.Unlock()
	if done {
		slog.InfoContext(ctx, "Transaction already mirrored, skipping", "id", msg.ID)
		return nil
	}

	state, err := w.store.LoadApp(ctx)
	if err != nil {
		return fmt.Errorf("load app state: %w", err)
	}

	for _, tx := range state.Transactions {
		if tx.ID != msg.ID {
			continue
		}
		ref, err := w.sheets.Append(ctx, tx)
		if err != nil {
			return fmt.Errorf("append to sheets: %w", err)
		}
		w.mu.Lock()
		w.mirrored[msg.ID] = true
		w.mu.Unlock()
		slog.InfoContext(ctx, "Transaction mirrored",
			"id", msg.ID,
			"sheets_ref", ref,
			"amount", tx.Amount)
		return nil
	}

	// The transaction may have been deleted before the message was
	// consumed. Nothing left to mirror.
	slog.WarnContext(ctx, "Transaction not found in state, skipping", "id", msg.ID)
	return nil
}

// SeedMirrored marks everything currently stored as already mirrored.
// Called once at startup so a restarted worker does not re-append rows
// it wrote in a previous run.
func (w *SyncWorker) SeedMirrored(ctx context.Context) error {
	state, err := w.store.LoadApp(ctx)
	if err != nil {
		return fmt.Errorf("load app state: %w", err)
	}
	w.mu.Lock()
	for _, tx := range state.Transactions {
		w.mirrored[tx.ID] = true
	}
	count := len(w.mirrored)
	w.mu.Unlock()
	slog.InfoContext(ctx, "Seeded mirror set", "count", count)
	return nil
}

// ProcessBacklog mirrors any stored transaction the worker has not seen
// a message for. This is a backup mechanism in case AMQP messages are
// lost.
func (w *SyncWorker) ProcessBacklog(ctx context.Context) error {
	state, err := w.store.LoadApp(ctx)
	if err != nil {
		return fmt.Errorf("load app state: %w", err)
	}

	synced := 0
	for _, tx := range state.Transactions {
		w.mu.Lock()
		done := w.mirrored[tx.ID]
		w.mu.Unlock()
		if done {
			continue
		}
		ref, err := w.sheets.Append(ctx, tx)
		if err != nil {
			slog.ErrorContext(ctx, "Backlog append failed",
				"id", tx.ID, "error", err)
			continue
		}
		w.mu.Lock()
		w.mirrored[tx.ID] = true
		w.mu.Unlock()
		synced++
		slog.InfoContext(ctx, "Backlog transaction mirrored",
			"id", tx.ID, "sheets_ref", ref)
	}

	if synced > 0 {
		slog.InfoContext(ctx, "Backlog pass completed", "synced", synced)
	}
	return nil
}
