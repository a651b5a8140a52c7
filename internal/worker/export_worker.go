// Package worker runs the asynchronous ledger export pipeline.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// ExportStorage is the slice of the repository the export worker needs.
type ExportStorage interface {
	GetExpense(ctx context.Context, id string) (string, core.Expense, error)
	ListPendingSyncExpenses(ctx context.Context, limit int) ([]storage.PendingExpense, error)
	MarkExpenseSynced(ctx context.Context, id string) error
	MarkExpenseSyncError(ctx context.Context, id string) error
}

// ExportWorker mirrors expense rows to the external ledger. Change
// messages from the broker drive it; a periodic pending scan catches
// rows whose messages were lost.
type ExportWorker struct {
	storage   ExportStorage
	ledger    export.Ledger
	logger    *log.Logger
	batchSize int
}

func NewExportWorker(st ExportStorage, ledger export.Ledger, logger *log.Logger, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   st,
		ledger:    ledger,
		logger:    logger.WithComponent(log.ComponentWorker),
		batchSize: batchSize,
	}
}

// HandleChange processes one change message. Only expense creations and
// updates reach the ledger; other entities and deletions are acked and
// ignored, the ledger is append-only.
func (w *ExportWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	if msg.Entity != "expense" || msg.Action == "deleted" {
		return nil
	}

	owner, expense, err := w.storage.GetExpense(ctx, msg.ID)
	if errors.Is(err, storage.ErrNotFound) {
		// Row deleted between publish and consume; nothing to export.
		w.logger.DebugContext(ctx, "Change message for vanished row", log.FieldEntityID, msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get expense from storage: %w", err)
	}

	return w.exportExpense(ctx, owner, expense)
}

// ProcessPending exports up to batchSize rows still marked pending. This
// is the backup path for lost broker messages.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.ListPendingSyncExpenses(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending expenses: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	w.logger.InfoContext(ctx, "Processing pending expenses", "count", len(pending))

	for _, p := range pending {
		owner, expense, err := w.storage.GetExpense(ctx, p.ID)
		if err != nil {
			w.logger.ErrorContext(ctx, "Failed to load pending expense",
				log.FieldEntityID, p.ID, log.FieldError, err)
			if markErr := w.storage.MarkExpenseSyncError(ctx, p.ID); markErr != nil {
				w.logger.ErrorContext(ctx, "Failed to mark sync error",
					log.FieldEntityID, p.ID, log.FieldError, markErr)
			}
			continue
		}
		if err := w.exportExpense(ctx, owner, expense); err != nil {
			w.logger.ErrorContext(ctx, "Failed to export pending expense",
				log.FieldEntityID, p.ID, log.FieldError, err)
		}
	}
	return nil
}

// Run consumes change messages and runs the pending scan until the
// context ends. The first scan happens immediately so a restart drains
// the backlog without waiting a full interval.
func (w *ExportWorker) Run(ctx context.Context, client *amqp.Client, interval time.Duration) error {
	if err := w.ProcessPending(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup pending scan failed", log.FieldError, err)
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := w.ProcessPending(ctx); err != nil {
					w.logger.ErrorContext(ctx, "Pending scan failed", log.FieldError, err)
				}
			}
		}
	}()

	return client.ConsumeLoop(ctx, func(msg *amqp.ChangeMessage) error {
		return w.HandleChange(ctx, msg)
	})
}

func (w *ExportWorker) exportExpense(ctx context.Context, owner string, e core.Expense) error {
	ref, err := w.ledger.AppendExpense(ctx, owner, e)
	if err != nil {
		if markErr := w.storage.MarkExpenseSyncError(ctx, e.ID); markErr != nil {
			w.logger.ErrorContext(ctx, "Failed to mark sync error",
				log.FieldEntityID, e.ID, log.FieldError, markErr)
		}
		return fmt.Errorf("append to ledger: %w", err)
	}

	if err := w.storage.MarkExpenseSynced(ctx, e.ID); err != nil {
		// The export succeeded; a failed mark only means one extra append
		// on the next pending scan.
		w.logger.ErrorContext(ctx, "Failed to mark expense synced",
			log.FieldEntityID, e.ID, log.FieldError, err)
		return nil
	}

	w.logger.InfoContext(ctx, "Exported expense to ledger",
		log.FieldEntityID, e.ID,
		log.FieldOwnerID, owner,
		log.FieldSheetsRef, ref,
		log.FieldAmount, e.Amount.Cents)
	return nil
}
