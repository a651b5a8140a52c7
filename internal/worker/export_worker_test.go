package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

func testLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func insertExpense(t *testing.T, repo *storage.MemoryRepository, owner string) core.Expense {
	t.Helper()
	e, err := repo.InsertExpense(context.Background(), owner, core.Expense{
		Amount:      core.Money{Cents: 1450},
		Category:    core.Food,
		Date:        core.NewDate(2026, 3, 15),
		Description: "groceries",
	})
	if err != nil {
		t.Fatalf("InsertExpense() error = %v", err)
	}
	return e
}

func TestHandleChangeExportsAndMarksSynced(t *testing.T) {
	repo := storage.NewMemoryRepository()
	ledger := export.NewMemoryLedger()
	w := NewExportWorker(repo, ledger, testLogger(), 10)
	ctx := context.Background()

	e := insertExpense(t, repo, "alice")

	msg := &amqp.ChangeMessage{Entity: "expense", Action: "created", Owner: "alice", ID: e.ID, Timestamp: time.Now()}
	if err := w.HandleChange(ctx, msg); err != nil {
		t.Fatalf("HandleChange() error = %v", err)
	}

	rows := ledger.Rows()
	if len(rows) != 1 {
		t.Fatalf("ledger has %d rows, want 1", len(rows))
	}
	if rows[0].Owner != "alice" || rows[0].Expense.ID != e.ID {
		t.Errorf("ledger row = %+v, want alice's expense", rows[0])
	}

	pending, _ := repo.ListPendingSyncExpenses(ctx, 10)
	if len(pending) != 0 {
		t.Errorf("expense still pending after export: %+v", pending)
	}
}

func TestHandleChangeIgnoresOtherEntitiesAndDeletes(t *testing.T) {
	repo := storage.NewMemoryRepository()
	ledger := export.NewMemoryLedger()
	w := NewExportWorker(repo, ledger, testLogger(), 10)
	ctx := context.Background()

	for _, msg := range []*amqp.ChangeMessage{
		{Entity: "income", Action: "created", ID: "i-1"},
		{Entity: "debt", Action: "updated", ID: "d-1"},
		{Entity: "expense", Action: "deleted", ID: "e-1"},
	} {
		if err := w.HandleChange(ctx, msg); err != nil {
			t.Errorf("HandleChange(%s/%s) error = %v, want nil", msg.Entity, msg.Action, err)
		}
	}
	if len(ledger.Rows()) != 0 {
		t.Errorf("ledger has %d rows, want 0", len(ledger.Rows()))
	}
}

func TestHandleChangeVanishedRowIsAcked(t *testing.T) {
	w := NewExportWorker(storage.NewMemoryRepository(), export.NewMemoryLedger(), testLogger(), 10)

	msg := &amqp.ChangeMessage{Entity: "expense", Action: "created", ID: "gone"}
	if err := w.HandleChange(context.Background(), msg); err != nil {
		t.Errorf("HandleChange() for vanished row error = %v, want nil", err)
	}
}

func TestHandleChangeLedgerFailureMarksErrorAndPropagates(t *testing.T) {
	repo := storage.NewMemoryRepository()
	ledger := export.NewMemoryLedger()
	w := NewExportWorker(repo, ledger, testLogger(), 10)
	ctx := context.Background()

	e := insertExpense(t, repo, "alice")
	ledger.FailNext = errors.New("quota exceeded")

	msg := &amqp.ChangeMessage{Entity: "expense", Action: "created", ID: e.ID}
	if err := w.HandleChange(ctx, msg); err == nil {
		t.Fatal("HandleChange() error = nil, want ledger failure")
	}

	// Still pending, so the scan can retry it later.
	pending, _ := repo.ListPendingSyncExpenses(ctx, 10)
	if len(pending) != 1 {
		t.Fatalf("pending = %+v, want the failed row", pending)
	}

	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}
	if len(ledger.Rows()) != 1 {
		t.Errorf("retry did not export the row: %d rows", len(ledger.Rows()))
	}
}

func TestProcessPendingDrainsBacklog(t *testing.T) {
	repo := storage.NewMemoryRepository()
	ledger := export.NewMemoryLedger()
	w := NewExportWorker(repo, ledger, testLogger(), 2)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		insertExpense(t, repo, "alice")
	}

	// Batch size caps one pass; two passes drain all three.
	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}
	if got := len(ledger.Rows()); got != 2 {
		t.Fatalf("first pass exported %d rows, want 2", got)
	}
	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}
	if got := len(ledger.Rows()); got != 3 {
		t.Errorf("second pass exported %d total rows, want 3", got)
	}

	pending, _ := repo.ListPendingSyncExpenses(ctx, 10)
	if len(pending) != 0 {
		t.Errorf("backlog not drained: %+v", pending)
	}
}
