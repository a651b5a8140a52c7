package storage

import (
	"context"
	"path/filepath"
	"testing"

	"fintrack/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "fintrack.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustDate(t *testing.T, s string) core.Date {
	t.Helper()
	d, err := core.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q) error = %v", s, err)
	}
	return d
}

func TestExpenseRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	in := core.Expense{
		Amount:      core.Money{Cents: 1450},
		Category:    core.Food,
		Date:        mustDate(t, "2026-03-15"),
		Description: "groceries",
	}
	saved, err := repo.InsertExpense(ctx, "alice", in)
	if err != nil {
		t.Fatalf("InsertExpense() error = %v", err)
	}
	if saved.ID == "" {
		t.Fatal("InsertExpense() did not assign an id")
	}

	list, err := repo.ListExpenses(ctx, "alice")
	if err != nil {
		t.Fatalf("ListExpenses() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("ListExpenses() returned %d rows, want 1", len(list))
	}
	got := list[0]
	if got.ID != saved.ID || got.Amount.Cents != 1450 || got.Category != core.Food {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if got.Date.String() != "2026-03-15" {
		t.Errorf("Date = %q, want 2026-03-15", got.Date.String())
	}
	if got.IsRecurring || !got.NextDueDate.IsZero() {
		t.Errorf("non-recurring expense picked up recurrence fields: %+v", got)
	}
}

func TestExpensesAreOwnerScoped(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e := core.Expense{Amount: core.Money{Cents: 100}, Category: core.Other, Date: mustDate(t, "2026-01-01")}
	saved, err := repo.InsertExpense(ctx, "alice", e)
	if err != nil {
		t.Fatalf("InsertExpense() error = %v", err)
	}

	list, err := repo.ListExpenses(ctx, "bob")
	if err != nil {
		t.Fatalf("ListExpenses() error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("bob sees %d of alice's expenses, want 0", len(list))
	}

	// A different owner updating or deleting the row is a silent no-op.
	saved.Description = "hijacked"
	if err := repo.UpdateExpense(ctx, "bob", saved.ID, saved); err != nil {
		t.Fatalf("UpdateExpense() error = %v", err)
	}
	if err := repo.DeleteExpense(ctx, "bob", saved.ID); err != nil {
		t.Fatalf("DeleteExpense() error = %v", err)
	}

	list, err = repo.ListExpenses(ctx, "alice")
	if err != nil {
		t.Fatalf("ListExpenses() error = %v", err)
	}
	if len(list) != 1 || list[0].Description == "hijacked" {
		t.Errorf("cross-owner write leaked: %+v", list)
	}
}

func TestListExpensesNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, day := range []string{"2026-02-10", "2026-02-20", "2026-02-01"} {
		_, err := repo.InsertExpense(ctx, "alice", core.Expense{
			Amount: core.Money{Cents: 500}, Category: core.Food, Date: mustDate(t, day),
		})
		if err != nil {
			t.Fatalf("InsertExpense() error = %v", err)
		}
	}

	list, err := repo.ListExpenses(ctx, "alice")
	if err != nil {
		t.Fatalf("ListExpenses() error = %v", err)
	}
	want := []string{"2026-02-20", "2026-02-10", "2026-02-01"}
	for i, w := range want {
		if list[i].Date.String() != w {
			t.Errorf("list[%d].Date = %q, want %q", i, list[i].Date.String(), w)
		}
	}
}

func TestRenameCategoryRewritesOnlyMatchingRows(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, cat := range []core.Category{core.Food, core.Food, core.Home} {
		_, err := repo.InsertExpense(ctx, "alice", core.Expense{
			Amount: core.Money{Cents: 100}, Category: cat, Date: mustDate(t, "2026-01-01"),
		})
		if err != nil {
			t.Fatalf("InsertExpense() error = %v", err)
		}
	}
	_, err := repo.InsertExpense(ctx, "bob", core.Expense{
		Amount: core.Money{Cents: 100}, Category: core.Food, Date: mustDate(t, "2026-01-01"),
	})
	if err != nil {
		t.Fatalf("InsertExpense() error = %v", err)
	}

	n, err := repo.RenameCategory(ctx, "alice", core.Food, core.Other)
	if err != nil {
		t.Fatalf("RenameCategory() error = %v", err)
	}
	if n != 2 {
		t.Errorf("RenameCategory() rewrote %d rows, want 2", n)
	}

	list, _ := repo.ListExpenses(ctx, "alice")
	for _, e := range list {
		if e.Category == core.Food {
			t.Errorf("expense %s still in old category", e.ID)
		}
	}
	bobs, _ := repo.ListExpenses(ctx, "bob")
	if len(bobs) != 1 || bobs[0].Category != core.Food {
		t.Errorf("rename leaked into bob's rows: %+v", bobs)
	}
}

func TestDeleteCategoryExpenses(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, cat := range []core.Category{core.Shopping, core.Shopping, core.Health} {
		_, err := repo.InsertExpense(ctx, "alice", core.Expense{
			Amount: core.Money{Cents: 100}, Category: cat, Date: mustDate(t, "2026-01-01"),
		})
		if err != nil {
			t.Fatalf("InsertExpense() error = %v", err)
		}
	}

	n, err := repo.DeleteCategoryExpenses(ctx, "alice", core.Shopping)
	if err != nil {
		t.Fatalf("DeleteCategoryExpenses() error = %v", err)
	}
	if n != 2 {
		t.Errorf("DeleteCategoryExpenses() removed %d rows, want 2", n)
	}
	list, _ := repo.ListExpenses(ctx, "alice")
	if len(list) != 1 || list[0].Category != core.Health {
		t.Errorf("remaining rows = %+v, want single health expense", list)
	}
}

func TestPendingSyncLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	saved, err := repo.InsertExpense(ctx, "alice", core.Expense{
		Amount: core.Money{Cents: 100}, Category: core.Food, Date: mustDate(t, "2026-01-01"),
	})
	if err != nil {
		t.Fatalf("InsertExpense() error = %v", err)
	}

	pending, err := repo.ListPendingSyncExpenses(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingSyncExpenses() error = %v", err)
	}
	if len(pending) != 1 || pending[0].ID != saved.ID || pending[0].Owner != "alice" {
		t.Fatalf("pending = %+v, want the inserted row", pending)
	}

	if err := repo.MarkExpenseSynced(ctx, saved.ID); err != nil {
		t.Fatalf("MarkExpenseSynced() error = %v", err)
	}
	pending, _ = repo.ListPendingSyncExpenses(ctx, 10)
	if len(pending) != 0 {
		t.Errorf("synced row still pending: %+v", pending)
	}

	// Editing the row queues it for export again.
	saved.Description = "edited"
	if err := repo.UpdateExpense(ctx, "alice", saved.ID, saved); err != nil {
		t.Fatalf("UpdateExpense() error = %v", err)
	}
	pending, _ = repo.ListPendingSyncExpenses(ctx, 10)
	if len(pending) != 1 {
		t.Errorf("edited row not re-queued: %+v", pending)
	}

	// Five failed attempts drop the row off the retry scan.
	for i := 0; i < 5; i++ {
		if err := repo.MarkExpenseSyncError(ctx, saved.ID); err != nil {
			t.Fatalf("MarkExpenseSyncError() error = %v", err)
		}
	}
	pending, _ = repo.ListPendingSyncExpenses(ctx, 10)
	if len(pending) != 0 {
		t.Errorf("exhausted row still pending: %+v", pending)
	}
}

func TestRecurringTemplateScan(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	due, err := repo.InsertExpense(ctx, "alice", core.Expense{
		Amount: core.Money{Cents: 900}, BaseAmount: core.Money{Cents: 900},
		Category: core.Entertainment, Date: mustDate(t, "2026-01-01"),
		IsRecurring: true, Frequency: core.MonthlyCadence,
		NextDueDate: mustDate(t, "2026-02-01"),
	})
	if err != nil {
		t.Fatalf("InsertExpense() error = %v", err)
	}
	_, err = repo.InsertExpense(ctx, "alice", core.Expense{
		Amount: core.Money{Cents: 900}, BaseAmount: core.Money{Cents: 900},
		Category: core.Entertainment, Date: mustDate(t, "2026-01-01"),
		IsRecurring: true, Frequency: core.MonthlyCadence,
		NextDueDate: mustDate(t, "2026-06-01"),
	})
	if err != nil {
		t.Fatalf("InsertExpense() error = %v", err)
	}

	templates, err := repo.ListDueRecurringTemplates(ctx, mustDate(t, "2026-02-15"))
	if err != nil {
		t.Fatalf("ListDueRecurringTemplates() error = %v", err)
	}
	if len(templates) != 1 || templates[0].Expense.ID != due.ID {
		t.Fatalf("templates = %+v, want only the February row", templates)
	}

	next := mustDate(t, "2026-03-01")
	occurred := mustDate(t, "2026-02-15")
	if err := repo.AdvanceRecurrence(ctx, due.ID, occurred, next); err != nil {
		t.Fatalf("AdvanceRecurrence() error = %v", err)
	}
	templates, _ = repo.ListDueRecurringTemplates(ctx, mustDate(t, "2026-02-15"))
	if len(templates) != 0 {
		t.Errorf("advanced template still due: %+v", templates)
	}

	owner, got, err := repo.GetExpense(ctx, due.ID)
	if err != nil {
		t.Fatalf("GetExpense() error = %v", err)
	}
	if owner != "alice" || got.LastOccurrence.String() != "2026-02-15" || got.NextDueDate.String() != "2026-03-01" {
		t.Errorf("GetExpense() = %q %+v after advance", owner, got)
	}
}

func TestGetExpenseNotFound(t *testing.T) {
	repo := newTestRepo(t)
	if _, _, err := repo.GetExpense(context.Background(), "missing"); err != ErrNotFound {
		t.Errorf("GetExpense(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDebtsOrderedByDueDate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, due := range []string{"2026-09-01", "2026-03-01", "2026-06-01"} {
		_, err := repo.InsertDebt(ctx, "alice", core.Debt{
			Name: "loan " + due, Amount: core.Money{Cents: 10000}, Remaining: core.Money{Cents: 5000},
			Type: core.Loan, DueDate: mustDate(t, due),
		})
		if err != nil {
			t.Fatalf("InsertDebt() error = %v", err)
		}
	}

	debts, err := repo.ListDebts(ctx, "alice")
	if err != nil {
		t.Fatalf("ListDebts() error = %v", err)
	}
	want := []string{"2026-03-01", "2026-06-01", "2026-09-01"}
	for i, w := range want {
		if debts[i].DueDate.String() != w {
			t.Errorf("debts[%d].DueDate = %q, want %q", i, debts[i].DueDate.String(), w)
		}
	}
}

func TestAccountBalancePatch(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	saved, err := repo.InsertAccount(ctx, "alice", core.Account{
		Name: "checking", Balance: core.Money{Cents: 120000}, Type: core.Bank, Color: "#3b82f6",
	})
	if err != nil {
		t.Fatalf("InsertAccount() error = %v", err)
	}

	if err := repo.UpdateAccountBalance(ctx, "alice", saved.ID, core.Money{Cents: 95000}); err != nil {
		t.Fatalf("UpdateAccountBalance() error = %v", err)
	}

	accounts, err := repo.ListAccounts(ctx, "alice")
	if err != nil {
		t.Fatalf("ListAccounts() error = %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("ListAccounts() returned %d rows, want 1", len(accounts))
	}
	if accounts[0].Balance.Cents != 95000 {
		t.Errorf("Balance = %d, want 95000", accounts[0].Balance.Cents)
	}
	if accounts[0].Name != "checking" || accounts[0].Type != core.Bank {
		t.Errorf("balance patch touched other columns: %+v", accounts[0])
	}
}

func TestIncomeRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	saved, err := repo.InsertIncome(ctx, "alice", core.Income{
		Amount: core.Money{Cents: 250000}, Source: "salary", Date: mustDate(t, "2026-03-01"),
	})
	if err != nil {
		t.Fatalf("InsertIncome() error = %v", err)
	}

	saved.Source = "bonus"
	if err := repo.UpdateIncome(ctx, "alice", saved.ID, saved); err != nil {
		t.Fatalf("UpdateIncome() error = %v", err)
	}

	list, err := repo.ListIncomes(ctx, "alice")
	if err != nil {
		t.Fatalf("ListIncomes() error = %v", err)
	}
	if len(list) != 1 || list[0].Source != "bonus" {
		t.Errorf("ListIncomes() = %+v, want the updated row", list)
	}

	if err := repo.DeleteIncome(ctx, "alice", saved.ID); err != nil {
		t.Fatalf("DeleteIncome() error = %v", err)
	}
	list, _ = repo.ListIncomes(ctx, "alice")
	if len(list) != 0 {
		t.Errorf("deleted income still listed: %+v", list)
	}
}
