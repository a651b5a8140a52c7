package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// MemoryRepository keeps the four collections in process memory. It backs
// the "memory" data backend and the package tests; it mirrors the SQLite
// repository's ordering and no-op semantics.
type MemoryRepository struct {
	mu sync.RWMutex

	expenses map[string][]core.Expense // keyed by owner, insertion order
	incomes  map[string][]core.Income
	accounts map[string][]core.Account
	debts    map[string][]core.Debt

	expenseOwners map[string]string // expense id -> owner
	syncStatus    map[string]string // expense id -> pending|synced
	syncAttempts  map[string]int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		expenses:      make(map[string][]core.Expense),
		incomes:       make(map[string][]core.Income),
		accounts:      make(map[string][]core.Account),
		debts:         make(map[string][]core.Debt),
		expenseOwners: make(map[string]string),
		syncStatus:    make(map[string]string),
		syncAttempts:  make(map[string]int),
	}
}

func (m *MemoryRepository) Close() error { return nil }

func (m *MemoryRepository) InsertExpense(_ context.Context, owner string, e core.Expense) (core.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = uuid.NewString()
	m.expenses[owner] = append(m.expenses[owner], e)
	m.expenseOwners[e.ID] = owner
	m.syncStatus[e.ID] = "pending"
	return e, nil
}

func (m *MemoryRepository) UpdateExpense(_ context.Context, owner, id string, e core.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.expenses[owner]
	for i := range list {
		if list[i].ID == id {
			e.ID = id
			list[i] = e
			m.syncStatus[id] = "pending"
			return nil
		}
	}
	return nil
}

func (m *MemoryRepository) DeleteExpense(_ context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses[owner] = deleteByID(m.expenses[owner], id, func(e core.Expense) string { return e.ID })
	delete(m.expenseOwners, id)
	delete(m.syncStatus, id)
	delete(m.syncAttempts, id)
	return nil
}

func (m *MemoryRepository) ListExpenses(_ context.Context, owner string) ([]core.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]core.Expense(nil), m.expenses[owner]...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[j].Date.Before(out[i].Date.Time)
	})
	return out, nil
}

func (m *MemoryRepository) RenameCategory(_ context.Context, owner string, oldCat, newCat core.Category) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	list := m.expenses[owner]
	for i := range list {
		if list[i].Category == oldCat {
			list[i].Category = newCat
			m.syncStatus[list[i].ID] = "pending"
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepository) DeleteCategoryExpenses(_ context.Context, owner string, cat core.Category) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []core.Expense
	var n int64
	for _, e := range m.expenses[owner] {
		if e.Category == cat {
			delete(m.expenseOwners, e.ID)
			delete(m.syncStatus, e.ID)
			delete(m.syncAttempts, e.ID)
			n++
			continue
		}
		kept = append(kept, e)
	}
	m.expenses[owner] = kept
	return n, nil
}

func (m *MemoryRepository) GetExpense(_ context.Context, id string) (string, core.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	owner, ok := m.expenseOwners[id]
	if !ok {
		return "", core.Expense{}, ErrNotFound
	}
	for _, e := range m.expenses[owner] {
		if e.ID == id {
			return owner, e, nil
		}
	}
	return "", core.Expense{}, ErrNotFound
}

func (m *MemoryRepository) ListPendingSyncExpenses(_ context.Context, limit int) ([]PendingExpense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []PendingExpense
	for owner, list := range m.expenses {
		for _, e := range list {
			if m.syncStatus[e.ID] == "pending" && m.syncAttempts[e.ID] < 5 {
				out = append(out, PendingExpense{ID: e.ID, Owner: owner})
				if len(out) == limit {
					return out, nil
				}
			}
		}
	}
	return out, nil
}

func (m *MemoryRepository) MarkExpenseSynced(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncStatus[id] = "synced"
	return nil
}

func (m *MemoryRepository) MarkExpenseSyncError(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncStatus[id] = "pending"
	m.syncAttempts[id]++
	return nil
}

func (m *MemoryRepository) ListDueRecurringTemplates(_ context.Context, today core.Date) ([]OwnedExpense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []OwnedExpense
	for owner, list := range m.expenses {
		for _, e := range list {
			if e.IsRecurring && !e.NextDueDate.IsZero() && !today.Before(e.NextDueDate.Time) {
				out = append(out, OwnedExpense{Owner: owner, Expense: e})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Expense.NextDueDate.Before(out[j].Expense.NextDueDate.Time)
	})
	return out, nil
}

func (m *MemoryRepository) AdvanceRecurrence(_ context.Context, id string, lastOccurrence, nextDue core.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	owner, ok := m.expenseOwners[id]
	if !ok {
		return nil
	}
	list := m.expenses[owner]
	for i := range list {
		if list[i].ID == id {
			list[i].LastOccurrence = lastOccurrence
			list[i].NextDueDate = nextDue
			return nil
		}
	}
	return nil
}

func (m *MemoryRepository) InsertIncome(_ context.Context, owner string, in core.Income) (core.Income, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in.ID = uuid.NewString()
	m.incomes[owner] = append(m.incomes[owner], in)
	return in, nil
}

func (m *MemoryRepository) UpdateIncome(_ context.Context, owner, id string, in core.Income) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.incomes[owner]
	for i := range list {
		if list[i].ID == id {
			in.ID = id
			list[i] = in
			return nil
		}
	}
	return nil
}

func (m *MemoryRepository) DeleteIncome(_ context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.incomes[owner] = deleteByID(m.incomes[owner], id, func(in core.Income) string { return in.ID })
	return nil
}

func (m *MemoryRepository) ListIncomes(_ context.Context, owner string) ([]core.Income, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]core.Income(nil), m.incomes[owner]...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[j].Date.Before(out[i].Date.Time)
	})
	return out, nil
}

func (m *MemoryRepository) InsertAccount(_ context.Context, owner string, a core.Account) (core.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = uuid.NewString()
	m.accounts[owner] = append(m.accounts[owner], a)
	return a, nil
}

func (m *MemoryRepository) UpdateAccount(_ context.Context, owner, id string, a core.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.accounts[owner]
	for i := range list {
		if list[i].ID == id {
			a.ID = id
			list[i] = a
			return nil
		}
	}
	return nil
}

func (m *MemoryRepository) UpdateAccountBalance(_ context.Context, owner, id string, balance core.Money) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.accounts[owner]
	for i := range list {
		if list[i].ID == id {
			list[i].Balance = balance
			return nil
		}
	}
	return nil
}

func (m *MemoryRepository) DeleteAccount(_ context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[owner] = deleteByID(m.accounts[owner], id, func(a core.Account) string { return a.ID })
	return nil
}

func (m *MemoryRepository) ListAccounts(_ context.Context, owner string) ([]core.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]core.Account(nil), m.accounts[owner]...), nil
}

func (m *MemoryRepository) InsertDebt(_ context.Context, owner string, d core.Debt) (core.Debt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = uuid.NewString()
	m.debts[owner] = append(m.debts[owner], d)
	return d, nil
}

func (m *MemoryRepository) UpdateDebt(_ context.Context, owner, id string, d core.Debt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.debts[owner]
	for i := range list {
		if list[i].ID == id {
			d.ID = id
			list[i] = d
			return nil
		}
	}
	return nil
}

func (m *MemoryRepository) DeleteDebt(_ context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.debts[owner] = deleteByID(m.debts[owner], id, func(d core.Debt) string { return d.ID })
	return nil
}

func (m *MemoryRepository) ListDebts(_ context.Context, owner string) ([]core.Debt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]core.Debt(nil), m.debts[owner]...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(out[j].DueDate.Time)
	})
	return out, nil
}

func deleteByID[T any](list []T, id string, idOf func(T) string) []T {
	for i := range list {
		if idOf(list[i]) == id {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}
