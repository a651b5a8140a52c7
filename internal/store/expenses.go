package store

import (
	"context"

	"fintrack/internal/core"
)

// Expenses returns a copy of the current expense snapshot.
func (s *FinanceStore) Expenses() []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Expense(nil), s.expenses...)
}

// AddExpense validates and persists a new expense, then adds it to the
// snapshot. With no owner bound this accepts the call as a no-op.
func (s *FinanceStore) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if s.owner == "" {
		return core.Expense{}, nil
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	saved, err := s.repo.InsertExpense(ctx, s.owner, e)
	if err != nil {
		return core.Expense{}, err
	}

	s.mu.Lock()
	s.expenses = append(s.expenses, saved)
	s.mu.Unlock()

	s.publish(ctx, "expense", "created", saved.ID)
	return saved, nil
}

// EditExpense validates and persists a full replacement of an existing
// expense. An id not present in the snapshot still goes to storage, where
// an unknown id is a silent no-op.
func (s *FinanceStore) EditExpense(ctx context.Context, id string, e core.Expense) error {
	if s.owner == "" {
		return nil
	}
	if err := e.Validate(); err != nil {
		return err
	}

	if err := s.repo.UpdateExpense(ctx, s.owner, id, e); err != nil {
		return err
	}

	e.ID = id
	s.mu.Lock()
	for i := range s.expenses {
		if s.expenses[i].ID == id {
			s.expenses[i] = e
			break
		}
	}
	s.mu.Unlock()

	s.publish(ctx, "expense", "updated", id)
	return nil
}

// DeleteExpense removes an expense remotely and from the snapshot. An
// unknown id leaves the collection unchanged.
func (s *FinanceStore) DeleteExpense(ctx context.Context, id string) error {
	if s.owner == "" {
		return nil
	}
	if err := s.repo.DeleteExpense(ctx, s.owner, id); err != nil {
		return err
	}

	s.mu.Lock()
	s.expenses = removeByID(s.expenses, id, func(e core.Expense) string { return e.ID })
	s.mu.Unlock()

	s.publish(ctx, "expense", "deleted", id)
	return nil
}

func removeByID[T any](list []T, id string, idOf func(T) string) []T {
	for i := range list {
		if idOf(list[i]) == id {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}
