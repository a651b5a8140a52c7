package store

import (
	"context"
	"errors"

	"fintrack/internal/core"
)

// ErrDebtNotFound is returned when a partial debt update targets an id
// that is not in the snapshot. Partial updates need the current row to
// merge into, so unlike full edits they cannot fall through to storage.
var ErrDebtNotFound = errors.New("debt not found")

// DebtPatch carries the fields of a partial debt update; nil means keep
// the current value.
type DebtPatch struct {
	Name         *string
	Amount       *core.Money
	Remaining    *core.Money
	Type         *core.DebtType
	InterestRate *float64
	ClosingDate  *core.Date
	DueDate      *core.Date
	Description  *string
}

func (p DebtPatch) apply(d core.Debt) core.Debt {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Amount != nil {
		d.Amount = *p.Amount
	}
	if p.Remaining != nil {
		d.Remaining = *p.Remaining
	}
	if p.Type != nil {
		d.Type = *p.Type
	}
	if p.InterestRate != nil {
		d.InterestRate = *p.InterestRate
	}
	if p.ClosingDate != nil {
		d.ClosingDate = *p.ClosingDate
	}
	if p.DueDate != nil {
		d.DueDate = *p.DueDate
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	return d
}

// Debts returns a copy of the current debt snapshot.
func (s *FinanceStore) Debts() []core.Debt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Debt(nil), s.debts...)
}

// AddDebt validates and persists a new debt, then adds it to the
// snapshot. Validation rejects a remaining amount above the total.
func (s *FinanceStore) AddDebt(ctx context.Context, d core.Debt) (core.Debt, error) {
	if s.owner == "" {
		return core.Debt{}, nil
	}
	if err := d.Validate(); err != nil {
		return core.Debt{}, err
	}

	saved, err := s.repo.InsertDebt(ctx, s.owner, d)
	if err != nil {
		return core.Debt{}, err
	}

	s.mu.Lock()
	s.debts = append(s.debts, saved)
	s.mu.Unlock()

	s.publish(ctx, "debt", "created", saved.ID)
	return saved, nil
}

// UpdateDebt merges a partial update into the current debt, validates the
// merged result and persists it whole. The merged row must still satisfy
// the debt invariants, so a patch cannot push remaining above the total.
func (s *FinanceStore) UpdateDebt(ctx context.Context, id string, patch DebtPatch) (core.Debt, error) {
	if s.owner == "" {
		return core.Debt{}, nil
	}

	s.mu.RLock()
	current, ok := findByID(s.debts, id, func(d core.Debt) string { return d.ID })
	s.mu.RUnlock()
	if !ok {
		return core.Debt{}, ErrDebtNotFound
	}

	merged := patch.apply(current)
	if err := merged.Validate(); err != nil {
		return core.Debt{}, err
	}

	if err := s.repo.UpdateDebt(ctx, s.owner, id, merged); err != nil {
		return core.Debt{}, err
	}

	s.mu.Lock()
	for i := range s.debts {
		if s.debts[i].ID == id {
			s.debts[i] = merged
			break
		}
	}
	s.mu.Unlock()

	s.publish(ctx, "debt", "updated", id)
	return merged, nil
}

// DeleteDebt removes a debt remotely and from the snapshot.
func (s *FinanceStore) DeleteDebt(ctx context.Context, id string) error {
	if s.owner == "" {
		return nil
	}
	if err := s.repo.DeleteDebt(ctx, s.owner, id); err != nil {
		return err
	}

	s.mu.Lock()
	s.debts = removeByID(s.debts, id, func(d core.Debt) string { return d.ID })
	s.mu.Unlock()

	s.publish(ctx, "debt", "deleted", id)
	return nil
}

func findByID[T any](list []T, id string, idOf func(T) string) (T, bool) {
	for i := range list {
		if idOf(list[i]) == id {
			return list[i], true
		}
	}
	var zero T
	return zero, false
}
