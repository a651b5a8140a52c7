package store

import (
	"context"

	"fintrack/internal/core"
)

// Incomes returns a copy of the current income snapshot.
func (s *FinanceStore) Incomes() []core.Income {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Income(nil), s.incomes...)
}

// AddIncome validates and persists a new income, then adds it to the
// snapshot.
func (s *FinanceStore) AddIncome(ctx context.Context, in core.Income) (core.Income, error) {
	if s.owner == "" {
		return core.Income{}, nil
	}
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}

	saved, err := s.repo.InsertIncome(ctx, s.owner, in)
	if err != nil {
		return core.Income{}, err
	}

	s.mu.Lock()
	s.incomes = append(s.incomes, saved)
	s.mu.Unlock()

	s.publish(ctx, "income", "created", saved.ID)
	return saved, nil
}

// EditIncome validates and persists a full replacement of an income.
func (s *FinanceStore) EditIncome(ctx context.Context, id string, in core.Income) error {
	if s.owner == "" {
		return nil
	}
	if err := in.Validate(); err != nil {
		return err
	}

	if err := s.repo.UpdateIncome(ctx, s.owner, id, in); err != nil {
		return err
	}

	in.ID = id
	s.mu.Lock()
	for i := range s.incomes {
		if s.incomes[i].ID == id {
			s.incomes[i] = in
			break
		}
	}
	s.mu.Unlock()

	s.publish(ctx, "income", "updated", id)
	return nil
}

// DeleteIncome removes an income remotely and from the snapshot.
func (s *FinanceStore) DeleteIncome(ctx context.Context, id string) error {
	if s.owner == "" {
		return nil
	}
	if err := s.repo.DeleteIncome(ctx, s.owner, id); err != nil {
		return err
	}

	s.mu.Lock()
	s.incomes = removeByID(s.incomes, id, func(in core.Income) string { return in.ID })
	s.mu.Unlock()

	s.publish(ctx, "income", "deleted", id)
	return nil
}
