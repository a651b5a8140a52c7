package store

import (
	"context"

	"fintrack/internal/core"
)

// Accounts returns a copy of the current account snapshot.
func (s *FinanceStore) Accounts() []core.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Account(nil), s.accounts...)
}

// AddAccount validates and persists a new account, then adds it to the
// snapshot.
func (s *FinanceStore) AddAccount(ctx context.Context, a core.Account) (core.Account, error) {
	if s.owner == "" {
		return core.Account{}, nil
	}
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}

	saved, err := s.repo.InsertAccount(ctx, s.owner, a)
	if err != nil {
		return core.Account{}, err
	}

	s.mu.Lock()
	s.accounts = append(s.accounts, saved)
	s.mu.Unlock()

	s.publish(ctx, "account", "created", saved.ID)
	return saved, nil
}

// EditAccount validates and persists a full replacement of an account.
func (s *FinanceStore) EditAccount(ctx context.Context, id string, a core.Account) error {
	if s.owner == "" {
		return nil
	}
	if err := a.Validate(); err != nil {
		return err
	}

	if err := s.repo.UpdateAccount(ctx, s.owner, id, a); err != nil {
		return err
	}

	a.ID = id
	s.mu.Lock()
	for i := range s.accounts {
		if s.accounts[i].ID == id {
			s.accounts[i] = a
			break
		}
	}
	s.mu.Unlock()

	s.publish(ctx, "account", "updated", id)
	return nil
}

// UpdateAccountBalance patches just the balance of an account. Balances
// are signed, so negative values pass through.
func (s *FinanceStore) UpdateAccountBalance(ctx context.Context, id string, balance core.Money) error {
	if s.owner == "" {
		return nil
	}
	if err := s.repo.UpdateAccountBalance(ctx, s.owner, id, balance); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.accounts {
		if s.accounts[i].ID == id {
			s.accounts[i].Balance = balance
			break
		}
	}
	s.mu.Unlock()

	s.publish(ctx, "account", "updated", id)
	return nil
}

// DeleteAccount removes an account remotely and from the snapshot.
func (s *FinanceStore) DeleteAccount(ctx context.Context, id string) error {
	if s.owner == "" {
		return nil
	}
	if err := s.repo.DeleteAccount(ctx, s.owner, id); err != nil {
		return err
	}

	s.mu.Lock()
	s.accounts = removeByID(s.accounts, id, func(a core.Account) string { return a.ID })
	s.mu.Unlock()

	s.publish(ctx, "account", "deleted", id)
	return nil
}
