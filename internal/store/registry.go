package store

import (
	"sync"

	"fintrack/internal/log"
)

// Registry hands out one FinanceStore per owner. The HTTP layer resolves
// the owner from the request and asks the registry for that owner's
// store; the same owner always gets the same instance.
type Registry struct {
	repo   Repository
	logger *log.Logger
	opts   []Option

	mu     sync.Mutex
	stores map[string]*FinanceStore
}

func NewRegistry(repo Repository, logger *log.Logger, opts ...Option) *Registry {
	return &Registry{
		repo:   repo,
		logger: logger,
		opts:   opts,
		stores: make(map[string]*FinanceStore),
	}
}

// ForOwner returns the store bound to owner, creating it on first use.
// The empty owner gets a store serving the signed-out empty state.
func (r *Registry) ForOwner(owner string) *FinanceStore {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores[owner]; ok {
		return s
	}
	s := New(owner, r.repo, r.logger, r.opts...)
	r.stores[owner] = s
	return s
}

// Evict drops an owner's store, forcing a fresh fetch on next use.
func (r *Registry) Evict(owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, owner)
}
