package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// FinanceStore holds one owner's collections in memory and keeps them in
// step with the repository. Mutations go remote first and patch the local
// snapshot only on success, so the snapshot never gets ahead of storage.
//
// A store built with no owner serves the signed-out state: reads return
// empty collections and mutations are accepted as no-ops.
type FinanceStore struct {
	owner  string
	repo   Repository
	pub    Publisher
	logger *log.Logger
	now    func() time.Time

	generation atomic.Uint64

	mu       sync.RWMutex
	loading  bool
	loaded   bool
	expenses []core.Expense
	incomes  []core.Income
	accounts []core.Account
	debts    []core.Debt
}

// Option configures a FinanceStore.
type Option func(*FinanceStore)

// WithPublisher wires a change-event publisher into the store.
func WithPublisher(p Publisher) Option {
	return func(s *FinanceStore) { s.pub = p }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *FinanceStore) { s.now = now }
}

func New(owner string, repo Repository, logger *log.Logger, opts ...Option) *FinanceStore {
	s := &FinanceStore{
		owner:  owner,
		repo:   repo,
		logger: logger.WithComponent(log.ComponentStore).With(log.FieldOwnerID, owner),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Owner returns the owner id this store is bound to; empty when signed out.
func (s *FinanceStore) Owner() string { return s.owner }

// Loading reports whether a fetch is in flight.
func (s *FinanceStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// FetchOutcome reports the result of one fetch, one error slot per entity.
// A nil slot means that collection was refreshed; a non-nil one means the
// previous collection was kept.
type FetchOutcome struct {
	Stale    bool // a newer fetch superseded this one; nothing was applied
	Expenses error
	Incomes  error
	Accounts error
	Debts    error
}

// Complete reports whether all four collections refreshed.
func (o FetchOutcome) Complete() bool {
	return !o.Stale && o.Expenses == nil && o.Incomes == nil && o.Accounts == nil && o.Debts == nil
}

// Err joins the per-entity errors, nil when the fetch was complete.
func (o FetchOutcome) Err() error {
	return errors.Join(o.Expenses, o.Incomes, o.Accounts, o.Debts)
}

// Fetch loads the four collections concurrently and swaps them into the
// snapshot. Entities whose read failed keep their previous collection. If
// another fetch starts while this one is in flight, the older completion
// is dropped whole so a slow response can never overwrite a newer one.
func (s *FinanceStore) Fetch(ctx context.Context) FetchOutcome {
	if s.owner == "" {
		s.mu.Lock()
		s.expenses, s.incomes, s.accounts, s.debts = nil, nil, nil, nil
		s.loading = false
		s.mu.Unlock()
		return FetchOutcome{}
	}

	gen := s.generation.Add(1)
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	var (
		expenses []core.Expense
		incomes  []core.Income
		accounts []core.Account
		debts    []core.Debt
		outcome  FetchOutcome
	)

	var g errgroup.Group
	g.Go(func() error {
		expenses, outcome.Expenses = s.repo.ListExpenses(ctx, s.owner)
		return nil
	})
	g.Go(func() error {
		incomes, outcome.Incomes = s.repo.ListIncomes(ctx, s.owner)
		return nil
	})
	g.Go(func() error {
		accounts, outcome.Accounts = s.repo.ListAccounts(ctx, s.owner)
		return nil
	})
	g.Go(func() error {
		debts, outcome.Debts = s.repo.ListDebts(ctx, s.owner)
		return nil
	})
	g.Wait()

	return s.applyFetch(ctx, gen, expenses, incomes, accounts, debts, outcome)
}

// applyFetch swaps a completed fetch into the snapshot. The generation
// check and the apply share one critical section: a newer fetch that
// lands between them would otherwise be overwritten by this older one.
func (s *FinanceStore) applyFetch(ctx context.Context, gen uint64,
	expenses []core.Expense, incomes []core.Income, accounts []core.Account, debts []core.Debt,
	outcome FetchOutcome) FetchOutcome {

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation.Load() != gen {
		outcome.Stale = true
		s.logger.DebugContext(ctx, "Dropping stale fetch completion", log.FieldGeneration, gen)
		return outcome
	}

	if outcome.Expenses == nil {
		s.expenses = expenses
	}
	if outcome.Incomes == nil {
		s.incomes = incomes
	}
	if outcome.Accounts == nil {
		s.accounts = accounts
	}
	if outcome.Debts == nil {
		s.debts = debts
	}
	s.loading = false
	if outcome.Err() == nil {
		s.loaded = true
	}

	if err := outcome.Err(); err != nil {
		s.logger.WarnContext(ctx, "Fetch completed with partial failures", log.FieldError, err)
	}
	return outcome
}

// EnsureLoaded fetches on first use and is a no-op once a complete fetch
// has landed. A fetch that failed partially leaves the store unloaded so
// the next request retries the failed entities.
func (s *FinanceStore) EnsureLoaded(ctx context.Context) FetchOutcome {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded || s.owner == "" {
		return FetchOutcome{}
	}
	return s.Fetch(ctx)
}

// Refresh is an explicit re-read of everything from storage.
func (s *FinanceStore) Refresh(ctx context.Context) FetchOutcome {
	return s.Fetch(ctx)
}

// publish forwards a change event when a publisher is wired. Failures are
// logged and swallowed; export must never fail a user operation.
func (s *FinanceStore) publish(ctx context.Context, entity, action, id string) {
	if s.pub == nil {
		return
	}
	ev := ChangeEvent{Entity: entity, Action: action, Owner: s.owner, ID: id}
	if err := s.pub.PublishChange(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish change event",
			log.FieldEntity, entity, log.FieldEntityID, id, log.FieldError, err)
	}
}
