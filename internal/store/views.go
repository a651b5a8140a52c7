package store

import (
	"time"

	"fintrack/internal/core"
)

// Derived views. Each one recomputes from the current snapshot, so they
// are always consistent with the collections at the moment of the call.

const (
	recentExpenseCount = 5
	urgentDebtCount    = 5
)

// TotalExpenses sums all expense amounts in the snapshot.
func (s *FinanceStore) TotalExpenses() core.Money {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.TotalExpenses(s.expenses)
}

// TotalIncome sums all income amounts in the snapshot.
func (s *FinanceStore) TotalIncome() core.Money {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.TotalIncome(s.incomes)
}

// TotalBalance sums the signed account balances.
func (s *FinanceStore) TotalBalance() core.Money {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.TotalBalance(s.accounts)
}

// CategoryTotals returns per-category spending, one entry per registry
// category.
func (s *FinanceStore) CategoryTotals() map[core.Category]core.Money {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.CategoryTotals(s.expenses)
}

// CategoryCount counts the snapshot's expenses in one category.
func (s *FinanceStore) CategoryCount(c core.Category) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.CategoryCount(s.expenses, c)
}

// CategoryBreakdown returns each category's percentage share of spending.
func (s *FinanceStore) CategoryBreakdown() []core.CategoryShare {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.CategoryBreakdown(s.expenses)
}

// MonthlyBalance summarizes the calendar month of ref.
func (s *FinanceStore) MonthlyBalance(ref time.Time) core.MonthSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.MonthlyBalance(s.expenses, s.incomes, ref)
}

// CurrentMonthBalance summarizes the month the store's clock is in.
func (s *FinanceStore) CurrentMonthBalance() core.MonthSummary {
	return s.MonthlyBalance(s.now())
}

// UrgentDebts returns the five most urgent debts, overdue first.
func (s *FinanceStore) UrgentDebts() []core.Debt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.MostUrgentDebts(s.debts, urgentDebtCount, s.now())
}

// RecentTransactions returns the five most recent expenses.
func (s *FinanceStore) RecentTransactions() []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.RecentExpenses(s.expenses, recentExpenseCount)
}

// MonthlySeries buckets the snapshot into the trailing `months` calendar
// months for trend views.
func (s *FinanceStore) MonthlySeries(months int) []core.MonthPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.MonthlySeries(s.expenses, s.incomes, months, s.now())
}
