package core

import (
	"sort"
	"time"
)

// BalanceStatus classifies a monthly balance against monthly income.
type BalanceStatus string

const (
	Overspending BalanceStatus = "overspending" // balance below zero
	LowSavings   BalanceStatus = "low_savings"  // under 10% of income saved
	NormalBudget BalanceStatus = "normal"       // between 10% and 20%
	GoodSavings  BalanceStatus = "good_savings" // 20% of income or more saved
)

// CategoryShare is one category's slice of total spending.
type CategoryShare struct {
	Category Category
	Amount   Money
	Percent  float64
}

// MonthSummary aggregates one calendar month of activity.
type MonthSummary struct {
	Year     int
	Month    time.Month
	Income   Money
	Expenses Money
	Balance  Money // signed: income minus expenses
	Status   BalanceStatus
}

// MonthPoint is one bucket of a month-by-month trend series.
type MonthPoint struct {
	Year     int
	Month    time.Month
	Expenses Money
	Income   Money
}

// TotalExpenses sums expense amounts.
func TotalExpenses(expenses []Expense) Money {
	var cents int64
	for _, e := range expenses {
		cents += e.Amount.Cents
	}
	return Money{Cents: cents}
}

// TotalIncome sums income amounts.
func TotalIncome(incomes []Income) Money {
	var cents int64
	for _, i := range incomes {
		cents += i.Amount.Cents
	}
	return Money{Cents: cents}
}

// TotalBalance sums account balances. Balances are signed, so accounts
// in the red reduce the total.
func TotalBalance(accounts []Account) Money {
	var cents int64
	for _, a := range accounts {
		cents += a.Balance.Cents
	}
	return Money{Cents: cents}
}

// CategoryTotals returns the per-category sum of expense amounts with one
// entry for every category in the fixed registry, zero for unused ones.
// Single pass over the input.
func CategoryTotals(expenses []Expense) map[Category]Money {
	totals := make(map[Category]Money, len(categoryRegistry))
	for _, c := range AllCategories() {
		totals[c] = Money{}
	}
	for _, e := range expenses {
		t := totals[e.Category]
		t.Cents += e.Amount.Cents
		totals[e.Category] = t
	}
	return totals
}

// CategoryCount counts expenses in the given category.
func CategoryCount(expenses []Expense, c Category) int {
	n := 0
	for _, e := range expenses {
		if e.Category == c {
			n++
		}
	}
	return n
}

// CategoryBreakdown returns each category's share of total spending in
// registry order. When the total is zero every share reports 0%.
func CategoryBreakdown(expenses []Expense) []CategoryShare {
	totals := CategoryTotals(expenses)
	grand := TotalExpenses(expenses)

	shares := make([]CategoryShare, 0, len(categoryRegistry))
	for _, c := range AllCategories() {
		share := CategoryShare{Category: c, Amount: totals[c]}
		if grand.Cents > 0 {
			share.Percent = float64(totals[c].Cents) / float64(grand.Cents) * 100
		}
		shares = append(shares, share)
	}
	return shares
}

// MonthlyBalance filters both collections to ref's calendar month, sums
// each side and classifies the result.
func MonthlyBalance(expenses []Expense, incomes []Income, ref time.Time) MonthSummary {
	var exp, inc int64
	for _, e := range expenses {
		if e.Date.SameMonth(ref) {
			exp += e.Amount.Cents
		}
	}
	for _, i := range incomes {
		if i.Date.SameMonth(ref) {
			inc += i.Amount.Cents
		}
	}

	balance := Money{Cents: inc - exp}
	return MonthSummary{
		Year:     ref.Year(),
		Month:    ref.Month(),
		Income:   Money{Cents: inc},
		Expenses: Money{Cents: exp},
		Balance:  balance,
		Status:   ClassifyBalance(balance, Money{Cents: inc}),
	}
}

// ClassifyBalance applies the savings thresholds: negative balances are
// overspending, at least 20% of income saved is good, under 10% is low.
// Integer arithmetic keeps the 10%/20% boundaries exact.
func ClassifyBalance(balance, income Money) BalanceStatus {
	switch {
	case balance.Cents < 0:
		return Overspending
	case balance.Cents*5 >= income.Cents:
		return GoodSavings
	case balance.Cents*10 < income.Cents:
		return LowSavings
	default:
		return NormalBudget
	}
}

// SortDebtsByUrgency returns a copy of debts in urgency order: every debt
// whose due date is strictly before now precedes all non-overdue debts,
// and each partition is ordered by ascending due date. The sort is stable.
func SortDebtsByUrgency(debts []Debt, now time.Time) []Debt {
	out := make([]Debt, len(debts))
	copy(out, debts)
	sort.SliceStable(out, func(i, j int) bool {
		iOverdue := out[i].DueDate.Before(now)
		jOverdue := out[j].DueDate.Before(now)
		if iOverdue != jOverdue {
			return iOverdue
		}
		return out[i].DueDate.Before(out[j].DueDate.Time)
	})
	return out
}

// MostUrgentDebts returns the first n debts in urgency order.
func MostUrgentDebts(debts []Debt, n int, now time.Time) []Debt {
	sorted := SortDebtsByUrgency(debts, now)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// RecentExpenses returns the n most recent expenses by descending date.
func RecentExpenses(expenses []Expense, n int) []Expense {
	out := make([]Expense, len(expenses))
	copy(out, expenses)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// MonthlySeries buckets expenses and incomes into the `months` calendar
// months ending at ref's month, oldest first.
func MonthlySeries(expenses []Expense, incomes []Income, months int, ref time.Time) []MonthPoint {
	if months <= 0 {
		return nil
	}

	series := make([]MonthPoint, months)
	for i := 0; i < months; i++ {
		m := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, i-months+1, 0)
		series[i] = MonthPoint{Year: m.Year(), Month: m.Month()}
	}

	index := func(d Date) int {
		for i, p := range series {
			if d.Year() == p.Year && d.Month() == p.Month {
				return i
			}
		}
		return -1
	}

	for _, e := range expenses {
		if i := index(e.Date); i >= 0 {
			series[i].Expenses.Cents += e.Amount.Cents
		}
	}
	for _, inc := range incomes {
		if i := index(inc.Date); i >= 0 {
			series[i].Income.Cents += inc.Amount.Cents
		}
	}
	return series
}
