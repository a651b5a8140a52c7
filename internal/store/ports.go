package store

import (
	"context"

	"fintrack/internal/core"
)

// Repository is the store's view of persistence. Both the SQLite and the
// in-memory repositories satisfy it; every call is owner-scoped.
type Repository interface {
	InsertExpense(ctx context.Context, owner string, e core.Expense) (core.Expense, error)
	UpdateExpense(ctx context.Context, owner, id string, e core.Expense) error
	DeleteExpense(ctx context.Context, owner, id string) error
	ListExpenses(ctx context.Context, owner string) ([]core.Expense, error)

	InsertIncome(ctx context.Context, owner string, in core.Income) (core.Income, error)
	UpdateIncome(ctx context.Context, owner, id string, in core.Income) error
	DeleteIncome(ctx context.Context, owner, id string) error
	ListIncomes(ctx context.Context, owner string) ([]core.Income, error)

	InsertAccount(ctx context.Context, owner string, a core.Account) (core.Account, error)
	UpdateAccount(ctx context.Context, owner, id string, a core.Account) error
	UpdateAccountBalance(ctx context.Context, owner, id string, balance core.Money) error
	DeleteAccount(ctx context.Context, owner, id string) error
	ListAccounts(ctx context.Context, owner string) ([]core.Account, error)

	InsertDebt(ctx context.Context, owner string, d core.Debt) (core.Debt, error)
	UpdateDebt(ctx context.Context, owner, id string, d core.Debt) error
	DeleteDebt(ctx context.Context, owner, id string) error
	ListDebts(ctx context.Context, owner string) ([]core.Debt, error)

	RenameCategory(ctx context.Context, owner string, oldCat, newCat core.Category) (int64, error)
	DeleteCategoryExpenses(ctx context.Context, owner string, cat core.Category) (int64, error)
}

// ChangeEvent describes a committed mutation, for the export pipeline.
type ChangeEvent struct {
	Entity string `json:"entity"` // expense, income, account, debt
	Action string `json:"action"` // created, updated, deleted
	Owner  string `json:"owner"`
	ID     string `json:"id"`
}

// Publisher forwards change events to the message broker. Publishing is
// best-effort; the store logs failures and moves on.
type Publisher interface {
	PublishChange(ctx context.Context, ev ChangeEvent) error
}
