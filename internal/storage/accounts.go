package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// InsertAccount stores a new account for owner and returns the row with
// its server-assigned id.
func (r *SQLiteRepository) InsertAccount(ctx context.Context, owner string, a core.Account) (core.Account, error) {
	a.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, name, balance_cents, type, color)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, owner, a.Name, a.Balance.Cents, string(a.Type), a.Color)
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	return a, nil
}

// UpdateAccount replaces an owner's account row; unknown ids match zero
// rows and are silent no-ops.
func (r *SQLiteRepository) UpdateAccount(ctx context.Context, owner, id string, a core.Account) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET name = ?, balance_cents = ?, type = ?, color = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?`,
		a.Name, a.Balance.Cents, string(a.Type), a.Color, id, owner)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}

// UpdateAccountBalance patches only the balance column.
func (r *SQLiteRepository) UpdateAccountBalance(ctx context.Context, owner, id string, balance core.Money) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET balance_cents = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?`,
		balance.Cents, id, owner)
	if err != nil {
		return fmt.Errorf("update account balance: %w", err)
	}
	return nil
}

// DeleteAccount removes an owner's account row by id.
func (r *SQLiteRepository) DeleteAccount(ctx context.Context, owner, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE id = ? AND user_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

// ListAccounts returns all of an owner's accounts in insertion order.
func (r *SQLiteRepository) ListAccounts(ctx context.Context, owner string) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, balance_cents, type, color
		FROM accounts WHERE user_id = ? ORDER BY created_at ASC`, owner)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var (
			a   core.Account
			typ string
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.Balance.Cents, &typ, &a.Color); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Type = core.AccountType(typ)
		out = append(out, a)
	}
	return out, rows.Err()
}
