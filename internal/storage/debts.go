package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// InsertDebt stores a new debt for owner and returns the row with its
// server-assigned id.
func (r *SQLiteRepository) InsertDebt(ctx context.Context, owner string, d core.Debt) (core.Debt, error) {
	d.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO debts (id, user_id, name, amount_cents, remaining_cents, type,
			interest_rate, closing_date, due_date, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, owner, d.Name, d.Amount.Cents, d.Remaining.Cents, string(d.Type),
		d.InterestRate, d.ClosingDate.String(), d.DueDate.String(), d.Description)
	if err != nil {
		return core.Debt{}, fmt.Errorf("insert debt: %w", err)
	}
	return d, nil
}

// UpdateDebt replaces an owner's debt row; unknown ids match zero rows
// and are silent no-ops.
func (r *SQLiteRepository) UpdateDebt(ctx context.Context, owner, id string, d core.Debt) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE debts SET name = ?, amount_cents = ?, remaining_cents = ?, type = ?,
			interest_rate = ?, closing_date = ?, due_date = ?, description = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?`,
		d.Name, d.Amount.Cents, d.Remaining.Cents, string(d.Type),
		d.InterestRate, d.ClosingDate.String(), d.DueDate.String(), d.Description,
		id, owner)
	if err != nil {
		return fmt.Errorf("update debt: %w", err)
	}
	return nil
}

// DeleteDebt removes an owner's debt row by id.
func (r *SQLiteRepository) DeleteDebt(ctx context.Context, owner, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM debts WHERE id = ? AND user_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete debt: %w", err)
	}
	return nil
}

// ListDebts returns all of an owner's debts ordered by ascending due date.
func (r *SQLiteRepository) ListDebts(ctx context.Context, owner string) ([]core.Debt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, amount_cents, remaining_cents, type, interest_rate,
			closing_date, due_date, description
		FROM debts WHERE user_id = ? ORDER BY due_date ASC`, owner)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	defer rows.Close()

	var out []core.Debt
	for rows.Next() {
		var (
			d                 core.Debt
			typ, closing, due string
		)
		if err := rows.Scan(&d.ID, &d.Name, &d.Amount.Cents, &d.Remaining.Cents, &typ,
			&d.InterestRate, &closing, &due, &d.Description); err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		d.Type = core.DebtType(typ)
		if d.ClosingDate, err = parseStoredDate(closing); err != nil {
			return nil, err
		}
		if d.DueDate, err = parseStoredDate(due); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
