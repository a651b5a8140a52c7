package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// InsertIncome stores a new income for owner and returns the row with its
// server-assigned id.
func (r *SQLiteRepository) InsertIncome(ctx context.Context, owner string, in core.Income) (core.Income, error) {
	in.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO incomes (id, user_id, amount_cents, source, date, description)
		VALUES (?, ?, ?, ?, ?, ?)`,
		in.ID, owner, in.Amount.Cents, in.Source, in.Date.String(), in.Description)
	if err != nil {
		return core.Income{}, fmt.Errorf("insert income: %w", err)
	}
	return in, nil
}

// UpdateIncome replaces an owner's income row; unknown ids match zero
// rows and are silent no-ops.
func (r *SQLiteRepository) UpdateIncome(ctx context.Context, owner, id string, in core.Income) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE incomes SET amount_cents = ?, source = ?, date = ?, description = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?`,
		in.Amount.Cents, in.Source, in.Date.String(), in.Description, id, owner)
	if err != nil {
		return fmt.Errorf("update income: %w", err)
	}
	return nil
}

// DeleteIncome removes an owner's income row by id.
func (r *SQLiteRepository) DeleteIncome(ctx context.Context, owner, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM incomes WHERE id = ? AND user_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	return nil
}

// ListIncomes returns all of an owner's incomes, newest date first.
func (r *SQLiteRepository) ListIncomes(ctx context.Context, owner string) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount_cents, source, date, description
		FROM incomes WHERE user_id = ? ORDER BY date DESC, created_at DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var out []core.Income
	for rows.Next() {
		var (
			in   core.Income
			date string
		)
		if err := rows.Scan(&in.ID, &in.Amount.Cents, &in.Source, &date, &in.Description); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		if in.Date, err = parseStoredDate(date); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}
