package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// ErrNotFound is returned when a row lookup by id yields nothing.
var ErrNotFound = errors.New("row not found")

const expenseColumns = `id, amount_cents, category, date, description,
	base_amount_cents, is_recurring, frequency, next_due_date, last_occurrence, parent_expense_id`

// OwnedExpense pairs an expense with the user it belongs to, for
// cross-owner worker scans.
type OwnedExpense struct {
	Owner   string
	Expense core.Expense
}

// PendingExpense identifies an expense row awaiting ledger export.
type PendingExpense struct {
	ID    string
	Owner string
}

// InsertExpense stores a new expense for owner and returns the row with
// its server-assigned id.
func (r *SQLiteRepository) InsertExpense(ctx context.Context, owner string, e core.Expense) (core.Expense, error) {
	e.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (id, user_id, amount_cents, category, date, description,
			base_amount_cents, is_recurring, frequency, next_due_date, last_occurrence, parent_expense_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, owner, e.Amount.Cents, string(e.Category), e.Date.String(), e.Description,
		e.BaseAmount.Cents, boolToInt(e.IsRecurring), string(e.Frequency),
		e.NextDueDate.String(), e.LastOccurrence.String(), e.ParentExpenseID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	return e, nil
}

// UpdateExpense replaces an owner's expense row. Updating an id the owner
// does not hold matches zero rows and is a silent no-op.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, owner, id string, e core.Expense) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE expenses SET amount_cents = ?, category = ?, date = ?, description = ?,
			base_amount_cents = ?, is_recurring = ?, frequency = ?, next_due_date = ?,
			last_occurrence = ?, parent_expense_id = ?, sync_status = 'pending',
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?`,
		e.Amount.Cents, string(e.Category), e.Date.String(), e.Description,
		e.BaseAmount.Cents, boolToInt(e.IsRecurring), string(e.Frequency),
		e.NextDueDate.String(), e.LastOccurrence.String(), e.ParentExpenseID,
		id, owner)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return nil
}

// DeleteExpense removes an owner's expense row by id.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, owner, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

// ListExpenses returns all of an owner's expenses, newest date first.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, owner string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = ? ORDER BY date DESC, created_at DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// RenameCategory rewrites every expense of owner in the old category to
// the new one. Returns the number of rows rewritten.
func (r *SQLiteRepository) RenameCategory(ctx context.Context, owner string, oldCat, newCat core.Category) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses SET category = ?, sync_status = 'pending', updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND category = ?`,
		string(newCat), owner, string(oldCat))
	if err != nil {
		return 0, fmt.Errorf("rename category: %w", err)
	}
	return res.RowsAffected()
}

// DeleteCategoryExpenses removes every expense of owner in the category.
func (r *SQLiteRepository) DeleteCategoryExpenses(ctx context.Context, owner string, cat core.Category) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE user_id = ? AND category = ?`, owner, string(cat))
	if err != nil {
		return 0, fmt.Errorf("delete category expenses: %w", err)
	}
	return res.RowsAffected()
}

// GetExpense loads a single expense by id across owners, for the export
// and recurrence workers.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (string, core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT user_id, `+expenseColumns+` FROM expenses WHERE id = ?`, id)

	var owner string
	e, err := scanExpenseWith(row, &owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", core.Expense{}, ErrNotFound
	}
	if err != nil {
		return "", core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return owner, e, nil
}

// ListPendingSyncExpenses returns up to limit expenses still waiting for
// ledger export. Backup path for lost broker messages.
func (r *SQLiteRepository) ListPendingSyncExpenses(ctx context.Context, limit int) ([]PendingExpense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id FROM expenses
		WHERE sync_status = 'pending' AND sync_attempts < 5
		ORDER BY created_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending sync expenses: %w", err)
	}
	defer rows.Close()

	var out []PendingExpense
	for rows.Next() {
		var p PendingExpense
		if err := rows.Scan(&p.ID, &p.Owner); err != nil {
			return nil, fmt.Errorf("scan pending expense: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkExpenseSynced records a successful ledger export.
func (r *SQLiteRepository) MarkExpenseSynced(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE expenses SET sync_status = 'synced', updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark expense synced: %w", err)
	}
	return nil
}

// MarkExpenseSyncError bumps the attempt counter after a failed export.
func (r *SQLiteRepository) MarkExpenseSyncError(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE expenses SET sync_status = 'pending', sync_attempts = sync_attempts + 1,
			updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark expense sync error: %w", err)
	}
	return nil
}

// ListDueRecurringTemplates returns recurring templates whose next due
// date has arrived, across all owners.
func (r *SQLiteRepository) ListDueRecurringTemplates(ctx context.Context, today core.Date) ([]OwnedExpense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, `+expenseColumns+` FROM expenses
		WHERE is_recurring = 1 AND next_due_date != '' AND next_due_date <= ?
		ORDER BY next_due_date ASC`, today.String())
	if err != nil {
		return nil, fmt.Errorf("list due recurring templates: %w", err)
	}
	defer rows.Close()

	var out []OwnedExpense
	for rows.Next() {
		var owner string
		e, err := scanExpenseWith(rows, &owner)
		if err != nil {
			return nil, err
		}
		out = append(out, OwnedExpense{Owner: owner, Expense: e})
	}
	return out, rows.Err()
}

// AdvanceRecurrence stamps the template's last occurrence and moves the
// next due date forward.
func (r *SQLiteRepository) AdvanceRecurrence(ctx context.Context, id string, lastOccurrence, nextDue core.Date) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE expenses SET last_occurrence = ?, next_due_date = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		lastOccurrence.String(), nextDue.String(), id)
	if err != nil {
		return fmt.Errorf("advance recurrence: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	return scanExpenseInto(row, nil)
}

func scanExpenseWith(row rowScanner, owner *string) (core.Expense, error) {
	return scanExpenseInto(row, owner)
}

func scanExpenseInto(row rowScanner, owner *string) (core.Expense, error) {
	var (
		e                             core.Expense
		category, frequency           string
		date, nextDue, lastOccurrence string
		isRecurring                   int
	)

	dest := []any{}
	if owner != nil {
		dest = append(dest, owner)
	}
	dest = append(dest,
		&e.ID, &e.Amount.Cents, &category, &date, &e.Description,
		&e.BaseAmount.Cents, &isRecurring, &frequency, &nextDue, &lastOccurrence, &e.ParentExpenseID)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Expense{}, err
		}
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}

	e.Category = core.Category(category)
	e.Frequency = core.Frequency(frequency)
	e.IsRecurring = isRecurring != 0

	var err error
	if e.Date, err = parseStoredDate(date); err != nil {
		return core.Expense{}, err
	}
	if e.NextDueDate, err = parseStoredDate(nextDue); err != nil {
		return core.Expense{}, err
	}
	if e.LastOccurrence, err = parseStoredDate(lastOccurrence); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

// parseStoredDate maps the empty string to the zero date; dates are
// stored in the YYYY-MM-DD wire form.
func parseStoredDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
