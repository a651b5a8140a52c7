// Package export mirrors expense rows to an external ledger. The shipped
// adapter writes to a Google Sheets spreadsheet; an in-memory adapter
// backs tests and the memory data backend.
package export

import (
	"context"

	"fintrack/internal/core"
)

// Ledger is the outbound port for the export worker.
type Ledger interface {
	// AppendExpense writes one expense row for the owner and returns an
	// adapter-specific reference to the written row.
	AppendExpense(ctx context.Context, owner string, e core.Expense) (rowRef string, err error)
}
