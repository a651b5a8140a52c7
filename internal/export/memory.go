package export

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/core"
)

// MemoryLedger keeps exported rows in memory. It backs the worker tests
// and the memory data backend.
type MemoryLedger struct {
	mu   sync.Mutex
	rows []LedgerRow

	// FailNext makes the next append fail, for retry tests.
	FailNext error
}

// LedgerRow is one exported expense.
type LedgerRow struct {
	Owner   string
	Expense core.Expense
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

var _ Ledger = (*MemoryLedger)(nil)

func (m *MemoryLedger) AppendExpense(_ context.Context, owner string, e core.Expense) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailNext; err != nil {
		m.FailNext = nil
		return "", err
	}
	m.rows = append(m.rows, LedgerRow{Owner: owner, Expense: e})
	return fmt.Sprintf("memory:%d", len(m.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (m *MemoryLedger) Rows() []LedgerRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LedgerRow(nil), m.rows...)
}
