package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// RecurrenceStorage is the slice of the repository the processor needs.
type RecurrenceStorage interface {
	ListDueRecurringTemplates(ctx context.Context, today core.Date) ([]storage.OwnedExpense, error)
	InsertExpense(ctx context.Context, owner string, e core.Expense) (core.Expense, error)
	AdvanceRecurrence(ctx context.Context, id string, lastOccurrence, nextDue core.Date) error
}

// RecurringProcessor materializes dated expense instances from recurring
// templates whose next due date has arrived.
type RecurringProcessor struct {
	storage RecurrenceStorage
	logger  *log.Logger
}

func NewRecurringProcessor(st RecurrenceStorage, logger *log.Logger) *RecurringProcessor {
	return &RecurringProcessor{
		storage: st,
		logger:  logger.WithComponent(log.ComponentRecurring),
	}
}

// ProcessDue scans due templates across all owners and creates their
// instances. A failing template is logged and skipped so one broken row
// cannot stall the rest. Returns the number of instances created.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.storage == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	today := core.NewDate(now.Year(), int(now.Month()), now.Day())
	templates, err := p.storage.ListDueRecurringTemplates(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("list due recurring templates: %w", err)
	}

	p.logger.InfoContext(ctx, "Processing recurring templates",
		"due", len(templates), "processing_date", today.String())

	processed := 0
	for _, tpl := range templates {
		strategy, err := GetOccurrenceStrategy(tpl.Expense.Frequency)
		if err != nil {
			p.logger.ErrorContext(ctx, "Skipping template with unknown frequency",
				log.FieldEntityID, tpl.Expense.ID, log.FieldError, err)
			continue
		}

		instance := strategy.Materialize(tpl.Expense, today)
		created, err := p.storage.InsertExpense(ctx, tpl.Owner, instance)
		if err != nil {
			p.logger.ErrorContext(ctx, "Failed to create expense from template",
				log.FieldEntityID, tpl.Expense.ID, log.FieldOwnerID, tpl.Owner, log.FieldError, err)
			continue
		}

		next := strategy.NextDue(tpl.Expense.NextDueDate)
		if err := p.storage.AdvanceRecurrence(ctx, tpl.Expense.ID, today, next); err != nil {
			// The instance exists; a failed advance only risks a duplicate
			// on the next run, which the operator can clean up.
			p.logger.ErrorContext(ctx, "Failed to advance recurrence",
				log.FieldEntityID, tpl.Expense.ID, log.FieldError, err)
		}

		processed++
		p.logger.InfoContext(ctx, "Created expense from recurring template",
			log.FieldEntityID, created.ID,
			"template_id", tpl.Expense.ID,
			log.FieldAmount, created.Amount.Cents,
			"frequency", string(tpl.Expense.Frequency),
			"next_due", next.String())
	}

	p.logger.InfoContext(ctx, "Recurring processing complete",
		"processed", processed, "total_due", len(templates))
	return processed, nil
}
