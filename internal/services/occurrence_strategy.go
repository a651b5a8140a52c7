// Package services orchestrates domain operations that span storage and
// the core types, in particular the recurring expense pipeline.
//
// This file implements the strategy registry for recurrence frequencies.
// Each frequency encapsulates how a due template materializes into a
// dated expense instance and where its next due date lands.
package services

import (
	"fmt"
	"time"

	"fintrack/internal/core"
)

// OccurrenceStrategy decides what a due recurring template produces.
type OccurrenceStrategy interface {
	// Materialize builds the concrete expense instance for today from the
	// template. The instance carries a back-reference to the template.
	Materialize(template core.Expense, today core.Date) core.Expense

	// NextDue returns the due date after current. The zero date means the
	// template has fired for the last time.
	NextDue(current core.Date) core.Date
}

// OneTimeStrategy fires exactly once: the instance takes the base amount
// and the template gets no further due date.
type OneTimeStrategy struct{}

func (OneTimeStrategy) Materialize(template core.Expense, today core.Date) core.Expense {
	return instanceOf(template, today, template.BaseAmount)
}

func (OneTimeStrategy) NextDue(core.Date) core.Date {
	return core.Date{}
}

// MonthlyStrategy produces an instance at the base amount every month.
type MonthlyStrategy struct{}

func (MonthlyStrategy) Materialize(template core.Expense, today core.Date) core.Expense {
	return instanceOf(template, today, template.BaseAmount)
}

func (MonthlyStrategy) NextDue(current core.Date) core.Date {
	return addOneMonthClamped(current)
}

// VariableMonthlyStrategy covers bills whose amount changes month to
// month: it creates a zero-amount placeholder to be edited once the real
// figure is known, keeping the base amount on the template for reference.
type VariableMonthlyStrategy struct{}

func (VariableMonthlyStrategy) Materialize(template core.Expense, today core.Date) core.Expense {
	return instanceOf(template, today, core.Money{})
}

func (VariableMonthlyStrategy) NextDue(current core.Date) core.Date {
	return addOneMonthClamped(current)
}

func instanceOf(template core.Expense, today core.Date, amount core.Money) core.Expense {
	return core.Expense{
		Amount:          amount,
		Category:        template.Category,
		Date:            today,
		Description:     template.Description,
		ParentExpenseID: template.ID,
	}
}

// addOneMonthClamped moves to the same day of the next month, clamping to
// the last day when the next month is shorter (Jan 31 -> Feb 28).
func addOneMonthClamped(d core.Date) core.Date {
	first := time.Date(d.Year(), d.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	day := d.Day()
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return core.NewDate(first.Year(), int(first.Month()), day)
}

// occurrenceStrategies maps frequencies to their strategies.
var occurrenceStrategies = map[core.Frequency]OccurrenceStrategy{
	core.OneTime:         OneTimeStrategy{},
	core.MonthlyCadence:  MonthlyStrategy{},
	core.VariableMonthly: VariableMonthlyStrategy{},
}

// GetOccurrenceStrategy returns the strategy for a frequency.
func GetOccurrenceStrategy(f core.Frequency) (OccurrenceStrategy, error) {
	s, ok := occurrenceStrategies[f]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", f)
	}
	return s, nil
}

// RegisterOccurrenceStrategy registers a strategy for a new frequency,
// allowing extension without touching the processor.
func RegisterOccurrenceStrategy(f core.Frequency, s OccurrenceStrategy) {
	occurrenceStrategies[f] = s
}
