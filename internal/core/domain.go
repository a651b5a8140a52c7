package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	Bank         AccountType = "bank"
	Cash         AccountType = "cash"
	Credit       AccountType = "credit"
	Savings      AccountType = "savings"
	OtherAccount AccountType = "other"
)

const (
	Loan       DebtType = "loan"
	CreditCard DebtType = "credit_card"
)

const (
	OneTime         Frequency = "one_time"
	MonthlyCadence  Frequency = "monthly"
	VariableMonthly Frequency = "variable_monthly"
)

type (
	AccountType string
	DebtType    string
	Frequency   string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Expense struct {
		ID          string
		Amount      Money
		Category    Category
		Date        Date
		Description string

		// Recurrence fields. Zero values for plain one-off expenses.
		BaseAmount      Money
		IsRecurring     bool
		Frequency       Frequency
		NextDueDate     Date
		LastOccurrence  Date
		ParentExpenseID string
	}

	Income struct {
		ID          string
		Amount      Money
		Source      string
		Date        Date
		Description string
	}

	Account struct {
		ID      string
		Name    string
		Balance Money // signed; credit accounts may be negative
		Type    AccountType
		Color   string
	}

	Debt struct {
		ID           string
		Name         string
		Amount       Money
		Remaining    Money
		Type         DebtType
		InterestRate float64 // annual percentage, 0 when not set
		ClosingDate  Date    // credit cards only
		DueDate      Date
		Description  string
	}
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrNegativeAmount     = errors.New("amount cannot be negative")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrEmptyName          = errors.New("empty name")
	ErrEmptySource        = errors.New("empty source")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidDebtType    = errors.New("invalid debt type")
	ErrInvalidFrequency   = errors.New("invalid frequency")
	ErrRemainingOverTotal = errors.New("remaining amount exceeds total amount")
	ErrClosingDateNotCard = errors.New("closing date is only valid for credit cards")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrMissingNextDueDate = errors.New("recurring expense needs a next due date")
)

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses the YYYY-MM-DD wire form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String returns the YYYY-MM-DD wire form, empty for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// SameMonth reports whether d falls in the same calendar month as ref.
// Equivalent to an inclusive start-of-month/end-of-month range check
// for date-only values.
func (d Date) SameMonth(ref time.Time) bool {
	return d.Year() == ref.Year() && d.Month() == ref.Month()
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// Decimal formats the amount with two fraction digits, e.g. "1450.00".
func (m Money) Decimal() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// ParseDecimalToCents parses a decimal amount like "12.34" into cents.
// At most two fraction digits are accepted.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, errors.New("empty amount")
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("too many fraction digits in %q", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	cents := w*100 + f
	if neg {
		cents = -cents
	}
	return cents, nil
}

func (t AccountType) Valid() bool {
	switch t {
	case Bank, Cash, Credit, Savings, OtherAccount:
		return true
	}
	return false
}

func (t DebtType) Valid() bool {
	switch t {
	case Loan, CreditCard:
		return true
	}
	return false
}

func (f Frequency) Valid() bool {
	switch f {
	case OneTime, MonthlyCadence, VariableMonthly:
		return true
	}
	return false
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, e.Category)
	}
	if len(e.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if e.IsRecurring {
		if !e.Frequency.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidFrequency, e.Frequency)
		}
		if e.NextDueDate.IsZero() {
			return ErrMissingNextDueDate
		}
	}
	return nil
}

func (i Income) Validate() error {
	if err := i.Date.Validate(); err != nil {
		return err
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(i.Source) == "" {
		return ErrEmptySource
	}
	if len(i.Description) > 200 {
		return ErrDescriptionTooLong
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAccountType, a.Type)
	}
	// Balance is signed on purpose: credit accounts carry negative balances.
	return nil
}

func (d Debt) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if !d.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDebtType, d.Type)
	}
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if err := d.Remaining.Validate(); err != nil {
		return err
	}
	if d.Remaining.Cents > d.Amount.Cents {
		return ErrRemainingOverTotal
	}
	if err := d.DueDate.Validate(); err != nil {
		return err
	}
	if !d.ClosingDate.IsZero() && d.Type != CreditCard {
		return ErrClosingDateNotCard
	}
	if d.InterestRate < 0 {
		return errors.New("interest rate cannot be negative")
	}
	if len(d.Description) > 200 {
		return ErrDescriptionTooLong
	}
	return nil
}
