package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// Wire representations. Amounts travel as integer cents, dates in the
// YYYY-MM-DD form; zero dates serialize as empty strings.

type expenseDTO struct {
	ID          string `json:"id,omitempty"`
	AmountCents int64  `json:"amount_cents"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`

	BaseAmountCents int64  `json:"base_amount_cents,omitempty"`
	IsRecurring     bool   `json:"is_recurring,omitempty"`
	Frequency       string `json:"frequency,omitempty"`
	NextDueDate     string `json:"next_due_date,omitempty"`
	LastOccurrence  string `json:"last_occurrence,omitempty"`
	ParentExpenseID string `json:"parent_expense_id,omitempty"`
}

type incomeDTO struct {
	ID          string `json:"id,omitempty"`
	AmountCents int64  `json:"amount_cents"`
	Source      string `json:"source"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
}

type accountDTO struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	BalanceCents int64  `json:"balance_cents"`
	Type         string `json:"type"`
	Color        string `json:"color,omitempty"`
}

type debtDTO struct {
	ID             string  `json:"id,omitempty"`
	Name           string  `json:"name"`
	AmountCents    int64   `json:"amount_cents"`
	RemainingCents int64   `json:"remaining_cents"`
	Type           string  `json:"type"`
	InterestRate   float64 `json:"interest_rate,omitempty"`
	ClosingDate    string  `json:"closing_date,omitempty"`
	DueDate        string  `json:"due_date"`
	Description    string  `json:"description,omitempty"`
}

// debtPatchDTO carries a partial debt update; absent fields keep their
// current values.
type debtPatchDTO struct {
	Name           *string  `json:"name"`
	AmountCents    *int64   `json:"amount_cents"`
	RemainingCents *int64   `json:"remaining_cents"`
	Type           *string  `json:"type"`
	InterestRate   *float64 `json:"interest_rate"`
	ClosingDate    *string  `json:"closing_date"`
	DueDate        *string  `json:"due_date"`
	Description    *string  `json:"description"`
}

func expenseToDTO(e core.Expense) expenseDTO {
	return expenseDTO{
		ID:              e.ID,
		AmountCents:     e.Amount.Cents,
		Category:        string(e.Category),
		Date:            e.Date.String(),
		Description:     e.Description,
		BaseAmountCents: e.BaseAmount.Cents,
		IsRecurring:     e.IsRecurring,
		Frequency:       string(e.Frequency),
		NextDueDate:     e.NextDueDate.String(),
		LastOccurrence:  e.LastOccurrence.String(),
		ParentExpenseID: e.ParentExpenseID,
	}
}

func (d expenseDTO) toCore() (core.Expense, error) {
	date, err := parseOptionalDate(d.Date)
	if err != nil {
		return core.Expense{}, err
	}
	nextDue, err := parseOptionalDate(d.NextDueDate)
	if err != nil {
		return core.Expense{}, err
	}
	lastOcc, err := parseOptionalDate(d.LastOccurrence)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		Amount:          core.Money{Cents: d.AmountCents},
		Category:        core.Category(d.Category),
		Date:            date,
		Description:     d.Description,
		BaseAmount:      core.Money{Cents: d.BaseAmountCents},
		IsRecurring:     d.IsRecurring,
		Frequency:       core.Frequency(d.Frequency),
		NextDueDate:     nextDue,
		LastOccurrence:  lastOcc,
		ParentExpenseID: d.ParentExpenseID,
	}, nil
}

func incomeToDTO(in core.Income) incomeDTO {
	return incomeDTO{
		ID:          in.ID,
		AmountCents: in.Amount.Cents,
		Source:      in.Source,
		Date:        in.Date.String(),
		Description: in.Description,
	}
}

func (d incomeDTO) toCore() (core.Income, error) {
	date, err := parseOptionalDate(d.Date)
	if err != nil {
		return core.Income{}, err
	}
	return core.Income{
		Amount:      core.Money{Cents: d.AmountCents},
		Source:      d.Source,
		Date:        date,
		Description: d.Description,
	}, nil
}

func accountToDTO(a core.Account) accountDTO {
	return accountDTO{
		ID:           a.ID,
		Name:         a.Name,
		BalanceCents: a.Balance.Cents,
		Type:         string(a.Type),
		Color:        a.Color,
	}
}

func (d accountDTO) toCore() core.Account {
	return core.Account{
		Name:    d.Name,
		Balance: core.Money{Cents: d.BalanceCents},
		Type:    core.AccountType(d.Type),
		Color:   d.Color,
	}
}

func debtToDTO(d core.Debt) debtDTO {
	return debtDTO{
		ID:             d.ID,
		Name:           d.Name,
		AmountCents:    d.Amount.Cents,
		RemainingCents: d.Remaining.Cents,
		Type:           string(d.Type),
		InterestRate:   d.InterestRate,
		ClosingDate:    d.ClosingDate.String(),
		DueDate:        d.DueDate.String(),
		Description:    d.Description,
	}
}

func (d debtDTO) toCore() (core.Debt, error) {
	closing, err := parseOptionalDate(d.ClosingDate)
	if err != nil {
		return core.Debt{}, err
	}
	due, err := parseOptionalDate(d.DueDate)
	if err != nil {
		return core.Debt{}, err
	}
	return core.Debt{
		Name:         d.Name,
		Amount:       core.Money{Cents: d.AmountCents},
		Remaining:    core.Money{Cents: d.RemainingCents},
		Type:         core.DebtType(d.Type),
		InterestRate: d.InterestRate,
		ClosingDate:  closing,
		DueDate:      due,
		Description:  d.Description,
	}, nil
}

func (d debtPatchDTO) toPatch() (store.DebtPatch, error) {
	patch := store.DebtPatch{
		Name:         d.Name,
		InterestRate: d.InterestRate,
		Description:  d.Description,
	}
	if d.AmountCents != nil {
		patch.Amount = &core.Money{Cents: *d.AmountCents}
	}
	if d.RemainingCents != nil {
		patch.Remaining = &core.Money{Cents: *d.RemainingCents}
	}
	if d.Type != nil {
		t := core.DebtType(*d.Type)
		patch.Type = &t
	}
	if d.ClosingDate != nil {
		date, err := parseOptionalDate(*d.ClosingDate)
		if err != nil {
			return store.DebtPatch{}, err
		}
		patch.ClosingDate = &date
	}
	if d.DueDate != nil {
		date, err := parseOptionalDate(*d.DueDate)
		if err != nil {
			return store.DebtPatch{}, err
		}
		patch.DueDate = &date
	}
	return patch, nil
}

func parseOptionalDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps validation failures to 422 and everything else
// to 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, store.ErrDebtNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidDate,
		core.ErrNegativeAmount,
		core.ErrUnknownCategory,
		core.ErrEmptyName,
		core.ErrEmptySource,
		core.ErrInvalidAccountType,
		core.ErrInvalidDebtType,
		core.ErrInvalidFrequency,
		core.ErrRemainingOverTotal,
		core.ErrClosingDateNotCard,
		core.ErrDescriptionTooLong,
		core.ErrMissingNextDueDate,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
