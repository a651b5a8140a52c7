package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Reads work signed out and return empty collections. Writes require an
// owner and answer 401 without one.

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	_, st := s.owner(r)
	st.EnsureLoaded(r.Context())
	out := make([]expenseDTO, 0, len(st.Expenses()))
	for _, e := range st.Expenses() {
		out = append(out, expenseToDTO(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	owner, st := s.owner(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "owner required")
		return
	}

	var dto expenseDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	expense, err := dto.toCore()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	st.EnsureLoaded(r.Context())
	created, err := st.AddExpense(r.Context(), expense)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to add expense", log.FieldError, err)
		writeDomainError(w, err)
		return
	}
	s.invalidateSummary(owner)
	writeJSON(w, http.StatusCreated, expenseToDTO(created))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	owner, st := s.owner(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "owner required")
		return
	}

	var dto expenseDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	expense, err := dto.toCore()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	st.EnsureLoaded(r.Context())
	if err := st.EditExpense(r.Context(), r.PathValue("id"), expense); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to update expense", log.FieldError, err)
		writeDomainError(w, err)
		return
	}
	s.invalidateSummary(owner)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	owner, st := s.owner(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "owner required")
		return
	}

	st.EnsureLoaded(r.Context())
	if err := st.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to delete expense", log.FieldError, err)
		writeDomainError(w, err)
		return
	}
	s.invalidateSummary(owner)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	_, st := s.owner(r)
	st.EnsureLoaded(r.Context())
	out := make([]incomeDTO, 0, len(st.Incomes()))
	for _, in := range st.Incomes() {
		out = append(out, incomeToDTO(in))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	owner, st := s.owner(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "owner required")
		return
	}

	var dto incomeDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	income, err := dto.toCore()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	st.EnsureLoaded(r.Context())
	created, err := st.AddIncome(r.Context(), income)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to add income", log.FieldError, err)
		writeDomainError(w, err)
		return
	}
	s.invalidateSummary(owner)
	writeJSON(w, http.StatusCreated, incomeToDTO(created))
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	owner, st := s.owner(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "owner required")
		return
	}

	var dto incomeDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	income, err := dto.toCore()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	st.EnsureLoaded(r.Context())
	if err := st.EditIncome(r.Context(), r.PathValue("id"), income); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to update income", log.FieldError, err)
		writeDomainError(w, err)
		return
	}
	s.invalidateSummary(owner)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	owner, st := s.owner(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "owner required")
		return
	}

	st.EnsureLoaded(r.Context())
	if err := st.DeleteIncome(r.Context(), r.PathValue("id")); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to delete income", log.FieldError, err)
		writeDomainError(w, err)
		return
	}
	s.invalidateSummary(owner)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	_, st := s.owner(r)
	st.EnsureLoaded(r.Context())
	out := make([]accountDTO, 0, len(st.Accounts()))
	for _, a := range st.Accounts() {
		out = append(out, accountToDTO(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	owner, st := s.owner(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "owner required")
		return
	}

	var dto accountDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	st.EnsureLoaded(r.Context())
	created, err := st.AddAccount(r.Context(), dto.toCore())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to add account", log.FieldError, err)
		writeDomainError(w, err)
		return
	}
	s.invalidateSummary(owner)
	writeJSON(w, http.StatusCreated, accountToDTO(created))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	owner, st := s.owner(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "owner required")
		return
	}

	var dto accountDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	st.EnsureLoaded(r.Context())
	if err := st.EditAccount(r.Context(), r.PathValue("id"), dto.toCore()); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to update account", log.FieldError, err)
		writeDomainError(w, err)
		return
	}
	s.invalidateSummary(owner)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateAccountBalance(w http.ResponseWriter, r *http.Request) {
	owner, st := s.owner(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "owner required")
		return
	}

	var dto struct {
		BalanceCents int64 `json:"balance_cents"`
	}
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	st.EnsureLoaded(r.Context())
	if err := st.UpdateAccountBalance(r.Context(), r.PathValue("id"), core.Money{Cents: dto.BalanceCents}); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to update account balance", log.FieldError, err)
		writeDomainError(w, err)
		return
	}
	s.invalidateSummary(owner)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	owner, st := s.owner(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "owner required")
		return
	}

	st.EnsureLoaded(r.Context())
	if err := st.DeleteAccount(r.Context(), r.PathValue("id")); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to delete account", log.FieldError, err)
		writeDomainError(w, err)
		return
	}
	s.invalidateSummary(owner)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	_, st := s.owner(r)
	st.EnsureLoaded(r.Context())
	out := make([]debtDTO, 0, len(st.Debts()))
	for _, d := range st.Debts() {
		out = append(out, debtToDTO(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	owner, st := s.owner(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "owner required")
		return
	}

	var dto debtDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	debt, err := dto.toCore()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	st.EnsureLoaded(r.Context())
	created, err := st.AddDebt(r.Context(), debt)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to add debt", log.FieldError, err)
		writeDomainError(w, err)
		return
	}
	s.invalidateSummary(owner)
	writeJSON(w, http.StatusCreated, debtToDTO(created))
}

func (s *Server) handleUpdateDebt(w http.ResponseWriter, r *http.Request) {
	owner, st := s.owner(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "owner required")
		return
	}

	var dto debtPatchDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	patch, err := dto.toPatch()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	st.EnsureLoaded(r.Context())
	updated, err := st.UpdateDebt(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to update debt", log.FieldError, err)
		writeDomainError(w, err)
		return
	}
	s.invalidateSummary(owner)
	writeJSON(w, http.StatusOK, debtToDTO(updated))
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	owner, st := s.owner(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "owner required")
		return
	}

	st.EnsureLoaded(r.Context())
	if err := st.DeleteDebt(r.Context(), r.PathValue("id")); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to delete debt", log.FieldError, err)
		writeDomainError(w, err)
		return
	}
	s.invalidateSummary(owner)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	owner, st := s.owner(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "owner required")
		return
	}

	outcome := st.Refresh(r.Context())
	s.invalidateSummary(owner)
	writeJSON(w, http.StatusOK, refreshResponse{
		Complete: outcome.Complete(),
		Stale:    outcome.Stale,
		Errors:   outcomeErrors(outcome),
	})
}

type refreshResponse struct {
	Complete bool              `json:"complete"`
	Stale    bool              `json:"stale"`
	Errors   map[string]string `json:"errors,omitempty"`
}
