package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

const trendMonths = 6

type summaryResponse struct {
	TotalExpensesCents int64 `json:"total_expenses_cents"`
	TotalIncomeCents   int64 `json:"total_income_cents"`
	TotalBalanceCents  int64 `json:"total_balance_cents"`

	CurrentMonth monthSummaryDTO `json:"current_month"`

	Breakdown    []categoryShareDTO `json:"breakdown"`
	UrgentDebts  []debtDTO          `json:"urgent_debts"`
	RecentMoves  []expenseDTO       `json:"recent_transactions"`
	MonthlyTrend []monthPointDTO    `json:"monthly_trend"`
}

type monthSummaryDTO struct {
	Year          int    `json:"year"`
	Month         int    `json:"month"`
	IncomeCents   int64  `json:"income_cents"`
	ExpensesCents int64  `json:"expenses_cents"`
	BalanceCents  int64  `json:"balance_cents"`
	Status        string `json:"status"`
}

type categoryShareDTO struct {
	Category    string  `json:"category"`
	AmountCents int64   `json:"amount_cents"`
	Percent     float64 `json:"percent"`
}

type monthPointDTO struct {
	Year          int   `json:"year"`
	Month         int   `json:"month"`
	ExpensesCents int64 `json:"expenses_cents"`
	IncomeCents   int64 `json:"income_cents"`
}

// handleSummary serves the dashboard aggregate. Results are cached per
// owner; every mutation drops the owner's entry.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	owner, st := s.owner(r)

	if owner != "" {
		if cached, ok := s.summaryCache.Get(owner); ok {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	st.EnsureLoaded(r.Context())
	resp := buildSummary(st)

	if owner != "" {
		s.summaryCache.Set(owner, resp)
	}
	writeJSON(w, http.StatusOK, resp)
}

func buildSummary(st *store.FinanceStore) summaryResponse {
	month := st.CurrentMonthBalance()

	breakdown := make([]categoryShareDTO, 0, len(core.AllCategories()))
	for _, share := range st.CategoryBreakdown() {
		breakdown = append(breakdown, categoryShareDTO{
			Category:    string(share.Category),
			AmountCents: share.Amount.Cents,
			Percent:     share.Percent,
		})
	}

	urgent := make([]debtDTO, 0, urgentDebtCap)
	for _, d := range st.UrgentDebts() {
		urgent = append(urgent, debtToDTO(d))
	}

	recent := make([]expenseDTO, 0, recentMoveCap)
	for _, e := range st.RecentTransactions() {
		recent = append(recent, expenseToDTO(e))
	}

	trend := make([]monthPointDTO, 0, trendMonths)
	for _, p := range st.MonthlySeries(trendMonths) {
		trend = append(trend, monthPointDTO{
			Year:          p.Year,
			Month:         int(p.Month),
			ExpensesCents: p.Expenses.Cents,
			IncomeCents:   p.Income.Cents,
		})
	}

	return summaryResponse{
		TotalExpensesCents: st.TotalExpenses().Cents,
		TotalIncomeCents:   st.TotalIncome().Cents,
		TotalBalanceCents:  st.TotalBalance().Cents,
		CurrentMonth: monthSummaryDTO{
			Year:          month.Year,
			Month:         int(month.Month),
			IncomeCents:   month.Income.Cents,
			ExpensesCents: month.Expenses.Cents,
			BalanceCents:  month.Balance.Cents,
			Status:        string(month.Status),
		},
		Breakdown:    breakdown,
		UrgentDebts:  urgent,
		RecentMoves:  recent,
		MonthlyTrend: trend,
	}
}

const (
	urgentDebtCap = 5
	recentMoveCap = 5
)

type categoryDTO struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Count int    `json:"count"`
}

// handleListCategories returns the fixed category registry with per-owner
// usage counts.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	_, st := s.owner(r)
	st.EnsureLoaded(r.Context())

	out := make([]categoryDTO, 0, len(core.AllCategories()))
	for _, c := range core.AllCategories() {
		info, _ := core.CategoryMetadata(c)
		out = append(out, categoryDTO{
			Name:  string(c),
			Icon:  info.Icon,
			Color: info.Color,
			Count: st.CategoryCount(c),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	owner, st := s.owner(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "owner required")
		return
	}

	var req struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	st.EnsureLoaded(r.Context())
	moved, err := st.RenameCategory(r.Context(), core.Category(req.From), core.Category(req.To))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to rename category", log.FieldError, err)
		writeDomainError(w, err)
		return
	}
	s.invalidateSummary(owner)
	writeJSON(w, http.StatusOK, map[string]int64{"moved": moved})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	owner, st := s.owner(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "owner required")
		return
	}

	st.EnsureLoaded(r.Context())
	removed, err := st.DeleteCategory(r.Context(), core.Category(r.PathValue("name")))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to delete category", log.FieldError, err)
		writeDomainError(w, err)
		return
	}
	s.invalidateSummary(owner)
	writeJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}

func outcomeErrors(o store.FetchOutcome) map[string]string {
	out := map[string]string{}
	if o.Expenses != nil {
		out["expenses"] = o.Expenses.Error()
	}
	if o.Incomes != nil {
		out["incomes"] = o.Incomes.Error()
	}
	if o.Accounts != nil {
		out["accounts"] = o.Accounts.Error()
	}
	if o.Debts != nil {
		out["debts"] = o.Debts.Error()
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
