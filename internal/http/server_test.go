package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/identity"
	"fintrack/internal/log"
	"fintrack/internal/storage"
	"fintrack/internal/store"
)

func newTestServer(t *testing.T) (*Server, *storage.MemoryRepository) {
	t.Helper()
	repo := storage.NewMemoryRepository()
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	cfg := &config.Config{
		Port:              "0",
		SummaryCacheSize:  16,
		SummaryCacheTTL:   time.Minute,
		RequestsPerMinute: 10000,
	}
	registry := store.NewRegistry(repo, logger)
	srv := NewServer(cfg, registry, identity.NewHeaderProvider("X-Owner-ID"), logger)
	t.Cleanup(func() {
		srv.limiter.Stop()
		srv.cacheManager.Stop()
	})
	return srv, repo
}

func doRequest(t *testing.T, srv *Server, method, path, owner string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, buf)
	if owner != "" {
		req.Header.Set("X-Owner-ID", owner)
	}
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("body = %q, want ok", rec.Body.String())
	}
}

func TestWritesRequireOwner(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/expenses"},
		{http.MethodPut, "/api/expenses/e-1"},
		{http.MethodDelete, "/api/expenses/e-1"},
		{http.MethodPost, "/api/incomes"},
		{http.MethodPost, "/api/accounts"},
		{http.MethodPost, "/api/debts"},
		{http.MethodPost, "/api/categories/rename"},
		{http.MethodDelete, "/api/categories/food"},
		{http.MethodPost, "/api/refresh"},
	} {
		rec := doRequest(t, srv, tc.method, tc.path, "", map[string]any{})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", tc.method, tc.path, rec.Code)
		}
	}
}

func TestReadsServeEmptyStateWithoutOwner(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/api/expenses", "/api/incomes", "/api/accounts", "/api/debts"} {
		rec := doRequest(t, srv, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
		if got := decodeBody[[]json.RawMessage](t, rec); len(got) != 0 {
			t.Errorf("GET %s returned %d items, want 0", path, len(got))
		}
	}
}

func TestExpenseLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/expenses", "alice", expenseDTO{
		AmountCents: 1250,
		Category:    "food",
		Date:        "2026-03-10",
		Description: "lunch",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[expenseDTO](t, rec)
	if created.ID == "" {
		t.Fatal("created expense has no id")
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/expenses", "alice", nil)
	list := decodeBody[[]expenseDTO](t, rec)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("list = %+v, want the created expense", list)
	}

	rec = doRequest(t, srv, http.MethodPut, "/api/expenses/"+created.ID, "alice", expenseDTO{
		AmountCents: 1400,
		Category:    "food",
		Date:        "2026-03-10",
		Description: "lunch and coffee",
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("update status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, srv, http.MethodDelete, "/api/expenses/"+created.ID, "alice", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/expenses", "alice", nil)
	if list := decodeBody[[]expenseDTO](t, rec); len(list) != 0 {
		t.Errorf("list after delete = %+v, want empty", list)
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		dto  expenseDTO
	}{
		{"negative amount", expenseDTO{AmountCents: -1, Category: "food", Date: "2026-03-10"}},
		{"unknown category", expenseDTO{AmountCents: 100, Category: "yachts", Date: "2026-03-10"}},
		{"bad date", expenseDTO{AmountCents: 100, Category: "food", Date: "10/03/2026"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/api/expenses", "alice", tt.dto)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422 (body %s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestOwnersAreIsolated(t *testing.T) {
	srv, _ := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/expenses", "alice", expenseDTO{
		AmountCents: 900, Category: "transport", Date: "2026-03-01",
	})

	rec := doRequest(t, srv, http.MethodGet, "/api/expenses", "bob", nil)
	if list := decodeBody[[]expenseDTO](t, rec); len(list) != 0 {
		t.Errorf("bob sees alice's expenses: %+v", list)
	}
}

func TestDebtPartialUpdate(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/debts", "alice", debtDTO{
		Name:           "car loan",
		AmountCents:    500000,
		RemainingCents: 300000,
		Type:           "loan",
		DueDate:        "2027-01-15",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create debt status = %d, body = %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[debtDTO](t, rec)

	remaining := int64(250000)
	rec = doRequest(t, srv, http.MethodPut, "/api/debts/"+created.ID, "alice", debtPatchDTO{
		RemainingCents: &remaining,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body = %s", rec.Code, rec.Body.String())
	}
	updated := decodeBody[debtDTO](t, rec)
	if updated.RemainingCents != 250000 {
		t.Errorf("remaining = %d, want 250000", updated.RemainingCents)
	}
	if updated.Name != "car loan" || updated.AmountCents != 500000 {
		t.Errorf("untouched fields changed: %+v", updated)
	}
}

func TestDebtPatchUnknownIDIs404(t *testing.T) {
	srv, _ := newTestServer(t)

	name := "ghost"
	rec := doRequest(t, srv, http.MethodPut, "/api/debts/missing", "alice", debtPatchDTO{Name: &name})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSummaryReflectsMutations(t *testing.T) {
	srv, _ := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/incomes", "alice", incomeDTO{
		AmountCents: 200000, Source: "salary", Date: "2026-03-01",
	})
	doRequest(t, srv, http.MethodPost, "/api/expenses", "alice", expenseDTO{
		AmountCents: 50000, Category: "home", Date: "2026-03-05",
	})

	rec := doRequest(t, srv, http.MethodGet, "/api/summary", "alice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rec.Code)
	}
	sum := decodeBody[summaryResponse](t, rec)
	if sum.TotalIncomeCents != 200000 || sum.TotalExpensesCents != 50000 {
		t.Fatalf("totals = %+v, want income 200000 expenses 50000", sum)
	}

	// The cached summary must be dropped by the next mutation.
	doRequest(t, srv, http.MethodPost, "/api/expenses", "alice", expenseDTO{
		AmountCents: 25000, Category: "food", Date: "2026-03-06",
	})
	rec = doRequest(t, srv, http.MethodGet, "/api/summary", "alice", nil)
	sum = decodeBody[summaryResponse](t, rec)
	if sum.TotalExpensesCents != 75000 {
		t.Errorf("total expenses after second mutation = %d, want 75000", sum.TotalExpensesCents)
	}

	var food categoryShareDTO
	for _, share := range sum.Breakdown {
		if share.Category == "food" {
			food = share
		}
	}
	if food.AmountCents != 25000 {
		t.Errorf("food share = %+v, want 25000 cents", food)
	}
}

func TestCategoriesListCountsUsage(t *testing.T) {
	srv, _ := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/expenses", "alice", expenseDTO{
		AmountCents: 100, Category: "food", Date: "2026-03-01",
	})
	doRequest(t, srv, http.MethodPost, "/api/expenses", "alice", expenseDTO{
		AmountCents: 200, Category: "food", Date: "2026-03-02",
	})

	rec := doRequest(t, srv, http.MethodGet, "/api/categories", "alice", nil)
	cats := decodeBody[[]categoryDTO](t, rec)
	if len(cats) != 7 {
		t.Fatalf("got %d categories, want the full registry of 7", len(cats))
	}
	if cats[0].Name != "food" || cats[0].Count != 2 {
		t.Errorf("first category = %+v, want food with count 2", cats[0])
	}
	if cats[0].Icon == "" || cats[0].Color == "" {
		t.Errorf("category metadata missing: %+v", cats[0])
	}
}

func TestRenameCategoryMovesExpenses(t *testing.T) {
	srv, _ := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/expenses", "alice", expenseDTO{
		AmountCents: 100, Category: "shopping", Date: "2026-03-01",
	})

	rec := doRequest(t, srv, http.MethodPost, "/api/categories/rename", "alice",
		map[string]string{"from": "shopping", "to": "other"})
	if rec.Code != http.StatusOK {
		t.Fatalf("rename status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if moved := decodeBody[map[string]int64](t, rec); moved["moved"] != 1 {
		t.Errorf("moved = %v, want 1", moved)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/expenses", "alice", nil)
	list := decodeBody[[]expenseDTO](t, rec)
	if len(list) != 1 || list[0].Category != "other" {
		t.Errorf("list after rename = %+v, want category other", list)
	}
}

func TestRenameCategoryRejectsUnknownTarget(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/categories/rename", "alice",
		map[string]string{"from": "food", "to": "yachts"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestRefreshReportsOutcome(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/refresh", "alice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d", rec.Code)
	}
	out := decodeBody[refreshResponse](t, rec)
	if !out.Complete {
		t.Errorf("refresh outcome = %+v, want complete", out)
	}
}

func TestMalformedJSONIs400(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/expenses", bytes.NewReader([]byte("{not json")))
	req.Header.Set("X-Owner-ID", "alice")
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
