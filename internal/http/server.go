// Package http serves the JSON API over the finance store.
package http

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/config"
	"fintrack/internal/identity"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/store"
)

type Server struct {
	httpServer *http.Server
	registry   *store.Registry
	provider   identity.Provider
	logger     *log.Logger

	summaryCache *cache.LRUCache[summaryResponse]
	cacheManager *cache.Manager
	limiter      *ratelimit.Limiter

	shutdownOnce sync.Once
}

func NewServer(cfg *config.Config, registry *store.Registry, provider identity.Provider, logger *log.Logger) *Server {
	s := &Server{
		registry:     registry,
		provider:     provider,
		logger:       logger.WithComponent(log.ComponentHTTP),
		summaryCache: cache.NewLRUCache[summaryResponse](cfg.SummaryCacheSize, cfg.SummaryCacheTTL),
		cacheManager: cache.NewManager(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RequestsPerMinute,
		}),
	}
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(5 * time.Minute)

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	handler := trace.NewMiddleware(clientIP).Middleware(mux)
	handler = s.rateLimit(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/incomes", s.handleListIncomes)
	mux.HandleFunc("POST /api/incomes", s.handleCreateIncome)
	mux.HandleFunc("PUT /api/incomes/{id}", s.handleUpdateIncome)
	mux.HandleFunc("DELETE /api/incomes/{id}", s.handleDeleteIncome)

	mux.HandleFunc("GET /api/accounts", s.handleListAccounts)
	mux.HandleFunc("POST /api/accounts", s.handleCreateAccount)
	mux.HandleFunc("PUT /api/accounts/{id}", s.handleUpdateAccount)
	mux.HandleFunc("PUT /api/accounts/{id}/balance", s.handleUpdateAccountBalance)
	mux.HandleFunc("DELETE /api/accounts/{id}", s.handleDeleteAccount)

	mux.HandleFunc("GET /api/debts", s.handleListDebts)
	mux.HandleFunc("POST /api/debts", s.handleCreateDebt)
	mux.HandleFunc("PUT /api/debts/{id}", s.handleUpdateDebt)
	mux.HandleFunc("DELETE /api/debts/{id}", s.handleDeleteDebt)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories/rename", s.handleRenameCategory)
	mux.HandleFunc("DELETE /api/categories/{name}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
}

func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the background helpers.
// Safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logger.Info("Shutting down HTTP server")
		s.limiter.Stop()
		s.cacheManager.Stop()
		err = s.httpServer.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// owner resolves the request's owner and hands back its store. The empty
// owner maps to a signed-out store that serves empty collections.
func (s *Server) owner(r *http.Request) (string, *store.FinanceStore) {
	owner := s.provider.OwnerID(r)
	return owner, s.registry.ForOwner(owner)
}

// invalidateSummary drops the cached dashboard after any mutation.
func (s *Server) invalidateSummary(owner string) {
	s.summaryCache.Delete(owner)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
