// Package cli holds the initialization shared by the fintrack binaries.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
	"fintrack/internal/store"
)

// SetupLogger builds the process logger and installs it as the slog
// default.
func SetupLogger() *log.Logger {
	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development. Missing files are fine;
// production gets its environment from the deployment.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and exits the process when
// it is invalid.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// Repository is the full storage surface the binaries open: the store's
// owner-scoped repository plus the worker-facing sync and recurrence
// methods. Both backends satisfy it.
type Repository interface {
	store.Repository

	GetExpense(ctx context.Context, id string) (string, core.Expense, error)
	ListPendingSyncExpenses(ctx context.Context, limit int) ([]storage.PendingExpense, error)
	MarkExpenseSynced(ctx context.Context, id string) error
	MarkExpenseSyncError(ctx context.Context, id string) error

	ListDueRecurringTemplates(ctx context.Context, today core.Date) ([]storage.OwnedExpense, error)
	AdvanceRecurrence(ctx context.Context, id string, lastOccurrence, nextDue core.Date) error

	Close() error
}

// OpenRepository opens the configured data backend or exits the process.
func OpenRepository(logger *log.Logger, cfg *config.Config) Repository {
	switch cfg.DataBackend {
	case "memory":
		logger.Info("Initialized memory backend")
		return storage.NewMemoryRepository()
	default:
		r, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository",
				log.FieldError, err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
		return r
	}
}

// GracefulShutdown cancels the returned context on SIGINT/SIGTERM and
// runs cleanup with a bounded timeout.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		cancel()
	}()

	return ctx
}
