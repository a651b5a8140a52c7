package main

import (
	"time"

	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	logger.Info("Starting recurring-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.OpenRepository(logger, cfg)
	defer repo.Close()

	processor := services.NewRecurringProcessor(repo, logger)

	ctx := cli.GracefulShutdown(logger, 10*time.Second, nil)

	logger.Info("Recurring expense processor configured", "interval", cfg.RecurringInterval)

	// First pass on startup, then on the ticker.
	if count, err := processor.ProcessDue(ctx, time.Now()); err != nil {
		logger.Error("Initial processing failed", log.FieldError, err)
	} else {
		logger.Info("Initial processing complete", "expenses_created", count)
	}

	ticker := time.NewTicker(cfg.RecurringInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Recurring worker stopped gracefully")
			return
		case now := <-ticker.C:
			count, err := processor.ProcessDue(ctx, now)
			if err != nil {
				logger.Error("Recurring processing failed", log.FieldError, err)
				continue
			}
			if count > 0 {
				logger.Info("Recurring processing complete", "expenses_created", count)
			}
		}
	}
}
