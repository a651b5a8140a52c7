package main

import (
	"context"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	logger.Info("Starting fintrack-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.OpenRepository(logger, cfg)
	defer repo.Close()

	var ledger export.Ledger
	if cfg.GoogleSpreadsheetID != "" {
		client, err := export.NewGoogleClient(context.Background(), cfg)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		ledger = client
		logger.Info("Google Sheets ledger initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		ledger = export.NewMemoryLedger()
		logger.Info("Sheets export disabled, using in-memory ledger")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	w := worker.NewExportWorker(repo, ledger, logger, cfg.ExportBatchSize)

	ctx := cli.GracefulShutdown(logger, 30*time.Second, nil)

	if err := w.Run(ctx, amqpClient, cfg.ExportInterval); err != nil && err != context.Canceled {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
