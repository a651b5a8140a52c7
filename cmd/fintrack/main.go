package main

import (
	"context"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/identity"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	logger.Info("Starting fintrack")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.OpenRepository(logger, cfg)
	defer repo.Close()

	// Change events feed the ledger export worker. Without a broker the
	// pending scan in the worker still picks rows up.
	var storeOpts []store.Option
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change events",
				log.FieldError, err)
		} else {
			defer client.Close()
			storeOpts = append(storeOpts, store.WithPublisher(client))
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange)
		}
	} else {
		logger.Info("AMQP disabled, change events will not be published")
	}

	registry := store.NewRegistry(repo, logger, storeOpts...)

	var provider identity.Provider
	if cfg.StaticOwner != "" {
		provider = &identity.StaticProvider{Owner: cfg.StaticOwner}
	} else {
		provider = identity.NewHeaderProvider(cfg.OwnerHeader)
	}

	srv := apphttp.NewServer(cfg, registry, provider, logger)

	ctx := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	if err := srv.Start(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
