package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"twonest/internal/amqp"
	"twonest/internal/cli"
	"twonest/internal/sheets"
	gsheet "twonest/internal/sheets/google"
	sheetsmem "twonest/internal/sheets/memory"
	"twonest/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting twonest-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	res := cli.OpenStore(logger, cfg)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Store close error", "error", err)
		}
	}()

	// Without a spreadsheet id the worker still drains the queue, but
	// rows land in an in-memory sink. Useful for local development.
	var writer sheets.TransactionWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		writer = sheetsmem.New()
		logger.Info("Google Sheets disabled - mirroring to memory sink")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPSyncQueue, "")
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	syncWorker := worker.NewSyncWorker(res.Store, writer)

	if err := syncWorker.SeedMirrored(ctx); err != nil {
		logger.Error("Failed to seed mirror set", "error", err)
		os.Exit(1)
	}

	// Periodic backlog pass in case AMQP messages are lost.
	go func() {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := syncWorker.ProcessBacklog(ctx); err != nil {
					logger.Error("Backlog pass failed", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	logger.Info("Consuming sync messages", "queue", cfg.AMQPSyncQueue)
	if err := amqpClient.ConsumeTransactionSync(ctx, syncWorker.HandleSyncMessage); err != nil && err != context.Canceled {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
