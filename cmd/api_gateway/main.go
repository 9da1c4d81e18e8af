package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/digimonpay/wallet-ledger/internal/api_gateway"
	"github.com/digimonpay/wallet-ledger/internal/api_gateway/service"
	"github.com/digimonpay/wallet-ledger/internal/config"
	"github.com/digimonpay/wallet-ledger/internal/data/mongo"
	"github.com/digimonpay/wallet-ledger/internal/data/postgres"
	"github.com/digimonpay/wallet-ledger/internal/engine"
	"github.com/digimonpay/wallet-ledger/internal/logger"
	"github.com/digimonpay/wallet-ledger/internal/outbox_poller"
	"github.com/digimonpay/wallet-ledger/internal/platform/messaging/producers"
	"github.com/digimonpay/wallet-ledger/internal/platform/persistence"
	"github.com/digimonpay/wallet-ledger/internal/rates"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for outbox record events
	recordProducer, err := producers.NewRecordEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize record event Kafka producer", "error", err)
		os.Exit(1)
	}

	// Build the exchange rate table from configuration
	entries, err := rates.ParseEntries(cfg.Rates.Table)
	if err != nil {
		log.Error("Failed to parse rate table", "error", err)
		os.Exit(1)
	}
	rateTable, err := rates.NewTable(rates.Entry{
		Code:       cfg.Rates.BaseCurrency,
		MinorUnits: int32(cfg.Rates.BaseMinorUnits),
	}, entries)
	if err != nil {
		log.Error("Failed to build rate table", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	accountRepo := postgres.NewAccountRepository(log, postgresDB)
	itemRepo := postgres.NewItemRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	recordRepo := mongo.NewRecordRepository(log, mongoDB.Database())

	// Initialize the ledger engine over the PostgreSQL store, bounded by an
	// ants worker pool
	ledgerStore := postgres.NewLedgerStore(log, postgresDB, accountRepo, outboxRepo, cfg.Engine.LockTimeout)
	failureRecorder := engine.NewOutboxFailureRecorder(outboxRepo, log)
	ledgerEngine := engine.NewLedgerEngine(ledgerStore, rateTable, failureRecorder, log)
	pooledEngine, err := engine.NewPooledEngine(ledgerEngine, engine.PoolConfig{Size: cfg.WorkerPool.Size}, log)
	if err != nil {
		log.Error("Failed to initialize engine worker pool", "error", err)
		os.Exit(1)
	}

	// Initialize services
	accountService := service.NewAccountService(accountRepo)
	itemService := service.NewItemService(itemRepo, accountRepo)
	transactionService := service.NewTransactionService(log, pooledEngine, itemRepo, recordRepo)
	exchangeService := service.NewExchangeService(log, rateTable)

	// Initialize the outbox poller that publishes committed records to Kafka
	eventPublisher := outbox_poller.NewEventPublisher(outboxRepo, recordProducer, log)
	poller := outbox_poller.NewPoller(&cfg.Outbox, outboxRepo, eventPublisher, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Start(appCtx)
	}()

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, api_gateway.Services{
		Account:     accountService,
		Item:        itemService,
		Transaction: transactionService,
		Exchange:    exchangeService,
	})
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context, stopping the poller
	cancelAppCtx()
	wg.Wait()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first so no new movements enter the engine
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Drain the engine worker pool
	log.Info("Shutting down engine worker pool", "running_workers", pooledEngine.Running())
	pooledEngine.Shutdown()

	// Shutdown postgres connection pool
	postgresDB.Close()

	if err = recordProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
