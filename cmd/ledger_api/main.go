package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/the-giftist/funding-ledger/internal/api"
	"github.com/the-giftist/funding-ledger/internal/api/service"
	"github.com/the-giftist/funding-ledger/internal/config"
	"github.com/the-giftist/funding-ledger/internal/data/postgres"
	"github.com/the-giftist/funding-ledger/internal/domain/fees"
	"github.com/the-giftist/funding-ledger/internal/logger"
	"github.com/the-giftist/funding-ledger/internal/payments"
	"github.com/the-giftist/funding-ledger/internal/platform/messaging/producers"
	"github.com/the-giftist/funding-ledger/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("ledger_api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize database with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for webhook settlement events
	settlementProducer, err := producers.NewSettlementEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize settlement event Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	walletRepo := postgres.NewWalletRepository(log, postgresDB)
	contributionRepo := postgres.NewContributionRepository(log, postgresDB)
	catalogRepo := postgres.NewCatalogRepository(log, postgresDB)
	earningsRepo := postgres.NewEarningsRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)

	// Initialize payment provider clients
	checkoutClient := payments.NewHostedCheckoutClient(log, &cfg.Payments)
	tokenizedClient := payments.NewTokenizedClient(log, &cfg.Payments)

	// Initialize services
	walletService := service.NewWalletService(log, postgresDB, walletRepo, catalogRepo, outboxRepo, checkoutClient, cfg.Wallet)
	contributionService := service.NewContributionService(log, contributionRepo, catalogRepo, checkoutClient, tokenizedClient)
	goalService := service.NewGoalService(log, catalogRepo, earningsRepo, fees.Policy{
		PlatformRate:      cfg.Fees.PlatformRate,
		FreeTierThreshold: cfg.Fees.FreeTierThreshold,
	})

	// Initialize REST server
	server := api.NewServer(log, cfg, walletService, contributionService, goalService, settlementProducer)
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

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if err = settlementProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

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
