package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/atm-ledger/internal/api_gateway"
	"github.com/atm-ledger/internal/api_gateway/service"
	"github.com/atm-ledger/internal/config"
	"github.com/atm-ledger/internal/data/postgres"
	"github.com/atm-ledger/internal/data/redis"
	"github.com/atm-ledger/internal/logger"
	"github.com/atm-ledger/internal/platform/messaging/producers"
	"github.com/atm-ledger/internal/platform/persistence"
	"github.com/atm-ledger/internal/transaction_processor/components"
	"github.com/atm-ledger/internal/transaction_processor/outbox_poller"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("atm_service")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	log.Info("Starting ATM service",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Runs migrations, including the demo seed, before opening the pool
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	redisClient, err := redis.NewClient(appCtx, &cfg.Redis)
	if err != nil {
		log.Error("Failed to initialize Redis", "error", err)
		os.Exit(1)
	}

	eventProducer, err := producers.NewEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize Kafka event producer", "error", err)
		os.Exit(1)
	}

	repos := components.Repositories{
		Accounts:     postgres.NewAccountRepository(log, postgresDB),
		Machine:      postgres.NewMachineRepository(log, postgresDB),
		Transactions: postgres.NewTransactionRepository(log, postgresDB),
		Outbox:       postgres.NewOutboxRepository(log, postgresDB),
	}
	atm := components.NewATM(postgresDB, repos, log, cfg)

	sessionStore := redis.NewSessionStore(redisClient, cfg.Redis.KeyPrefix, cfg.ATM.SessionTTL, log.With("component", "sessions"))
	server := api_gateway.NewServer(log, cfg, api_gateway.Services{
		Sessions:     service.NewSessionService(log, atm.Authenticator, sessionStore),
		Accounts:     service.NewAccountService(repos.Accounts, repos.Transactions),
		Transactions: service.NewTransactionService(log, repos.Accounts, atm.Processor, atm.Receipts),
		Technician:   atm.Technician,
	})

	poller := outbox_poller.NewPoller(
		&cfg.Outbox,
		repos.Outbox,
		outbox_poller.NewKafkaEventPublisher(repos.Outbox, eventProducer, log.With("component", "event_publisher")),
		log.With("component", "outbox_poller"),
	)

	errChan := make(chan error, 1)
	var wg sync.WaitGroup

	go func() {
		if err := server.Start(); err != nil {
			errChan <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Start(appCtx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case serviceErr = <-errChan:
		log.Error("Service error occurred", "error", serviceErr)
	}

	log.Info("Starting graceful shutdown...")

	// Stop taking requests first so no operation starts after the pool is released
	if err := server.Stop(context.Background(), cfg.Server.ShutdownTimeout); err != nil {
		log.Error("Error stopping HTTP server", "error", err)
	}

	atm.Shutdown()
	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()
	select {
	case <-wgChan:
		log.Info("Outbox poller stopped")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	if err := eventProducer.Close(); err != nil {
		log.Error("Error closing Kafka event producer", "error", err)
	}
	if err := redisClient.Close(); err != nil {
		log.Error("Error closing Redis client", "error", err)
	}
	postgresDB.Close()

	if serviceErr != nil {
		log.Error("ATM service shutdown with errors", "error", serviceErr)
		os.Exit(1)
	}
	log.Info("ATM service shutdown completed successfully")
}
