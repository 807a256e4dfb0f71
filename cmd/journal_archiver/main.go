package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atm-ledger/internal/config"
	"github.com/atm-ledger/internal/data/mongo"
	"github.com/atm-ledger/internal/journal_archiver/consumer"
	"github.com/atm-ledger/internal/logger"
	"github.com/atm-ledger/internal/platform/messaging/consumers"
	"github.com/atm-ledger/internal/platform/messaging/producers"
	"github.com/atm-ledger/internal/platform/persistence"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("journal_archiver")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	log.Info("Starting Journal Archiver",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	journalRepo := mongo.NewJournalRepository(log, mongoDB.Database(), cfg.MongoDB.JournalCollection)
	if err := journalRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to prepare journal collection", "error", err)
		os.Exit(1)
	}

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}

	handler := consumer.NewJournalEventHandler(log.With("component", "journal_handler"), journalRepo, dlqProducer)

	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka, cfg.Kafka.EventsTopic)
	if err := kafkaConsumer.Subscribe(appCtx, handler.HandleMessage); err != nil {
		log.Error("Failed to subscribe to journal events", "error", err)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case <-kafkaConsumer.Done():
		log.Warn("Kafka consumer stopped unexpectedly")
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	select {
	case <-kafkaConsumer.Done():
		log.Info("Kafka consumer stopped")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	if err := kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}
	if err := dlqProducer.Close(); err != nil {
		log.Error("Error closing DLQ Kafka producer", "error", err)
	}
	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	log.Info("Journal Archiver shutdown completed")
}
