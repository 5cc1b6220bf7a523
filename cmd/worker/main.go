package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sashabaranov/go-openai"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/dardania/billscan/internal/config"
	"github.com/dardania/billscan/internal/dedup"
	"github.com/dardania/billscan/internal/delivery"
	"github.com/dardania/billscan/internal/embedding"
	"github.com/dardania/billscan/internal/extraction"
	"github.com/dardania/billscan/internal/objstore"
	"github.com/dardania/billscan/internal/persist"
	"github.com/dardania/billscan/internal/pipeline"
	"github.com/dardania/billscan/internal/repository"
	"github.com/dardania/billscan/internal/worker"
	"github.com/dardania/billscan/pkg/database"
	"github.com/dardania/billscan/pkg/logging"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	// Local development credentials; missing file is fine
	_ = gotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting bill scan worker",
		zap.Int("port", cfg.Server.Port),
		zap.Int("max_concurrent", cfg.Worker.MaxConcurrent))

	db, err := database.New(database.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(context.Background(), cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories
	billRepo := repository.NewBillRepository(db.DB, logger)
	expenseRepo := repository.NewExpenseRepository(db.DB, logger)
	companyRepo := repository.NewCompanyRepository(db.DB, logger)
	auditRepo := repository.NewAuditRepository(db.DB, logger)

	// Pipeline stages
	aiClient := openai.NewClient(cfg.OpenAI.APIKey)
	extractor := extraction.NewClient(aiClient, cfg.OpenAI.Model, cfg.OpenAI.Temperature, cfg.OpenAI.MaxTokens, logger)
	embedder := embedding.NewClient(aiClient, cfg.Embedding.Model, cfg.Embedding.Dimensions, logger)
	store := objstore.NewLocalStore(cfg.Storage.BaseDir, logger)
	detector := dedup.NewPGDetector(db.DB, logger)
	committer := persist.NewCommitter(db, billRepo, expenseRepo, companyRepo, auditRepo, logger)

	processor := pipeline.NewProcessor(
		billRepo,
		store,
		extractor,
		embedder,
		detector,
		dedup.Threshold(cfg.Dedup.SimilarityThreshold),
		committer,
		cfg.Worker.ProcessTimeout,
		logger,
	)

	// Delivery surfaces: HTTP push plus an in-process queue
	retry := delivery.NewRetryStrategy(cfg.Worker.MaxAttempts)
	queue := delivery.NewQueue(cfg.Worker.MaxConcurrent*16, logger)
	subscriber := delivery.NewSubscriber(queue, processor, retry, cfg.Worker.MaxConcurrent, logger)

	pushHandler := delivery.NewPushHandler(processor, logger)
	server := delivery.NewServer(delivery.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, pushHandler, logger)

	manager := worker.NewManager(logger)
	manager.Register(subscriber, server)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := manager.StartAll(ctx); err != nil {
		logger.Fatal("Failed to start workers", zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	cancel()
	queue.Close()
	manager.StopAll()
	logger.Info("Worker exited")
}
