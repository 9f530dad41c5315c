package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avolut/retail-stock-service/config"
	"github.com/avolut/retail-stock-service/pkg/broker"
	"github.com/avolut/retail-stock-service/pkg/cache"
	"github.com/avolut/retail-stock-service/pkg/clock"
	"github.com/avolut/retail-stock-service/pkg/logger"
	"github.com/avolut/retail-stock-service/pkg/postgres"
	"github.com/avolut/retail-stock-service/pkg/search"

	batchRepoPkg "github.com/avolut/retail-stock-service/internal/batch/repository"
	batchUCPkg "github.com/avolut/retail-stock-service/internal/batch/usecase"

	availUCPkg "github.com/avolut/retail-stock-service/internal/availability/usecase"

	ledgerListenerPkg "github.com/avolut/retail-stock-service/internal/ledger/listener"
	ledgerRepoPkg "github.com/avolut/retail-stock-service/internal/ledger/repository"
	ledgerUCPkg "github.com/avolut/retail-stock-service/internal/ledger/usecase"

	resvRepoPkg "github.com/avolut/retail-stock-service/internal/reservation/repository"
	resvSweeperPkg "github.com/avolut/retail-stock-service/internal/reservation/sweeper"
	resvUCPkg "github.com/avolut/retail-stock-service/internal/reservation/usecase"

	prodRepoPkg "github.com/avolut/retail-stock-service/internal/product/repository"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     false,
		DisableStacktrace: false,
	}

	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	// 4. Initialize Repositories
	prodRepo := prodRepoPkg.NewPGRepository(db)
	ledgerRepo := ledgerRepoPkg.NewPGRepository(db)
	batchRepo := batchRepoPkg.NewPGRepository(db)
	resvRepo := resvRepoPkg.NewPGRepository(db)

	// 5. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 5.5 Initialize Kafka
	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.SalesTopic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()

	alertPublisher := broker.NewPublisher(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.AlertTopic,
	})
	defer alertPublisher.Close()
	appLogger.Info("Connected to Kafka",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("sales_topic", cfg.Kafka.SalesTopic),
		zap.String("alert_topic", cfg.Kafka.AlertTopic),
	)

	// 5.8 Initialize Elasticsearch
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Elasticsearch (movement search falls back to DB)", zap.Error(err))
		esClient = nil
	} else {
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	// 6. Initialize UseCases
	clk := clock.NewSystem()
	resvUC := resvUCPkg.NewReservationUseCase(resvRepo, prodRepo, ledgerRepo, redisClient, clk, appLogger)
	ledgerUC := ledgerUCPkg.NewLedgerUseCase(ledgerRepo, prodRepo, resvRepo, redisClient, esClient, alertPublisher, clk, appLogger)
	batchUC := batchUCPkg.NewBatchUseCase(batchRepo, prodRepo, clk, appLogger)
	availUC := availUCPkg.NewAvailabilityUseCase(prodRepo, ledgerRepo, resvRepo, clk, appLogger)

	// 6.5 Initialize Listener and Sweeper
	stockListener := ledgerListenerPkg.NewStockListener(kafkaConsumer, ledgerUC, batchUC, resvUC, availUC, appLogger)
	sweeper := resvSweeperPkg.New(resvUC, time.Duration(cfg.Sweeper.IntervalSeconds)*time.Second, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go stockListener.Start(ctx)
	go sweeper.Start(ctx)

	appLogger.Info("Stock engine worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down worker...")
	cancel()
	appLogger.Info("Worker stopped")
}
