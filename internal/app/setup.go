package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/rit-tender-bot/internal/engine"
	"github.com/mselser95/rit-tender-bot/internal/evaluation"
	"github.com/mselser95/rit-tender-bot/internal/events"
	"github.com/mselser95/rit-tender-bot/internal/lifecycle"
	"github.com/mselser95/rit-tender-bot/internal/planner"
	"github.com/mselser95/rit-tender-bot/internal/storage"
	"github.com/mselser95/rit-tender-bot/pkg/cache"
	"github.com/mselser95/rit-tender-bot/pkg/config"
	"github.com/mselser95/rit-tender-bot/pkg/healthprobe"
	"github.com/mselser95/rit-tender-bot/pkg/httpserver"
	"github.com/mselser95/rit-tender-bot/pkg/ritapi"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := healthprobe.New()
	bus := events.NewBus(64, logger)
	client := setupClient(cfg, logger)

	quotes, err := setupQuoteCache(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup quote cache: %w", err)
	}

	decisionStore, err := setupStorage(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	clock := systemClock{}
	manager := setupLifecycleManager(cfg, logger, client, clock, bus)
	eng := setupEngine(cfg, logger, client, manager, decisionStore, bus, clock)
	httpServer := setupHTTPServer(cfg, logger, healthChecker, eng, bus, quotes)

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		client:        client,
		engine:        eng,
		bus:           bus,
		quotes:        quotes,
		storage:       decisionStore,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupClient(cfg *config.Config, logger *zap.Logger) *ritapi.Client {
	return ritapi.NewClient(&ritapi.Config{
		BaseURL:      cfg.APIBaseURL,
		APIKey:       cfg.APIKey,
		Timeout:      cfg.APITimeout,
		MaxRetries:   cfg.APIMaxRetries,
		RetryBackoff: cfg.APIRetryBackoff,
		Logger:       logger,
	})
}

func setupQuoteCache(cfg *config.Config, logger *zap.Logger) (*cache.QuoteCache, error) {
	backing, err := cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	// Quotes live barely longer than the refresh cadence; stale data is
	// worse than a 404 for operator tooling.
	ttl := 3 * cfg.MonitorInterval
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return cache.NewQuoteCache(backing, ttl), nil
}

func setupStorage(cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	if cfg.StorageMode == "postgres" {
		pgStorage, err := storage.NewPostgresStorage(&storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres storage: %w", err)
		}
		return pgStorage, nil
	}

	return storage.NewConsoleStorage(logger), nil
}

func setupLifecycleManager(
	cfg *config.Config,
	logger *zap.Logger,
	client *ritapi.Client,
	clock lifecycle.Clock,
	bus *events.Bus,
) *lifecycle.Manager {
	return lifecycle.New(lifecycle.Config{
		Client:                 client,
		Clock:                  clock,
		Bus:                    bus,
		Logger:                 logger,
		DefaultOrderLimit:      cfg.DefaultOrderLimit,
		OrderLimits:            cfg.OrderLimits,
		TickSize:               cfg.TickSize,
		CaseDuration:           cfg.CaseDuration,
		NetPositionLimit:       cfg.NetPositionLimit,
		PatienceUrgent:         cfg.PatienceUrgent,
		PatienceModerate:       cfg.PatienceModerate,
		PatienceRelaxed:        cfg.PatienceRelaxed,
		Tier3TimeFloor:         cfg.Tier3TimeFloor,
		BookFetchDepth:         cfg.BookFetchDepth,
		StopLossThreshold:      cfg.StopLossThreshold,
		LargePositionThreshold: cfg.LargePositionThreshold,
	})
}

func setupEngine(
	cfg *config.Config,
	logger *zap.Logger,
	client *ritapi.Client,
	manager *lifecycle.Manager,
	decisionStore storage.Storage,
	bus *events.Bus,
	clock engine.Clock,
) *engine.Engine {
	evaluator := evaluation.New(evaluation.Config{
		WeightILS:                cfg.WeightILS,
		WeightSQS:                cfg.WeightSQS,
		WeightOBBS:               cfg.WeightOBBS,
		WeightPLR:                cfg.WeightPLR,
		AcceptThresholdHigh:      cfg.AcceptThresholdHigh,
		AcceptThresholdMedium:    cfg.AcceptThresholdMedium,
		AcceptThresholdLow:       cfg.AcceptThresholdLow,
		MarginalMinTimeRemaining: cfg.MarginalMinTimeRemaining,
		MarginalMinILS:           cfg.MarginalMinILS,
		NetPositionLimit:         cfg.NetPositionLimit,
		GrossPositionLimit:       cfg.GrossPositionLimit,
		TransactionCostPerShare:  cfg.TransactionCostPerShare,
		MinBookDepth:             cfg.MinBookDepth,
		MaxAcceptableSpread:      cfg.MaxAcceptableSpread,
		Logger:                   logger,
	})

	return engine.New(engine.Config{
		Client:             client,
		Evaluator:          evaluator,
		Planner:            planner.New(logger),
		Lifecycle:          manager,
		Store:              decisionStore,
		Bus:                bus,
		Clock:              clock,
		Logger:             logger,
		LoopInterval:       cfg.MainLoopInterval,
		MonitorInterval:    cfg.MonitorInterval,
		EmergencyThreshold: cfg.EmergencyTimeThreshold,
		MaxTenders:         cfg.MaxTenders,
		BookFetchDepth:     cfg.BookFetchDepth,
	})
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
	eng *engine.Engine,
	bus *events.Bus,
	quotes *cache.QuoteCache,
) *httpserver.Server {
	return httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Engine:        eng,
		Bus:           bus,
		Quotes:        quotes,
	})
}
