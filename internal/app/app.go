package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/rit-tender-bot/internal/engine"
	"github.com/mselser95/rit-tender-bot/internal/events"
	"github.com/mselser95/rit-tender-bot/internal/storage"
	"github.com/mselser95/rit-tender-bot/pkg/cache"
	"github.com/mselser95/rit-tender-bot/pkg/config"
	"github.com/mselser95/rit-tender-bot/pkg/healthprobe"
	"github.com/mselser95/rit-tender-bot/pkg/httpserver"
	"github.com/mselser95/rit-tender-bot/pkg/ritapi"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	client        *ritapi.Client
	engine        *engine.Engine
	bus           *events.Bus
	quotes        *cache.QuoteCache
	storage       storage.Storage
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// systemClock is the production clock.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
