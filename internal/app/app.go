package app

import (
	"context"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/yungbote/workpulse-backend/internal/data/db"
	apphttp "github.com/yungbote/workpulse-backend/internal/http"
	"github.com/yungbote/workpulse-backend/internal/jobs/sweep"
	"github.com/yungbote/workpulse-backend/internal/observability"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
	"github.com/yungbote/workpulse-backend/internal/realtime"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *apphttp.Server
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
	SSEHub   *realtime.SSEHub
	Sweeper  *sweep.Sweeper
	Metrics  *observability.Metrics

	dbService    *db.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
	done         []<-chan struct{}
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)
	ctx := context.Background()

	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)
	metrics := observability.Init(log)

	dbs, err := db.New(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init db: %w", err)
	}
	if err := dbs.AutoMigrateAll(); err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := dbs.DB()

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, err
	}

	hub := realtime.NewSSEHub(log)
	reposet := wireRepos(theDB, log)

	serviceset, err := wireServices(ctx, log, cfg, theDB, reposet, clients)
	if err != nil {
		clients.Close(ctx)
		_ = dbs.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, theDB, clients, serviceset, hub)
	server := apphttp.NewServer(apphttp.RouterConfig{
		Log:                 log,
		ServiceName:         otelServiceName(cfg),
		AllowedOrigins:      cfg.AllowedOrigins,
		Metrics:             metrics,
		HealthHandler:       handlerset.Health,
		ActivityHandler:     handlerset.Activity,
		ConnectionHandler:   handlerset.Connection,
		WorkItemHandler:     handlerset.WorkItem,
		InsightHandler:      handlerset.Insight,
		NotificationHandler: handlerset.Notification,
		RealtimeHandler:     handlerset.Realtime,
	})

	sweeper := sweep.New(log, cfg.Sweep, serviceset.WorkPattern, serviceset.Connection, serviceset.Notification)

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       server,
		Cfg:          cfg,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		SSEHub:       hub,
		Sweeper:      sweeper,
		Metrics:      metrics,
		dbService:    dbs,
		otelShutdown: otelShutdown,
	}, nil
}

func otelServiceName(cfg Config) string {
	if !cfg.Otel.Enabled {
		return ""
	}
	return cfg.Otel.ServiceName
}

// Start launches the background work: the bus forwarder feeding the local
// hub, the pattern sweeper and the metrics collectors.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if err := a.Clients.Bus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
		cancel()
		a.cancel = nil
		return fmt.Errorf("start realtime forwarder: %w", err)
	}
	if a.Sweeper != nil {
		a.done = append(a.done, a.Sweeper.Start(ctx))
	}
	if a.Metrics != nil {
		a.Metrics.StartDBCollector(ctx, a.Log, a.DB)
		if a.Clients.Redis != nil {
			a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
		}
	}
	return nil
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("HTTP server listening", "addr", addr)
	return a.Server.Run(addr)
}

// Close stops background work, drains the HTTP server and releases clients.
func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			a.Log.Warn("HTTP shutdown", "error", err)
		}
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	for _, done := range a.done {
		select {
		case <-done:
		case <-ctx.Done():
		}
	}
	a.Clients.Close(ctx)
	if a.dbService != nil {
		_ = a.dbService.Close()
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("OTel shutdown", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
