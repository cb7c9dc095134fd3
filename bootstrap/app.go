// Package bootstrap wires the application together: logger, config,
// storage, caches, services and the HTTP API, plus the shared shutdown
// path. Nothing here contains business logic.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"travelrules/api"
	"travelrules/cache"
	"travelrules/config"
	"travelrules/core"
	"travelrules/search"
	"travelrules/service"
	"travelrules/storage"
)

// shutdownTimeout bounds how long in-flight requests may drain.
const shutdownTimeout = 10 * time.Second

// App holds every long-lived component of the travel rules service.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Sugar  *zap.SugaredLogger

	// Storage
	SQLite    *storage.SQLite
	Rules     *storage.RuleStorage
	Users     *storage.UserStorage
	Feedback  *storage.FeedbackStorage
	Analytics *storage.AnalyticsStorage

	// Caches
	RulesCache *cache.Cache[[]core.Rule]

	// Services
	Engine          *search.Engine
	RuleService     *service.RuleService
	UserService     *service.UserService
	StatsService    *service.StatsService
	FeedbackService *service.FeedbackService
	APIServer       *api.API

	shutdownCh chan struct{}
}

// NewApp creates a new application instance and initializes all components.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	app := &App{shutdownCh: make(chan struct{})}

	logger, sugar, err := InitLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger = logger
	app.Sugar = sugar

	sugar.Info("Travel rules service starting...")

	cfg, err := InitConfig(configPath, sugar)
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	sqlite, err := storage.NewSQLite(cfg.DataPaths.SQLitePath, sugar)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sqlite: %w", err)
	}
	app.SQLite = sqlite

	app.Rules = storage.NewRuleStorage(sqlite, sugar)
	app.Users = storage.NewUserStorage(sqlite, sugar)
	app.Feedback = storage.NewFeedbackStorage(sqlite, sugar)
	app.Analytics = storage.NewAnalyticsStorage(sqlite, sugar)

	app.RulesCache = cache.New[[]core.Rule](sugar, &cache.Config{
		Name:            "rules",
		DefaultTTL:      cfg.Cache.DefaultTTL,
		CleanupInterval: cfg.Cache.CleanupInterval,
	})

	app.Engine = search.NewEngine(app.Rules, sugar)
	app.RuleService = service.NewRuleService(app.Rules, app.Analytics, sugar)
	app.UserService = service.NewUserService(app.Users, app.Analytics, sugar)
	app.StatsService = service.NewStatsService(app.Rules, app.Analytics, app.RulesCache, cfg.Cache.PopularTTL, sugar)
	app.FeedbackService = service.NewFeedbackService(app.Feedback, app.Analytics, sugar)

	app.APIServer = api.New(cfg, app.Engine, app.RuleService, app.UserService, app.StatsService, app.FeedbackService, sugar)

	return app, nil
}

// Start launches the background sweeper and the HTTP server. The server
// runs in its own goroutine; a listener failure triggers shutdown.
func (a *App) Start(ctx context.Context) error {
	a.RulesCache.StartCleanup()

	go func() {
		if err := a.APIServer.Start(); err != nil {
			a.Sugar.Errorw("API server stopped", "error", err)
			a.signalShutdown()
		}
	}()

	a.Sugar.Info("All services started")
	return nil
}

// WaitForShutdown blocks until SIGINT/SIGTERM or an internal failure.
func (a *App) WaitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.Sugar.Infow("Received shutdown signal", "signal", sig)
	case <-a.shutdownCh:
		a.Sugar.Info("Internal shutdown requested")
	}
}

// Shutdown stops components in reverse start order: HTTP first so no new
// work arrives, then the cache sweeper, then the database.
func (a *App) Shutdown() {
	a.Sugar.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.APIServer != nil {
		if err := a.APIServer.Shutdown(ctx); err != nil {
			a.Sugar.Warnw("API shutdown failed", "error", err)
		}
	}
	if a.RulesCache != nil {
		a.RulesCache.Stop()
	}
	if a.SQLite != nil {
		if err := a.SQLite.Close(); err != nil {
			a.Sugar.Warnw("sqlite close failed", "error", err)
		}
	}

	a.Sugar.Info("Shutdown complete")
	_ = a.Logger.Sync()
}

func (a *App) signalShutdown() {
	select {
	case <-a.shutdownCh:
	default:
		close(a.shutdownCh)
	}
}
