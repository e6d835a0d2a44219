package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/moviemetric/backend/internal/db"
	"github.com/moviemetric/backend/internal/observability"
	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/server"
	"github.com/moviemetric/backend/internal/temporalx/jobrun"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	Registry *jobrun.Registry
	Metrics  *observability.Metrics

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
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

	metrics := observability.Init(log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	clients := wireClients(log, metrics)
	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, reposet)
	registry := wireJobs(theDB, log, reposet, clients, metrics)
	handlerset := wireHandlers(theDB, log, serviceset, clients, registry)
	auth := wireMiddleware(log)

	router := server.NewRouter(server.RouterConfig{
		Log:              log,
		Metrics:          metrics,
		AuthMiddleware:   auth,
		HealthHandler:    handlerset.Health,
		MovieHandler:     handlerset.Movie,
		AnalyticsHandler: handlerset.Analytics,
		SearchHandler:    handlerset.Search,
		AdminHandler:     handlerset.Admin,
	})

	return &App{
		Log:      log,
		DB:       theDB,
		Router:   router,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		Clients:  clients,
		Registry: registry,
		Metrics:  metrics,
	}, nil
}

// Start launches the background pieces: tracing, the metrics listener and
// its collectors. Safe to call once.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.otelShutdown = observability.InitOTel(ctx, a.Log, observability.OtelConfig{
		ServiceName: "moviemetric",
		Environment: a.Cfg.Environment,
		Version:     a.Cfg.Version,
	})

	if a.Metrics != nil {
		a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
		a.Metrics.StartPostgresCollector(ctx, a.Log, a.DB)
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Cfg.RedisAddr)
	}
}

func (a *App) Run() error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(":" + a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.otelShutdown != nil {
		a.otelShutdown(context.Background())
		a.otelShutdown = nil
	}
	if a.Clients.Cache != nil {
		a.Clients.Cache.Close()
	}
	if a.Clients.Temporal != nil {
		a.Clients.Temporal.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
