package app

import (
	"gorm.io/gorm"

	"github.com/moviemetric/backend/internal/handlers"
	"github.com/moviemetric/backend/internal/middleware"
	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/temporalx"
	"github.com/moviemetric/backend/internal/temporalx/jobrun"
)

type Handlers struct {
	Health    *handlers.HealthHandler
	Movie     *handlers.MovieHandler
	Analytics *handlers.AnalyticsHandler
	Search    *handlers.SearchHandler
	Admin     *handlers.AdminHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, serviceset Services, clients Clients, registry *jobrun.Registry) Handlers {
	log.Info("Wiring handlers...")
	taskQueue := temporalx.LoadConfig().TaskQueue
	return Handlers{
		Health:    handlers.NewHealthHandler(log, db, clients.Cache, clients.Search),
		Movie:     handlers.NewMovieHandler(log, serviceset.Movie, serviceset.Analytics, clients.Cache),
		Analytics: handlers.NewAnalyticsHandler(log, serviceset.Analytics, clients.Cache),
		Search:    handlers.NewSearchHandler(log, clients.Search, clients.Cache),
		Admin:     handlers.NewAdminHandler(log, registry, clients.Temporal, taskQueue, clients.Cache),
	}
}

func wireMiddleware(log *logger.Logger) *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware(log)
}
