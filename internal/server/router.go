package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/moviemetric/backend/internal/handlers"
	"github.com/moviemetric/backend/internal/middleware"
	"github.com/moviemetric/backend/internal/observability"
	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/utils"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	AuthMiddleware *middleware.AuthMiddleware

	HealthHandler    *handlers.HealthHandler
	MovieHandler     *handlers.MovieHandler
	AnalyticsHandler *handlers.AnalyticsHandler
	SearchHandler    *handlers.SearchHandler
	AdminHandler     *handlers.AdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("moviemetric"))
	router.Use(middleware.RequestMetrics(cfg.Metrics))

	origins := strings.Split(utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173", cfg.Log), ",")
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	router.GET("/metrics", handlers.Metrics(cfg.Metrics))

	api := router.Group("/api")
	{
		api.GET("/movies", cfg.MovieHandler.ListMovies)
		api.GET("/movies/trending", cfg.MovieHandler.GetTrending)
		api.GET("/movies/:id", cfg.MovieHandler.GetMovie)
		api.GET("/movies/:id/recommendations", cfg.MovieHandler.GetRecommendations)

		api.GET("/analytics/top-genres", cfg.AnalyticsHandler.GetTopGenres)
		api.GET("/analytics/ratings-by-decade", cfg.AnalyticsHandler.GetRatingsByDecade)
		api.GET("/analytics/genre-stats", cfg.AnalyticsHandler.GetGenreStats)

		api.GET("/search", cfg.SearchHandler.Search)
	}

	// ===============
	// || Admin     ||
	// ===============
	admin := router.Group("/api/admin")
	admin.Use(cfg.AuthMiddleware.RequireAdmin())
	{
		admin.GET("/jobs", cfg.AdminHandler.ListJobTypes)
		admin.POST("/jobs/:type", cfg.AdminHandler.TriggerJob)
	}

	return router
}
