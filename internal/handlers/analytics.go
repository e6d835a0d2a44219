package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/moviemetric/backend/internal/clients/rediscache"
	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/services"
	"github.com/moviemetric/backend/internal/types"
)

type AnalyticsHandler struct {
	log       *logger.Logger
	analytics services.AnalyticsService
	cache     rediscache.Cache
}

func NewAnalyticsHandler(log *logger.Logger, analytics services.AnalyticsService, cache rediscache.Cache) *AnalyticsHandler {
	return &AnalyticsHandler{
		log:       log.With("handler", "AnalyticsHandler"),
		analytics: analytics,
		cache:     cache,
	}
}

// GET /api/analytics/top-genres
func (h *AnalyticsHandler) GetTopGenres(c *gin.Context) {
	key := rediscache.Key("analytics", "top-genres")
	var cached []services.TopGenre
	if h.cacheGet(c, key, &cached) {
		RespondOK(c, gin.H{"genres": cached})
		return
	}

	genres, err := h.analytics.TopGenres(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "top_genres_failed", err)
		return
	}

	h.cacheSet(c, key, genres)
	RespondOK(c, gin.H{"genres": genres})
}

// GET /api/analytics/ratings-by-decade
func (h *AnalyticsHandler) GetRatingsByDecade(c *gin.Context) {
	key := rediscache.Key("analytics", "ratings-by-decade")
	var cached []services.DecadeStats
	if h.cacheGet(c, key, &cached) {
		RespondOK(c, gin.H{"decades": cached})
		return
	}

	decades, err := h.analytics.RatingsByDecade(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "ratings_by_decade_failed", err)
		return
	}

	h.cacheSet(c, key, decades)
	RespondOK(c, gin.H{"decades": decades})
}

// GET /api/analytics/genre-stats?date=YYYY-MM-DD
// Defaults to today when no date is given.
func (h *AnalyticsHandler) GetGenreStats(c *gin.Context) {
	date := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_date", fmt.Errorf("date must be YYYY-MM-DD: %w", err))
			return
		}
		date = parsed
	}

	key := rediscache.Key("analytics", "genre-stats", date.Format("2006-01-02"))
	var cached []*types.GenreStatsDaily
	if h.cacheGet(c, key, &cached) {
		RespondOK(c, gin.H{"stats": cached, "date": date.Format("2006-01-02")})
		return
	}

	stats, err := h.analytics.GenreStatsForDate(c.Request.Context(), date)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "genre_stats_failed", err)
		return
	}

	h.cacheSet(c, key, stats)
	RespondOK(c, gin.H{"stats": stats, "date": date.Format("2006-01-02")})
}

func (h *AnalyticsHandler) cacheGet(c *gin.Context, key string, out any) bool {
	if h.cache == nil {
		return false
	}
	hit, err := h.cache.Get(c.Request.Context(), key, out)
	if err != nil {
		h.log.Warn("cache read failed", "key", key, "error", err)
		return false
	}
	return hit
}

func (h *AnalyticsHandler) cacheSet(c *gin.Context, key string, value any) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Set(c.Request.Context(), key, value, 0); err != nil {
		h.log.Warn("cache write failed", "key", key, "error", err)
	}
}
