package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/moviemetric/backend/internal/clients/rediscache"
	"github.com/moviemetric/backend/internal/platform/logger"
	"github.com/moviemetric/backend/internal/services"
	"github.com/moviemetric/backend/internal/types"
)

type MovieHandler struct {
	log       *logger.Logger
	movieSvc  services.MovieService
	analytics services.AnalyticsService
	cache     rediscache.Cache
}

func NewMovieHandler(log *logger.Logger, movieSvc services.MovieService, analytics services.AnalyticsService, cache rediscache.Cache) *MovieHandler {
	return &MovieHandler{
		log:       log.With("handler", "MovieHandler"),
		movieSvc:  movieSvc,
		analytics: analytics,
		cache:     cache,
	}
}

// GET /api/movies?limit=&offset=
func (h *MovieHandler) ListMovies(c *gin.Context) {
	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)

	key := rediscache.Key("movies", "list", strconv.Itoa(limit), strconv.Itoa(offset))
	var cached []*types.Movie
	if h.cacheGet(c, key, &cached) {
		RespondOK(c, gin.H{"movies": cached, "limit": limit, "offset": offset})
		return
	}

	movies, err := h.movieSvc.List(c.Request.Context(), limit, offset)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "movies_list_failed", err)
		return
	}

	h.cacheSet(c, key, movies)
	RespondOK(c, gin.H{"movies": movies, "limit": limit, "offset": offset})
}

// GET /api/movies/trending?limit=
func (h *MovieHandler) GetTrending(c *gin.Context) {
	limit := intQuery(c, "limit", 20)

	key := rediscache.Key("movies", "trending", strconv.Itoa(limit))
	var cached []services.TrendingMovie
	if h.cacheGet(c, key, &cached) {
		RespondOK(c, gin.H{"trending": cached})
		return
	}

	trending, err := h.analytics.Trending(c.Request.Context(), limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "trending_failed", err)
		return
	}

	h.cacheSet(c, key, trending)
	RespondOK(c, gin.H{"trending": trending})
}

// GET /api/movies/:id
func (h *MovieHandler) GetMovie(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_movie_id", err)
		return
	}

	key := rediscache.Key("movies", "detail", strconv.Itoa(id))
	var cached types.Movie
	if h.cacheGet(c, key, &cached) {
		RespondOK(c, gin.H{"movie": &cached})
		return
	}

	movie, err := h.movieSvc.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "movie_get_failed", err)
		return
	}
	// Repos report a miss as (nil, nil), not as an error.
	if movie == nil {
		RespondError(c, http.StatusNotFound, "movie_not_found", fmt.Errorf("movie %d not found", id))
		return
	}

	h.cacheSet(c, key, movie)
	RespondOK(c, gin.H{"movie": movie})
}

// GET /api/movies/:id/recommendations
func (h *MovieHandler) GetRecommendations(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_movie_id", err)
		return
	}

	key := rediscache.Key("movies", "recommendations", strconv.Itoa(id))
	var cached types.MovieRecommendations
	if h.cacheGet(c, key, &cached) {
		RespondOK(c, gin.H{"recommendations": &cached})
		return
	}

	recs, err := h.movieSvc.Recommendations(c.Request.Context(), id)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "recommendations_failed", err)
		return
	}
	if recs == nil {
		RespondError(c, http.StatusNotFound, "recommendations_not_found", fmt.Errorf("no recommendations for movie %d", id))
		return
	}

	h.cacheSet(c, key, recs)
	RespondOK(c, gin.H{"recommendations": recs})
}

// cacheGet is a best-effort read. A cache error never fails the request.
func (h *MovieHandler) cacheGet(c *gin.Context, key string, out any) bool {
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

func (h *MovieHandler) cacheSet(c *gin.Context, key string, value any) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Set(c.Request.Context(), key, value, 0); err != nil {
		h.log.Warn("cache write failed", "key", key, "error", err)
	}
}

func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
