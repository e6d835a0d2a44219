package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/moviemetric/backend/internal/clients/meili"
	"github.com/moviemetric/backend/internal/clients/rediscache"
	"github.com/moviemetric/backend/internal/platform/logger"
)

const maxSearchLimit = 50

type SearchHandler struct {
	log    *logger.Logger
	search meili.Client
	cache  rediscache.Cache
}

func NewSearchHandler(log *logger.Logger, search meili.Client, cache rediscache.Cache) *SearchHandler {
	return &SearchHandler{
		log:    log.With("handler", "SearchHandler"),
		search: search,
		cache:  cache,
	}
}

// GET /api/search?q=&limit=
func (h *SearchHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		RespondError(c, http.StatusBadRequest, "missing_query", errors.New("q is required"))
		return
	}
	if h.search == nil {
		RespondError(c, http.StatusServiceUnavailable, "search_unavailable", errors.New("search index is not configured"))
		return
	}

	limit := intQuery(c, "limit", 20)
	if limit <= 0 || limit > maxSearchLimit {
		limit = 20
	}

	key := rediscache.Key("search", strconv.Itoa(limit), query)
	var cached meili.SearchResult
	if h.cache != nil {
		hit, err := h.cache.Get(c.Request.Context(), key, &cached)
		if err != nil {
			h.log.Warn("cache read failed", "key", key, "error", err)
		} else if hit {
			RespondOK(c, gin.H{"results": cached.Hits, "total": cached.EstimatedTotalHits})
			return
		}
	}

	res, err := h.search.Search(c.Request.Context(), query, int64(limit))
	if err != nil {
		RespondError(c, http.StatusBadGateway, "search_failed", err)
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(c.Request.Context(), key, res, 0); err != nil {
			h.log.Warn("cache write failed", "key", key, "error", err)
		}
	}
	RespondOK(c, gin.H{"results": res.Hits, "total": res.EstimatedTotalHits})
}
