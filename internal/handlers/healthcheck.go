package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/moviemetric/backend/internal/clients/meili"
	"github.com/moviemetric/backend/internal/clients/rediscache"
	"github.com/moviemetric/backend/internal/platform/logger"
)

const healthTimeout = 3 * time.Second

type HealthHandler struct {
	log    *logger.Logger
	db     *gorm.DB
	cache  rediscache.Cache
	search meili.Client
}

func NewHealthHandler(log *logger.Logger, db *gorm.DB, cache rediscache.Cache, search meili.Client) *HealthHandler {
	return &HealthHandler{
		log:    log.With("handler", "HealthHandler"),
		db:     db,
		cache:  cache,
		search: search,
	}
}

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	var mu sync.Mutex
	components := map[string]string{}
	report := func(name string, err error) error {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			components[name] = err.Error()
			return err
		}
		components[name] = "ok"
		return nil
	}

	// Plain errgroup, not WithContext: one failing component must not
	// cancel the remaining pings.
	var g errgroup.Group
	g.Go(func() error { return report("postgres", h.pingPostgres(ctx)) })
	if h.cache != nil {
		g.Go(func() error { return report("redis", h.cache.Ping(ctx)) })
	}
	if h.search != nil {
		g.Go(func() error { return report("meilisearch", h.search.Ping(ctx)) })
	}

	status := http.StatusOK
	if err := g.Wait(); err != nil {
		h.log.Warn("healthcheck degraded", "error", err)
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"components": components})
}

func (h *HealthHandler) pingPostgres(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
