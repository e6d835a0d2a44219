package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moviemetric/backend/internal/observability"
)

// Metrics exposes the Prometheus text endpoint on the main router for
// deployments that do not run the standalone metrics listener.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.String(http.StatusNotFound, "metrics disabled")
			return
		}
		m.WriteHTTP(c.Writer, c.Request)
	}
}
