package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agrodata/pestreg/models"
	"github.com/agrodata/pestreg/probe"
	"github.com/agrodata/pestreg/scraper"
)

// Health returns a handler for GET /api/v1/health.
//
// Reports pool utilisation and the reachability of the registration
// database. Status degrades when > 80% of pages are active or the target
// does not answer the probe.
func Health(sc *scraper.Scraper, pr *probe.Prober, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := sc.Stats()
		target := pr.Check(c.Request.Context())

		status := "healthy"
		if stats.MaxPages > 0 && stats.ActivePages > int(float64(stats.MaxPages)*0.8) {
			status = "degraded"
		}
		if !target.Reachable {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:    status,
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			PoolStats: stats,
			Target:    target,
			Version:   "0.1.0",
		})
	}
}
