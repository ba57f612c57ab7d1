package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agrodata/pestreg/api/handler"
	"github.com/agrodata/pestreg/api/middleware"
	"github.com/agrodata/pestreg/cache"
	"github.com/agrodata/pestreg/config"
	"github.com/agrodata/pestreg/probe"
	"github.com/agrodata/pestreg/scraper"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(sc *scraper.Scraper, pr *probe.Prober, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health stays open so load balancers can poll it.
	v1.GET("/health", handler.Health(sc, pr, startTime))

	// Everything else goes through auth and rate limiting.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Synchronous search.
	protected.POST("/search", handler.Search(sc, cc))

	// Async search jobs.
	protected.POST("/search/async", handler.PostSearchAsync(sc))
	protected.GET("/search/:id", handler.GetSearch())

	return r
}
