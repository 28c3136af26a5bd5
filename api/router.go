// Package api exposes the control surface of the extraction pipeline:
// a health probe and an on-demand parse trigger.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/sidnevart/commercial-real-estate-analysis/api/handler"
	"github.com/sidnevart/commercial-real-estate-analysis/api/middleware"
	"github.com/sidnevart/commercial-real-estate-analysis/cache"
	"github.com/sidnevart/commercial-real-estate-analysis/config"
	"github.com/sidnevart/commercial-real-estate-analysis/scraper"
	"github.com/sidnevart/commercial-real-estate-analysis/storage"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health stays outside auth so monitoring probes always work. store
// and cc may be nil, disabling persistence and result caching.
func NewRouter(sc *scraper.Scraper, store *storage.Store, cc *cache.Cache, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	v1.GET("/health", handler.Health(sc))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/parse", handler.Parse(sc, store, cc, cfg))

	return r
}
