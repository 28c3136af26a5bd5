package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sidnevart/commercial-real-estate-analysis/models"
	"github.com/sidnevart/commercial-real-estate-analysis/scraper"
)

// Health returns a handler for GET /api/v1/health.
func Health(sc *scraper.Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  "healthy",
			Uptime:  sc.Uptime().Round(time.Second).String(),
			Runs:    sc.Runs(),
			Version: "0.1.0",
		})
	}
}
