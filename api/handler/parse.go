package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sidnevart/commercial-real-estate-analysis/cache"
	"github.com/sidnevart/commercial-real-estate-analysis/config"
	"github.com/sidnevart/commercial-real-estate-analysis/models"
	"github.com/sidnevart/commercial-real-estate-analysis/scraper"
	"github.com/sidnevart/commercial-real-estate-analysis/storage"
	"github.com/sidnevart/commercial-real-estate-analysis/webhook"
)

// Parse returns a handler for POST /api/v1/parse.
//
// One request is one full extraction run. A run that reaches a page
// but extracts nothing is a 200 with count 0; errors are reserved for
// runs that never produced an extractable page.
//
// Side channels are best-effort and never fail a run that already has
// results: offers go to the store when one is configured, and a
// run.completed/run.failed event goes to the webhook endpoint.
func Parse(sc *scraper.Scraper, store *storage.Store, cc *cache.Cache, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		cacheKey := cache.Key(cfg.Parser.DealType, cfg.Parser.EntryURLs)
		if cc != nil {
			if cached, hit := cc.Get(cacheKey, cfg.Cache.MaxAge); hit {
				c.JSON(http.StatusOK, models.ParseResponse{
					Success: true,
					Count:   len(cached.Offers),
					Stage:   cached.Stage,
					Offers:  cached.Offers,
				})
				return
			}
		}

		result, err := sc.FetchOffers(c.Request.Context())
		if err != nil {
			notify(cfg.Webhook, &webhook.Event{
				Type:      "run.failed",
				Timestamp: time.Now().Unix(),
				Error:     err.Error(),
			})
			respondError(c, err)
			return
		}

		if cc != nil {
			cc.Set(cacheKey, result)
		}

		if store != nil && len(result.Offers) > 0 {
			if saved, saveErr := store.SaveOffers(c.Request.Context(), result.Offers); saveErr != nil {
				slog.Error("offer persistence failed", "error", saveErr)
			} else {
				slog.Info("offers persisted", "count", saved)
			}
		}

		notify(cfg.Webhook, &webhook.Event{
			Type:      "run.completed",
			Timestamp: time.Now().Unix(),
			Stage:     result.Stage,
			Count:     len(result.Offers),
			Offers:    result.Offers,
		})

		c.JSON(http.StatusOK, models.ParseResponse{
			Success: true,
			Count:   len(result.Offers),
			Stage:   result.Stage,
			Offers:  result.Offers,
		})
	}
}

// notify delivers a webhook event when an endpoint is configured.
func notify(cfg config.WebhookConfig, event *webhook.Event) {
	if cfg.URL == "" {
		return
	}
	webhook.DeliverAsync(cfg.URL, cfg.Secret, event)
}

// respondError maps a ParseError to the correct HTTP status code and
// writes a structured JSON error response.
func respondError(c *gin.Context, err error) {
	parseErr, ok := err.(*models.ParseError)
	if !ok {
		parseErr = models.NewParseError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(parseErr), models.ParseResponse{
		Success: false,
		Offers:  []models.Offer{},
		Error:   parseErr.ToDetail(),
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ParseError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNoEntryPoint, models.ErrCodeBotDetected:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
