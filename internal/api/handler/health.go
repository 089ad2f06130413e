package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports service liveness and which external integrations
// are configured, so a missing credential is visible before the first
// degraded run.
type HealthHandler struct {
	scraperConfigured bool
	models            []string
}

// NewHealthHandler creates a health handler. models lists the configured
// model names in chain order.
func NewHealthHandler(scraperConfigured bool, models []string) *HealthHandler {
	return &HealthHandler{
		scraperConfigured: scraperConfigured,
		models:            models,
	}
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":             "ok",
		"service":            "helio-keywords",
		"time":               time.Now().UTC().Format(time.RFC3339),
		"scraper_configured": h.scraperConfigured,
		"models":             h.models,
	})
}
