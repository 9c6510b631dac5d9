package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marketpulse/backend/internal/application/services"
)

// HealthHandler serves the liveness and detailed health endpoints
type HealthHandler struct {
	svcMgr *services.ServiceManager
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(svcMgr *services.ServiceManager) *HealthHandler {
	return &HealthHandler{svcMgr: svcMgr}
}

// Home handles GET / - the basic liveness check
func (h *HealthHandler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"service":   "marketpulse",
		"mode":      "webhook",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Health handles GET /health - the detailed health check
func (h *HealthHandler) Health(c *gin.Context) {
	dbStatus := "ok"
	status := http.StatusOK
	if err := h.svcMgr.DB.PingContext(c.Request.Context()); err != nil {
		dbStatus = err.Error()
		status = http.StatusServiceUnavailable
	}

	scheduler := "inactive"
	if h.svcMgr.Scheduler.Running() {
		scheduler = "active"
	}

	nextRuns := make(map[string]string)
	for name, at := range h.svcMgr.Scheduler.NextRuns() {
		nextRuns[name] = at.UTC().Format(time.RFC3339)
	}

	c.JSON(status, gin.H{
		"status":      statusWord(status),
		"database":    dbStatus,
		"scheduler":   scheduler,
		"next_runs":   nextRuns,
		"chat_id":     h.svcMgr.Config.ChatID,
		"webhook_url": h.svcMgr.Config.WebhookURL,
	})
}

func statusWord(code int) string {
	if code == http.StatusOK {
		return "healthy"
	}
	return "degraded"
}
