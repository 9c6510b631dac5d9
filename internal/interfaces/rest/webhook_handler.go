package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marketpulse/backend/internal/application/services"
	"github.com/marketpulse/backend/pkg/telegram"
)

// WebhookHandler receives Telegram updates
type WebhookHandler struct {
	svcMgr *services.ServiceManager
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(svcMgr *services.ServiceManager) *WebhookHandler {
	return &WebhookHandler{svcMgr: svcMgr}
}

// Receive handles POST /webhook. Telegram retries undelivered updates, so
// the handler acks with 200 whenever the update was at least decoded.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var update telegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	if err := h.svcMgr.Bot.HandleUpdate(c.Request.Context(), &update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
