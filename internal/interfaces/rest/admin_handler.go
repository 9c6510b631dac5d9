package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marketpulse/backend/internal/application/services"
	"github.com/marketpulse/backend/pkg/auth"
	"github.com/marketpulse/backend/pkg/constants"
	"github.com/marketpulse/backend/pkg/errors"
)

// AdminHandler serves the operator endpoints: login, manual job triggers,
// webhook management, and the delivery log.
type AdminHandler struct {
	svcMgr *services.ServiceManager
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(svcMgr *services.ServiceManager) *AdminHandler {
	return &AdminHandler{svcMgr: svcMgr}
}

// Login handles POST /api/admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if !BindJSON(c, &req) {
		return
	}

	hash := h.svcMgr.Config.AdminPasswordHash
	if hash == "" {
		RespondAppError(c, errors.NewUnauthorizedError("admin access is not configured"))
		return
	}
	if !auth.VerifyPassword(req.Password, hash) {
		RespondAppError(c, errors.NewUnauthorizedError("invalid password"))
		return
	}

	token, err := auth.GenerateToken(auth.AdminSession{Subject: "operator"})
	if err != nil {
		RespondAppError(c, errors.NewInternalError("generate token", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Trigger handles POST /api/admin/trigger - force a scheduled job to run now
func (h *AdminHandler) Trigger(c *gin.Context) {
	var req struct {
		Job string `json:"job" binding:"required"`
	}
	if !BindJSON(c, &req) {
		return
	}

	if err := h.svcMgr.Scheduler.Trigger(c.Request.Context(), req.Job); err != nil {
		RespondAppError(c, errors.NewInternalError("trigger job", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		constants.FieldMessage: "Job triggered",
		"job":                  req.Job,
	})
}

// SetWebhook handles POST /api/admin/set-webhook - (re)register the webhook
// with Telegram using the configured external URL
func (h *AdminHandler) SetWebhook(c *gin.Context) {
	cfg := h.svcMgr.Config
	if cfg.WebhookURL == "" {
		RespondAppError(c, errors.NewValidationError("webhook_url",
			"RENDER_EXTERNAL_URL is not set, webhook URL unknown"))
		return
	}

	if err := h.svcMgr.Telegram.SetWebhook(c.Request.Context(), cfg.WebhookURL, cfg.WebhookSecret); err != nil {
		RespondAppError(c, err)
		return
	}

	info, err := h.svcMgr.Telegram.WebhookInfo(c.Request.Context())
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"webhook_url":          info.URL,
		"pending_update_count": info.PendingUpdateCount,
	})
}

// WebhookInfo handles GET /api/admin/webhook-info
func (h *AdminHandler) WebhookInfo(c *gin.Context) {
	info, err := h.svcMgr.Telegram.WebhookInfo(c.Request.Context())
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"webhook_url":          info.URL,
		"pending_update_count": info.PendingUpdateCount,
		"last_error_message":   info.LastErrorMessage,
	})
}

// Deliveries handles GET /api/admin/deliveries - the recent delivery log
func (h *AdminHandler) Deliveries(c *gin.Context) {
	deliveries, err := h.svcMgr.Deliveries.GetRecent(c.Request.Context(), 50)
	if err != nil {
		RespondAppError(c, errors.NewInternalError("load deliveries", err))
		return
	}

	counts, err := h.svcMgr.Deliveries.CountByStatus(c.Request.Context())
	if err != nil {
		RespondAppError(c, errors.NewInternalError("count deliveries", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deliveries": deliveries,
		"counts":     counts,
	})
}
