package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marketpulse/backend/pkg/constants"
)

// VerifyWebhookSecret rejects webhook requests whose
// X-Telegram-Bot-Api-Secret-Token header does not match the secret the
// service registered via setWebhook. With an empty secret the check is
// disabled (Telegram sends no header in that case).
func VerifyWebhookSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		got := c.GetHeader(constants.HeaderTelegramSecret)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid webhook secret"})
			c.Abort()
			return
		}

		c.Next()
	}
}
