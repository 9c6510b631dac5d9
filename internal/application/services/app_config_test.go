package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marketpulse/backend/pkg/constants"
)

func TestResolvePortDefault(t *testing.T) {
	port, err := ResolvePort("")
	assert.NoError(t, err)
	assert.Equal(t, constants.DefaultPort, port)
}

func TestResolvePortValid(t *testing.T) {
	port, err := ResolvePort("3001")
	assert.NoError(t, err)
	assert.Equal(t, 3001, port)
}

func TestResolvePortInvalid(t *testing.T) {
	cases := []string{"abc", "0", "-1", "65536", "8080.5"}
	for _, raw := range cases {
		_, err := ResolvePort(raw)
		assert.Error(t, err, "PORT=%q should be rejected", raw)
	}
}

func TestLoadConfigRequiresToken(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "123456")

	_, err := LoadConfig()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
}

func TestLoadConfigRequiresIntegerChatID(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")

	_, err := LoadConfig()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_CHAT_ID must be integer")
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001234567890")
	t.Setenv("RENDER_EXTERNAL_URL", "")
	t.Setenv("CALENDAR_FEED_URL", "")
	t.Setenv("EVENT_FILTER_RULE", "")

	cfg, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, constants.DefaultPort, cfg.Port)
	assert.Equal(t, int64(-1001234567890), cfg.ChatID)
	assert.Empty(t, cfg.WebhookURL)
	assert.Equal(t, constants.DefaultCalendarFeedURL, cfg.CalendarFeedURL)
	assert.Equal(t, DefaultEventFilterRule, cfg.EventFilterRule)
}

func TestLoadConfigWebhookURL(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "123456")
	t.Setenv("RENDER_EXTERNAL_URL", "https://marketpulse.onrender.com/")

	cfg, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "https://marketpulse.onrender.com/webhook", cfg.WebhookURL)
}
