package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/marketpulse/backend/pkg/constants"
)

// AppConfig is the process-wide configuration, read once at startup and
// never mutated afterwards.
type AppConfig struct {
	Port              int
	BotToken          string
	ChatID            int64
	ExternalURL       string // RENDER_EXTERNAL_URL, set by the hosting platform
	WebhookURL        string // ExternalURL + "/webhook", empty when ExternalURL is unset
	WebhookSecret     string
	AdminPasswordHash string
	CalendarFeedURL   string
	EventFilterRule   string
}

// DefaultEventFilterRule keeps USD events whose title matches one of the
// configured topic keywords
const DefaultEventFilterRule = `country == "USD" && MATCHES_ANY(title, topics)`

// LoadConfig reads and validates configuration from the environment.
// Missing required values or an invalid PORT are startup failures.
func LoadConfig() (*AppConfig, error) {
	port, err := ResolvePort(os.Getenv("PORT"))
	if err != nil {
		return nil, err
	}

	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if botToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	chatIDStr := os.Getenv("TELEGRAM_CHAT_ID")
	if chatIDStr == "" {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required")
	}
	chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID must be integer, got: %s", chatIDStr)
	}

	cfg := &AppConfig{
		Port:              port,
		BotToken:          botToken,
		ChatID:            chatID,
		ExternalURL:       strings.TrimRight(os.Getenv("RENDER_EXTERNAL_URL"), "/"),
		WebhookSecret:     os.Getenv("TELEGRAM_WEBHOOK_SECRET"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		CalendarFeedURL:   os.Getenv("CALENDAR_FEED_URL"),
		EventFilterRule:   os.Getenv("EVENT_FILTER_RULE"),
	}

	if cfg.ExternalURL != "" {
		cfg.WebhookURL = cfg.ExternalURL + "/webhook"
	}
	if cfg.CalendarFeedURL == "" {
		cfg.CalendarFeedURL = constants.DefaultCalendarFeedURL
	}
	if cfg.EventFilterRule == "" {
		cfg.EventFilterRule = DefaultEventFilterRule
	}

	return cfg, nil
}

// ResolvePort parses the PORT environment value. Empty means the default;
// anything else must be an integer in 1-65535.
func ResolvePort(raw string) (int, error) {
	if raw == "" {
		return constants.DefaultPort, nil
	}

	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("PORT must be integer, got: %s", raw)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("PORT must be in range 1-65535, got: %d", port)
	}

	return port, nil
}
