package constants

// Default values for process-wide configuration
const (
	// DefaultPort is used when the PORT environment variable is unset
	DefaultPort = 8080

	// DefaultCalendarFeedURL is the weekly economic calendar feed
	DefaultCalendarFeedURL = "https://nfs.faireconomy.media/ff_calendar_thisweek.json"

	// ScheduleCheckInterval is how often the scheduler wakes up, in seconds
	ScheduleCheckInterval = 30

	// ScheduleMaxRuntimeMins caps a single scheduled job run
	ScheduleMaxRuntimeMins = 5
)

// Schedules - cron expressions evaluated in UTC
const (
	// Hourly heartbeat at minute 0 (top of every hour)
	ScheduleHeartbeat = "0 * * * *"

	// Daily calendar digest
	ScheduleDigest = "0 12 * * *"
)

// HTTP header names
const (
	HeaderAuthorization = "Authorization"

	// HeaderTelegramSecret carries the webhook secret token set via setWebhook
	HeaderTelegramSecret = "X-Telegram-Bot-Api-Secret-Token"
)

// ContextKeyAdmin is the gin context key holding the authenticated admin session
const ContextKeyAdmin = "admin"
