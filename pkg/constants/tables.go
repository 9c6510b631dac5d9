package constants

// Table names - the fixed storage schema of the service.
// MySQL tables created by the database bootstrap on startup.
const (
	// Delivery log: every message the bot pushed (or failed to push)
	TableDelivery = "bot_delivery"

	// Calendar cache: economic calendar events fetched from the weekly feed
	TableCalendarEvent = "calendar_event"
)
