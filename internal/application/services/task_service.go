package services

import (
	"context"
	"fmt"
	"time"

	"github.com/marketpulse/backend/pkg/constants"
)

// TaskService implements the scheduled notification tasks: the startup
// notice, the hourly heartbeat, and the daily calendar digest.
type TaskService struct {
	telegram *TelegramService
	calendar *CalendarService
}

// NewTaskService creates a new TaskService
func NewTaskService(telegram *TelegramService, calendar *CalendarService) *TaskService {
	return &TaskService{
		telegram: telegram,
		calendar: calendar,
	}
}

// timeStamp formats a timestamp the way all bot messages render it
func timeStamp(t time.Time) string {
	return t.UTC().Format("15:04 02.01.2006")
}

// RunStartup announces that the service came up in webhook mode
func (s *TaskService) RunStartup(ctx context.Context) error {
	message := fmt.Sprintf("🤖 *Bot Started*\n⏰ %s\n\n✅ Webhook mode active", timeStamp(time.Now()))
	return s.telegram.Notify(ctx, constants.DeliveryKindStartup, message)
}

// RunHeartbeat sends the hourly "still alive" update
func (s *TaskService) RunHeartbeat(ctx context.Context) error {
	message := fmt.Sprintf("💓 *Hourly Update*\n⏰ %s\n\n✅ System is running", timeStamp(time.Now()))
	return s.telegram.Notify(ctx, constants.DeliveryKindHeartbeat, message)
}

// RunDigest refreshes the calendar cache and sends the upcoming-events digest
func (s *TaskService) RunDigest(ctx context.Context) error {
	cached, err := s.calendar.RefreshCache(ctx)
	if err != nil {
		return err
	}

	events, err := s.calendar.UpcomingEvents(ctx, 1)
	if err != nil {
		return err
	}

	message := FormatDigest(events)
	if cached > 0 || len(events) > 0 {
		message += fmt.Sprintf("\n\n🗂 %d events tracked this week", cached)
	}

	return s.telegram.Notify(ctx, constants.DeliveryKindDigest, message)
}

// RunTest sends a test message to the configured chat, used by /test and
// the admin trigger endpoint
func (s *TaskService) RunTest(ctx context.Context) error {
	message := fmt.Sprintf("🧪 *Test Message*\n⏰ %s", timeStamp(time.Now()))
	return s.telegram.Notify(ctx, constants.DeliveryKindTest, message)
}
