package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/marketpulse/backend/internal/infrastructure/persistence"
	"github.com/marketpulse/backend/pkg/constants"
	"github.com/marketpulse/backend/pkg/telegram"
)

// BotService dispatches incoming webhook updates to command handlers.
// Unknown commands and plain messages are acknowledged and ignored.
type BotService struct {
	telegram   *TelegramService
	calendar   *CalendarService
	tasks      *TaskService
	scheduler  *SchedulerService
	deliveries *persistence.DeliveryRepository
}

// NewBotService creates a new BotService
func NewBotService(tg *TelegramService, calendar *CalendarService, tasks *TaskService,
	scheduler *SchedulerService, deliveries *persistence.DeliveryRepository) *BotService {
	return &BotService{
		telegram:   tg,
		calendar:   calendar,
		tasks:      tasks,
		scheduler:  scheduler,
		deliveries: deliveries,
	}
}

// HandleUpdate processes one webhook update. Only command messages produce
// a reply; everything else is dropped silently (the webhook still acks).
func (s *BotService) HandleUpdate(ctx context.Context, update *telegram.Update) error {
	if update == nil || update.Message == nil {
		return nil
	}

	command := update.Message.Command()
	if command == "" {
		return nil
	}

	log.Printf("💬 Command %s from chat %d", command, update.Message.Chat.ID)

	switch command {
	case "/start":
		return s.handleStart(ctx, update.Message)
	case "/help":
		return s.handleHelp(ctx, update.Message)
	case "/status":
		return s.handleStatus(ctx, update.Message)
	case "/test":
		return s.handleTest(ctx, update.Message)
	case "/id":
		return s.handleID(ctx, update.Message)
	case "/events":
		return s.handleEvents(ctx, update.Message)
	default:
		return nil
	}
}

func (s *BotService) handleStart(ctx context.Context, msg *telegram.Message) error {
	name := "there"
	if msg.From != nil && msg.From.FirstName != "" {
		name = msg.From.FirstName
	}
	reply := fmt.Sprintf(
		"👋 Hello %s!\n\n"+
			"🤖 Bot is running in webhook mode.\n"+
			"💬 Your Chat ID: `%d`\n\n"+
			"Use /help for available commands.",
		name, msg.Chat.ID)
	return s.telegram.Reply(ctx, msg.Chat.ID, reply)
}

func (s *BotService) handleHelp(ctx context.Context, msg *telegram.Message) error {
	reply := "📋 *Available Commands:*\n\n" +
		"/start - Start the bot\n" +
		"/help - Show this message\n" +
		"/status - Check bot status\n" +
		"/test - Send test message\n" +
		"/id - Get your chat ID\n" +
		"/events - Today's tracked calendar events"
	return s.telegram.Reply(ctx, msg.Chat.ID, reply)
}

func (s *BotService) handleStatus(ctx context.Context, msg *telegram.Message) error {
	schedulerState := "Inactive"
	if s.scheduler != nil && s.scheduler.Running() {
		schedulerState = "Active"
	}

	reply := fmt.Sprintf(
		"✅ *Bot Status*\n\n"+
			"⏰ Time: %s\n"+
			"📡 Mode: Webhook\n"+
			"🔄 Scheduler: %s\n"+
			"💬 Configured Chat: `%d`",
		timeStamp(time.Now()), schedulerState, s.telegram.ChatID())

	// Delivery counters are best effort; the status reply is still useful
	// when the database is briefly unavailable
	if counts, err := s.deliveries.CountByStatus(ctx); err == nil {
		reply += fmt.Sprintf("\n📤 Deliveries: %d sent, %d failed",
			counts[constants.DeliveryStatusSent], counts[constants.DeliveryStatusFailed])
	}

	return s.telegram.Reply(ctx, msg.Chat.ID, reply)
}

func (s *BotService) handleTest(ctx context.Context, msg *telegram.Message) error {
	if err := s.telegram.Reply(ctx, msg.Chat.ID, "🧪 Sending test message to configured chat..."); err != nil {
		return err
	}

	if err := s.tasks.RunTest(ctx); err != nil {
		return s.telegram.Reply(ctx, msg.Chat.ID, "❌ Failed to send test message. Check logs.")
	}
	return s.telegram.Reply(ctx, msg.Chat.ID, "✅ Test message sent!")
}

func (s *BotService) handleID(ctx context.Context, msg *telegram.Message) error {
	title := msg.Chat.Title
	if title == "" {
		title = "N/A"
	}
	reply := fmt.Sprintf(
		"📱 *Chat Information:*\n\n"+
			"🆔 Chat ID: `%d`\n"+
			"📋 Type: %s\n"+
			"👤 Title: %s",
		msg.Chat.ID, msg.Chat.Type, title)
	return s.telegram.Reply(ctx, msg.Chat.ID, reply)
}

func (s *BotService) handleEvents(ctx context.Context, msg *telegram.Message) error {
	events, err := s.calendar.TodayEvents(ctx)
	if err != nil {
		return s.telegram.Reply(ctx, msg.Chat.ID, "❌ Could not load calendar events. Check logs.")
	}
	return s.telegram.Reply(ctx, msg.Chat.ID, FormatDigest(events))
}
