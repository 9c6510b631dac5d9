package services

import (
	"context"
	"fmt"
	"log"

	"github.com/marketpulse/backend/internal/domain/models"
	"github.com/marketpulse/backend/internal/infrastructure/persistence"
	"github.com/marketpulse/backend/pkg/constants"
	"github.com/marketpulse/backend/pkg/telegram"
)

// TelegramService sends messages through the Bot API and records every
// attempt in the delivery log.
type TelegramService struct {
	client     *telegram.Client
	deliveries *persistence.DeliveryRepository
	chatID     int64
}

// NewTelegramService creates a new TelegramService
func NewTelegramService(client *telegram.Client, deliveries *persistence.DeliveryRepository, chatID int64) *TelegramService {
	return &TelegramService{
		client:     client,
		deliveries: deliveries,
		chatID:     chatID,
	}
}

// ChatID returns the configured notification chat
func (s *TelegramService) ChatID() int64 {
	return s.chatID
}

// Notify sends text to the configured chat and logs the outcome under the
// given delivery kind. The send error is returned after logging.
func (s *TelegramService) Notify(ctx context.Context, kind, text string) error {
	return s.sendAndRecord(ctx, kind, s.chatID, text)
}

// Reply sends text to an arbitrary chat (command replies) and logs it
func (s *TelegramService) Reply(ctx context.Context, chatID int64, text string) error {
	return s.sendAndRecord(ctx, constants.DeliveryKindCommand, chatID, text)
}

func (s *TelegramService) sendAndRecord(ctx context.Context, kind string, chatID int64, text string) error {
	if !constants.IsValidDeliveryKind(kind) {
		return fmt.Errorf("unknown delivery kind: %s", kind)
	}

	_, sendErr := s.client.SendMessage(ctx, chatID, text)

	delivery := &models.Delivery{
		Kind:   kind,
		ChatID: chatID,
		Body:   text,
		Status: constants.DeliveryStatusSent,
	}
	if sendErr != nil {
		msg := sendErr.Error()
		delivery.Status = constants.DeliveryStatusFailed
		delivery.Error = &msg
	}

	if _, err := s.deliveries.Record(ctx, delivery); err != nil {
		// The message is already out (or failed); a logging failure must not
		// mask the send result
		log.Printf("⚠️ Failed to record %s delivery: %v", kind, err)
	}

	if sendErr != nil {
		log.Printf("❌ Failed to send %s message: %v", kind, sendErr)
		return sendErr
	}

	preview := text
	if len(preview) > 50 {
		preview = preview[:50]
	}
	log.Printf("✅ Message sent (%s): %s...", kind, preview)
	return nil
}

// SetWebhook registers the webhook URL with Telegram
func (s *TelegramService) SetWebhook(ctx context.Context, url, secret string) error {
	return s.client.SetWebhook(ctx, url, secret)
}

// WebhookInfo returns the current webhook registration state
func (s *TelegramService) WebhookInfo(ctx context.Context) (*telegram.WebhookInfo, error) {
	return s.client.GetWebhookInfo(ctx)
}

// BotInfo returns the bot account, used as a startup credentials check
func (s *TelegramService) BotInfo(ctx context.Context) (*telegram.User, error) {
	return s.client.GetMe(ctx)
}
