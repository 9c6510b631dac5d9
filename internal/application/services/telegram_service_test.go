package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/marketpulse/backend/internal/infrastructure/persistence"
	"github.com/marketpulse/backend/pkg/constants"
	"github.com/marketpulse/backend/pkg/telegram"
)

func TestNotifyRecordsFailedDelivery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer server.Close()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO bot_delivery").
		WithArgs(sqlmock.AnyArg(), constants.DeliveryKindHeartbeat, testChatID, "💓",
			constants.DeliveryStatusFailed, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	client := telegram.NewClient("test-token", telegram.WithBaseURL(server.URL))
	tg := NewTelegramService(client, persistence.NewDeliveryRepository(db), testChatID)

	err = tg.Notify(context.Background(), constants.DeliveryKindHeartbeat, "💓")
	assert.Error(t, err, "the send failure surfaces after the delivery is logged")
	assert.Contains(t, err.Error(), "chat not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotifySurvivesLoggingFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true,"result":{"message_id":1,"chat":{"id":1,"type":"private"}}}`))
	}))
	defer server.Close()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO bot_delivery").WillReturnError(assert.AnError)

	client := telegram.NewClient("test-token", telegram.WithBaseURL(server.URL))
	tg := NewTelegramService(client, persistence.NewDeliveryRepository(db), testChatID)

	// A delivery-log write failure must not turn a successful send into an error
	assert.NoError(t, tg.Notify(context.Background(), constants.DeliveryKindTest, "🧪"))
}
