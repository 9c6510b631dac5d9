package rest_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/marketpulse/backend/internal/application/services"
	"github.com/marketpulse/backend/internal/infrastructure/database"
	"github.com/marketpulse/backend/internal/infrastructure/persistence"
	"github.com/marketpulse/backend/internal/interfaces/middleware"
	"github.com/marketpulse/backend/internal/interfaces/rest"
	"github.com/marketpulse/backend/pkg/expression"
	"github.com/marketpulse/backend/pkg/telegram"
)

const fixtureChatID int64 = 777000

// restFixture runs the full route table against a fake Bot API and a
// sqlmock-backed database
type restFixture struct {
	router *gin.Engine
	svcMgr *services.ServiceManager
	mock   sqlmock.Sqlmock

	mu   sync.Mutex
	sent []string // texts captured from sendMessage calls
}

func (f *restFixture) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func (f *restFixture) expectDeliveryInserts(n int) {
	for i := 0; i < n; i++ {
		f.mock.ExpectExec("INSERT INTO bot_delivery").WillReturnResult(sqlmock.NewResult(0, 1))
	}
}

// newRestFixture builds the service graph and router. mutate, when non-nil,
// adjusts the config before the services are wired.
func newRestFixture(t *testing.T, mutate func(cfg *services.AppConfig)) *restFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &restFixture{}

	botAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var msg struct {
				Text string `json:"text"`
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
			f.mu.Lock()
			f.sent = append(f.sent, msg.Text)
			f.mu.Unlock()
			w.Write([]byte(`{"ok":true,"result":{"message_id":1,"chat":{"id":1,"type":"private"}}}`))
		case strings.HasSuffix(r.URL.Path, "/setWebhook"):
			w.Write([]byte(`{"ok":true,"result":true}`))
		case strings.HasSuffix(r.URL.Path, "/getWebhookInfo"):
			w.Write([]byte(`{"ok":true,"result":{"url":"https://bot.example.com/webhook","pending_update_count":2}}`))
		default:
			w.Write([]byte(`{"ok":true,"result":{}}`))
		}
	}))
	t.Cleanup(botAPI.Close)

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	mock.MatchExpectationsInOrder(false)
	f.mock = mock

	cfg := &services.AppConfig{
		Port:            8080,
		BotToken:        "test-token",
		ChatID:          fixtureChatID,
		ExternalURL:     "https://bot.example.com",
		WebhookURL:      "https://bot.example.com/webhook",
		CalendarFeedURL: "http://example.invalid/feed",
		EventFilterRule: services.DefaultEventFilterRule,
	}
	if mutate != nil {
		mutate(cfg)
	}

	conn := database.Wrap(db)
	deliveries := persistence.NewDeliveryRepository(db)
	events := persistence.NewEventRepository(db)

	client := telegram.NewClient(cfg.BotToken, telegram.WithBaseURL(botAPI.URL))
	tg := services.NewTelegramService(client, deliveries, cfg.ChatID)
	calendar := services.NewCalendarService(cfg.CalendarFeedURL, cfg.EventFilterRule, expression.NewEngine(), events)
	tasks := services.NewTaskService(tg, calendar)

	scheduler, err := services.NewSchedulerService(tasks)
	assert.NoError(t, err)

	bot := services.NewBotService(tg, calendar, tasks, scheduler, deliveries)

	f.svcMgr = &services.ServiceManager{
		Config:     cfg,
		DB:         conn,
		Deliveries: deliveries,
		Events:     events,
		Telegram:   tg,
		Calendar:   calendar,
		Tasks:      tasks,
		Scheduler:  scheduler,
		Bot:        bot,
	}

	healthHandler := rest.NewHealthHandler(f.svcMgr)
	webhookHandler := rest.NewWebhookHandler(f.svcMgr)
	adminHandler := rest.NewAdminHandler(f.svcMgr)

	router := gin.New()
	router.GET("/", healthHandler.Home)
	router.GET("/health", healthHandler.Health)
	router.POST("/webhook",
		middleware.VerifyWebhookSecret(cfg.WebhookSecret),
		webhookHandler.Receive)

	admin := router.Group("/api/admin")
	admin.POST("/login", adminHandler.Login)
	protected := admin.Group("")
	protected.Use(middleware.RequireAdmin())
	protected.POST("/trigger", adminHandler.Trigger)
	protected.POST("/set-webhook", adminHandler.SetWebhook)
	protected.GET("/webhook-info", adminHandler.WebhookInfo)
	protected.GET("/deliveries", adminHandler.Deliveries)

	f.router = router
	return f
}

// request performs an HTTP request against the fixture router and decodes
// the JSON response body
func (f *restFixture) request(t *testing.T, method, path string, body interface{}, headers map[string]string) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var resp map[string]interface{}
	if w.Body.Len() > 0 {
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w.Code, resp
}
