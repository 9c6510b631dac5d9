package services

import (
	"github.com/marketpulse/backend/internal/infrastructure/database"
	"github.com/marketpulse/backend/internal/infrastructure/persistence"
	"github.com/marketpulse/backend/pkg/expression"
	"github.com/marketpulse/backend/pkg/telegram"
)

// ServiceManager wires repositories and services together and is the single
// dependency handed to the HTTP handlers.
type ServiceManager struct {
	Config *AppConfig
	DB     *database.Connection

	Deliveries *persistence.DeliveryRepository
	Events     *persistence.EventRepository

	Telegram  *TelegramService
	Calendar  *CalendarService
	Tasks     *TaskService
	Scheduler *SchedulerService
	Bot       *BotService
}

// NewServiceManager builds the full service graph
func NewServiceManager(db *database.Connection, cfg *AppConfig) (*ServiceManager, error) {
	deliveries := persistence.NewDeliveryRepository(db.DB())
	events := persistence.NewEventRepository(db.DB())

	client := telegram.NewClient(cfg.BotToken)
	tg := NewTelegramService(client, deliveries, cfg.ChatID)

	engine := expression.NewEngine()
	calendar := NewCalendarService(cfg.CalendarFeedURL, cfg.EventFilterRule, engine, events)
	if err := calendar.ValidateRule(); err != nil {
		return nil, err
	}

	tasks := NewTaskService(tg, calendar)

	scheduler, err := NewSchedulerService(tasks)
	if err != nil {
		return nil, err
	}

	bot := NewBotService(tg, calendar, tasks, scheduler, deliveries)

	return &ServiceManager{
		Config:     cfg,
		DB:         db,
		Deliveries: deliveries,
		Events:     events,
		Telegram:   tg,
		Calendar:   calendar,
		Tasks:      tasks,
		Scheduler:  scheduler,
		Bot:        bot,
	}, nil
}
