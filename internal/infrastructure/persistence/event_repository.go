package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/marketpulse/backend/internal/domain/models"
	"github.com/marketpulse/backend/pkg/constants"
)

// EventRepository handles database operations for the calendar event cache
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Upsert inserts or refreshes a calendar event keyed by (title, event_date)
func (r *EventRepository) Upsert(ctx context.Context, event *models.CalendarEvent) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (title, country, event_date, impact, forecast, previous)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE country = VALUES(country), impact = VALUES(impact),
			forecast = VALUES(forecast), previous = VALUES(previous)
	`, constants.TableCalendarEvent)

	_, err := r.db.ExecContext(ctx, query, event.Title, event.Country,
		event.Date.UTC(), event.Impact, event.Forecast, event.Previous)
	if err != nil {
		return fmt.Errorf("failed to upsert calendar event: %w", err)
	}

	return nil
}

// UpsertAll refreshes a batch of events; the first failure aborts
func (r *EventRepository) UpsertAll(ctx context.Context, events []models.CalendarEvent) error {
	for i := range events {
		if err := r.Upsert(ctx, &events[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetWindow returns cached events whose date falls in [from, to), oldest first
func (r *EventRepository) GetWindow(ctx context.Context, from, to time.Time) ([]models.CalendarEvent, error) {
	query := fmt.Sprintf(`
		SELECT title, country, event_date, impact, forecast, previous
		FROM %s
		WHERE event_date >= ? AND event_date < ?
		ORDER BY event_date ASC
	`, constants.TableCalendarEvent)

	rows, err := r.db.QueryContext(ctx, query, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar events: %w", err)
	}
	defer rows.Close()

	var events []models.CalendarEvent
	for rows.Next() {
		var e models.CalendarEvent
		var forecast, previous sql.NullString
		if err := rows.Scan(&e.Title, &e.Country, &e.Date, &e.Impact, &forecast, &previous); err != nil {
			return nil, fmt.Errorf("failed to scan calendar event: %w", err)
		}
		e.Forecast = forecast.String
		e.Previous = previous.String
		events = append(events, e)
	}

	return events, rows.Err()
}

// PurgeBefore deletes events older than the cutoff; returns rows removed.
// The feed is weekly, so anything older than the previous week is stale.
func (r *EventRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE event_date < ?`, constants.TableCalendarEvent)

	result, err := r.db.ExecContext(ctx, query, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge calendar events: %w", err)
	}

	return result.RowsAffected()
}
