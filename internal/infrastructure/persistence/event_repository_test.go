package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/marketpulse/backend/internal/domain/models"
)

func TestUpsertEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewEventRepository(db)

	date := time.Date(2026, 9, 4, 12, 30, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO calendar_event").
		WithArgs("Non-Farm Employment Change", "USD", date, "High", "182K", "175K").
		WillReturnResult(sqlmock.NewResult(0, 1))

	event := &models.CalendarEvent{
		Title:    "Non-Farm Employment Change",
		Country:  "USD",
		Date:     date,
		Impact:   "High",
		Forecast: "182K",
		Previous: "175K",
	}

	assert.NoError(t, repo.Upsert(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertAllStopsOnFirstFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewEventRepository(db)

	date := time.Date(2026, 9, 4, 12, 30, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO calendar_event").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO calendar_event").
		WillReturnError(assert.AnError)

	events := []models.CalendarEvent{
		{Title: "CPI m/m", Country: "USD", Date: date, Impact: "High"},
		{Title: "FOMC Statement", Country: "USD", Date: date.Add(2 * time.Hour), Impact: "High"},
		{Title: "Retail Sales m/m", Country: "USD", Date: date.Add(4 * time.Hour), Impact: "Medium"},
	}

	err = repo.UpsertAll(context.Background(), events)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetWindow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewEventRepository(db)

	from := time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	rows := sqlmock.NewRows([]string{"title", "country", "event_date", "impact", "forecast", "previous"}).
		AddRow("CPI m/m", "USD", from.Add(13*time.Hour), "High", "0.3%", "0.2%").
		AddRow("FOMC Statement", "USD", from.Add(19*time.Hour), "High", nil, nil)

	mock.ExpectQuery("WHERE event_date >= \\? AND event_date < \\?").
		WithArgs(from, to).
		WillReturnRows(rows)

	events, err := repo.GetWindow(context.Background(), from, to)
	assert.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, "CPI m/m", events[0].Title)
	assert.Equal(t, "0.3%", events[0].Forecast)
	assert.Equal(t, "", events[1].Forecast)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurgeBefore(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewEventRepository(db)

	cutoff := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("DELETE FROM calendar_event").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 17))

	removed, err := repo.PurgeBefore(context.Background(), cutoff)
	assert.NoError(t, err)
	assert.Equal(t, int64(17), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
