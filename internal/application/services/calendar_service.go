package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/marketpulse/backend/internal/domain/models"
	"github.com/marketpulse/backend/internal/infrastructure/persistence"
	"github.com/marketpulse/backend/pkg/constants"
	"github.com/marketpulse/backend/pkg/errors"
	"github.com/marketpulse/backend/pkg/expression"
)

// CalendarService fetches the weekly economic calendar feed, filters it
// through the configured expression rule, and maintains the local event cache.
type CalendarService struct {
	feedURL    string
	filterRule string
	engine     *expression.Engine
	events     *persistence.EventRepository
	httpClient *http.Client
}

// NewCalendarService creates a new CalendarService
func NewCalendarService(feedURL, filterRule string, engine *expression.Engine, events *persistence.EventRepository) *CalendarService {
	return &CalendarService{
		feedURL:    feedURL,
		filterRule: filterRule,
		engine:     engine,
		events:     events,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// feedEvent is the wire shape of one feed entry. Dates are RFC3339 with the
// feed publisher's offset.
type feedEvent struct {
	Title    string `json:"title"`
	Country  string `json:"country"`
	Date     string `json:"date"`
	Impact   string `json:"impact"`
	Forecast string `json:"forecast"`
	Previous string `json:"previous"`
}

// ValidateRule compiles the filter rule against a representative event
// environment. A broken EVENT_FILTER_RULE is a startup failure.
func (s *CalendarService) ValidateRule() error {
	sample := models.CalendarEvent{Title: "CPI m/m", Country: "USD", Impact: "High"}
	if err := s.engine.Validate(s.filterRule, sample.ToEnv(constants.CalendarTopics)); err != nil {
		return errors.NewValidationError("event_filter_rule", err.Error())
	}
	return nil
}

// FetchEvents downloads and decodes the weekly feed
func (s *CalendarService) FetchEvents(ctx context.Context) ([]models.CalendarEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, errors.NewInternalError("build calendar feed request", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewExternalServiceError("calendar", "feed request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalServiceError("calendar",
			fmt.Sprintf("feed returned status %d", resp.StatusCode), nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewExternalServiceError("calendar", "read feed response", err)
	}

	var raw []feedEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.NewExternalServiceError("calendar", "decode feed response", err)
	}

	events := make([]models.CalendarEvent, 0, len(raw))
	for _, fe := range raw {
		date, err := time.Parse(time.RFC3339, fe.Date)
		if err != nil {
			// Entries without a parseable date can't be scheduled into a
			// digest window; skip them
			log.Printf("⚠️ Skipping feed entry with bad date %q: %s", fe.Date, fe.Title)
			continue
		}
		events = append(events, models.CalendarEvent{
			Title:    fe.Title,
			Country:  fe.Country,
			Date:     date.UTC(),
			Impact:   fe.Impact,
			Forecast: fe.Forecast,
			Previous: fe.Previous,
		})
	}

	return events, nil
}

// FilterEvents applies the configured filter rule to a batch of events.
// A rule evaluation error on one event fails the whole batch - a broken
// rule should be loud, not silently drop everything.
func (s *CalendarService) FilterEvents(events []models.CalendarEvent) ([]models.CalendarEvent, error) {
	var filtered []models.CalendarEvent
	for i := range events {
		env := events[i].ToEnv(constants.CalendarTopics)
		keep, err := s.engine.EvaluateBool(s.filterRule, env)
		if err != nil {
			return nil, errors.NewValidationError("event_filter_rule", err.Error())
		}
		if keep {
			filtered = append(filtered, events[i])
		}
	}
	return filtered, nil
}

// RefreshCache fetches the feed, filters it, and replaces the cache window:
// matching events are upserted and events older than one week are purged.
// Returns the number of events cached.
func (s *CalendarService) RefreshCache(ctx context.Context) (int, error) {
	events, err := s.FetchEvents(ctx)
	if err != nil {
		return 0, err
	}

	filtered, err := s.FilterEvents(events)
	if err != nil {
		return 0, err
	}

	if err := s.events.UpsertAll(ctx, filtered); err != nil {
		return 0, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -7)
	if removed, err := s.events.PurgeBefore(ctx, cutoff); err != nil {
		log.Printf("⚠️ Failed to purge stale calendar events: %v", err)
	} else if removed > 0 {
		log.Printf("🧹 Purged %d stale calendar events", removed)
	}

	return len(filtered), nil
}

// UpcomingEvents returns cached events for the next n days, starting at the
// top of the current hour
func (s *CalendarService) UpcomingEvents(ctx context.Context, days int) ([]models.CalendarEvent, error) {
	from := time.Now().UTC().Truncate(time.Hour)
	to := from.AddDate(0, 0, days)
	return s.events.GetWindow(ctx, from, to)
}

// TodayEvents returns cached events for the current UTC day
func (s *CalendarService) TodayEvents(ctx context.Context) ([]models.CalendarEvent, error) {
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.events.GetWindow(ctx, from, from.AddDate(0, 0, 1))
}

// FormatDigest renders a batch of events as a Markdown digest message
func FormatDigest(events []models.CalendarEvent) string {
	if len(events) == 0 {
		return "📅 *Economic Calendar*\n\nNo tracked events in this window."
	}

	var b strings.Builder
	b.WriteString("📅 *Economic Calendar*\n")
	for i := range events {
		e := &events[i]
		b.WriteString(fmt.Sprintf("\n⏰ %s — %s", e.Date.Format("Mon 15:04"), e.Title))
		if e.Impact != "" {
			b.WriteString(fmt.Sprintf(" (Impact: %s)", e.Impact))
		}
		if e.Forecast != "" {
			b.WriteString(fmt.Sprintf("\n    Forecast: %s", e.Forecast))
			if e.Previous != "" {
				b.WriteString(fmt.Sprintf(" | Previous: %s", e.Previous))
			}
		}
	}
	return b.String()
}

// SetFeedURL overrides the feed URL (tests)
func (s *CalendarService) SetFeedURL(url string) {
	s.feedURL = url
}
