package models

import (
	"time"
)

// CalendarEvent is one entry of the weekly economic calendar feed.
// Title+Date form the natural key used for upserts.
type CalendarEvent struct {
	Title    string    `json:"title"`
	Country  string    `json:"country"`
	Date     time.Time `json:"date"`
	Impact   string    `json:"impact"`
	Forecast string    `json:"forecast,omitempty"`
	Previous string    `json:"previous,omitempty"`
}

// ToEnv converts the event into an expression-engine environment for
// filter rule evaluation.
func (e *CalendarEvent) ToEnv(topics []string) map[string]interface{} {
	return map[string]interface{}{
		"title":    e.Title,
		"country":  e.Country,
		"impact":   e.Impact,
		"forecast": e.Forecast,
		"previous": e.Previous,
		"topics":   topics,
	}
}
