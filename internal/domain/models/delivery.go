package models

import (
	"time"
)

// Delivery represents one outbound message the bot attempted to send.
// Every scheduled run, command reply to the configured chat, and test
// message lands here, successful or not.
type Delivery struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`   // startup, heartbeat, digest, test, command
	ChatID      int64     `json:"chat_id"`
	Body        string    `json:"body"`
	Status      string    `json:"status"` // sent, failed
	Error       *string   `json:"error,omitempty"`
	CreatedDate time.Time `json:"created_date"`
}

// Sent reports whether the delivery reached Telegram
func (d *Delivery) Sent() bool {
	return d.Status == "sent"
}
