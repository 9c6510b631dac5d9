package telegram

// Wire types for the subset of the Telegram Bot API this service consumes.
// Field names follow the Bot API JSON exactly.

// Update represents an incoming update delivered to the webhook
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message represents a Telegram message
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Date      int64  `json:"date"`
	Text      string `json:"text,omitempty"`
}

// Chat represents a Telegram chat
type Chat struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
}

// User represents a Telegram user
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	Username  string `json:"username,omitempty"`
}

// WebhookInfo is the response of getWebhookInfo
type WebhookInfo struct {
	URL                string `json:"url"`
	PendingUpdateCount int    `json:"pending_update_count"`
	LastErrorMessage   string `json:"last_error_message,omitempty"`
}

// Command extracts the bot command from the message text ("/start@mybot arg"
// yields "/start"). Returns empty string when the message is not a command.
func (m *Message) Command() string {
	if m == nil || len(m.Text) == 0 || m.Text[0] != '/' {
		return ""
	}
	cmd := m.Text
	for i := 0; i < len(cmd); i++ {
		if cmd[i] == ' ' {
			cmd = cmd[:i]
			break
		}
	}
	// Strip the @botname suffix used in group chats
	for i := 0; i < len(cmd); i++ {
		if cmd[i] == '@' {
			cmd = cmd[:i]
			break
		}
	}
	return cmd
}
