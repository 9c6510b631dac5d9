package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/marketpulse/backend/pkg/errors"
)

const defaultBaseURL = "https://api.telegram.org"

// Client is a minimal Telegram Bot API client covering the methods the
// service needs: sendMessage, setWebhook, getWebhookInfo, getMe.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client
type Option func(*Client)

// WithBaseURL overrides the API base URL (tests point this at httptest)
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Bot API client for the given bot token
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiResponse is the Bot API envelope: {"ok": bool, "result": ..., "description": ...}
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
}

// SendMessage sends a Markdown-formatted message to a chat
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) (*Message, error) {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}

	var msg Message
	if err := c.call(ctx, "sendMessage", payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SetWebhook registers the webhook URL with Telegram. secret may be empty;
// when set, Telegram echoes it back in the X-Telegram-Bot-Api-Secret-Token
// header on every webhook request.
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	payload := map[string]interface{}{
		"url": url,
	}
	if secret != "" {
		payload["secret_token"] = secret
	}

	var ok bool
	return c.call(ctx, "setWebhook", payload, &ok)
}

// GetWebhookInfo returns the current webhook status
func (c *Client) GetWebhookInfo(ctx context.Context) (*WebhookInfo, error) {
	var info WebhookInfo
	if err := c.call(ctx, "getWebhookInfo", map[string]interface{}{}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetMe returns the bot's own account, used as a startup credentials check
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var user User
	if err := c.call(ctx, "getMe", map[string]interface{}{}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// call POSTs a JSON payload to a Bot API method and decodes the result
func (c *Client) call(ctx context.Context, method string, payload interface{}, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.NewInternalError(fmt.Sprintf("marshal %s payload", method), err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.NewInternalError(fmt.Sprintf("build %s request", method), err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewExternalServiceError("telegram", fmt.Sprintf("%s request failed", method), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewExternalServiceError("telegram", fmt.Sprintf("read %s response", method), err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		return errors.NewExternalServiceError("telegram", fmt.Sprintf("decode %s response", method), err)
	}

	if !envelope.OK {
		return errors.NewExternalServiceError("telegram",
			fmt.Sprintf("%s rejected (code %d): %s", method, envelope.ErrorCode, envelope.Description), nil)
	}

	if result != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return errors.NewExternalServiceError("telegram", fmt.Sprintf("decode %s result", method), err)
		}
	}

	return nil
}
