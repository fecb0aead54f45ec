// Package notify pushes order events to the shop's Telegram chat.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	pkgerrors "github.com/mleong/mangobox-backend/pkg/errors"
)

const (
	defaultBaseURL             = "https://api.telegram.org"
	responseBodyReadLimit int64 = 1024
)

var errBotTokenRequired = errors.New("telegram bot token is required")

// Client wraps the Telegram Bot API sendMessage endpoint.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	botToken    string
	chatID      string
	maxAttempts int
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the Telegram API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithMaxAttempts sets how many sends are attempted before giving up.
func WithMaxAttempts(attempts int) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.maxAttempts = attempts
		}
	}
}

// NewClient builds the Telegram client for one bot and chat.
func NewClient(botToken, chatID string, opts ...Option) (*Client, error) {
	trimmedToken := strings.TrimSpace(botToken)
	if trimmedToken == "" {
		return nil, errBotTokenRequired
	}
	trimmedChat := strings.TrimSpace(chatID)
	if trimmedChat == "" {
		return nil, errors.New("telegram chat id is required")
	}

	client := &Client{
		botToken:    trimmedToken,
		chatID:      trimmedChat,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		maxAttempts: 3,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// SendMessage delivers a MarkdownV2 message to the configured chat, retrying
// transient failures with backoff.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "telegram client not configured")
	}
	if strings.TrimSpace(text) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "message text is required")
	}

	backoff := retry.WithMaxRetries(uint64(c.maxAttempts-1), retry.NewExponential(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.send(ctx, text)
		if err == nil {
			return nil
		}
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeDependency {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *Client) send(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id":    c.chatID,
		"text":       text,
		"parse_mode": "MarkdownV2",
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal telegram message")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(c.baseURL, "/"), c.botToken)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build telegram request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute telegram request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		wrapped := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError && resp.StatusCode != http.StatusTooManyRequests {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, wrapped, "telegram rejected message")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, wrapped, "telegram send failed")
	}
	return nil
}

// EscapeMarkdownV2 escapes every character Telegram's MarkdownV2 mode treats
// as syntax.
func EscapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch r {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
