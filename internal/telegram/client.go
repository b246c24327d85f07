// Package telegram is a minimal Bot API client: reading recent channel
// history and posting text messages.
//
// The bot token is passed per call because shop settings can change at
// runtime. Errors never include the token.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// UpdatesLimit is how many recent updates GetUpdates requests.
const UpdatesLimit = 100

var (
	// ErrNotConfigured is returned when the token or chat id is empty.
	ErrNotConfigured = errors.New("telegram bot is not configured")

	// ErrAPI wraps an unsuccessful Bot API response.
	ErrAPI = errors.New("telegram API error")
)

// Message is a chat message or channel post.
type Message struct {
	MessageID int64  `json:"message_id"`
	Date      int64  `json:"date"`
	Text      string `json:"text"`
}

// Update is one entry of the getUpdates result.
type Update struct {
	UpdateID    int64    `json:"update_id"`
	Message     *Message `json:"message,omitempty"`
	ChannelPost *Message `json:"channel_post,omitempty"`
}

// Post returns the message or channel post carried by u, if any.
func (u Update) Post() *Message {
	if u.Message != nil {
		return u.Message
	}
	return u.ChannelPost
}

type envelope[T any] struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      T      `json:"result"`
}

// Client calls the Bot API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client. An empty baseURL means DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetUpdates returns up to UpdatesLimit recent message and channel-post
// updates visible to the bot.
func (c *Client) GetUpdates(ctx context.Context, token string) ([]Update, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("limit", fmt.Sprint(UpdatesLimit))
	q.Set("allowed_updates", `["message","channel_post"]`)

	var env envelope[[]Update]
	if err := c.call(ctx, token, "getUpdates", q, &env); err != nil {
		return nil, err
	}
	return env.Result, nil
}

// SendMessage posts text to chatID.
func (c *Client) SendMessage(ctx context.Context, token, chatID, text string) error {
	token, chatID = strings.TrimSpace(token), strings.TrimSpace(chatID)
	if token == "" || chatID == "" {
		return ErrNotConfigured
	}

	q := url.Values{}
	q.Set("chat_id", chatID)
	q.Set("text", text)

	var env envelope[json.RawMessage]
	return c.call(ctx, token, "sendMessage", q, &env)
}

func (c *Client) call(ctx context.Context, token, method string, q url.Values, env interface{ ok() (bool, string) }) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s?%s", c.baseURL, token, method, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, redact(err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s request failed: %w", method, redact(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	if err := json.Unmarshal(body, env); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%w: %s returned %d", ErrAPI, method, resp.StatusCode)
		}
		return fmt.Errorf("%w: decode %s response: %v", ErrAPI, method, err)
	}
	if ok, desc := env.ok(); !ok {
		if desc == "" {
			desc = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return fmt.Errorf("%w: %s: %s", ErrAPI, method, desc)
	}
	return nil
}

func (e *envelope[T]) ok() (bool, string) { return e.OK, e.Description }

// redact drops the request URL, which contains the token, from transport errors.
func redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}
