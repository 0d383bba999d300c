// Package whatsapp sends messages through a WAHA (WhatsApp HTTP API) gateway.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL string
	apiKey  string
	session string
	client  *http.Client

	// pauses between the seen, typing and send calls
	seenPause, typingPause, stopPause time.Duration
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.client = h } }

// WithoutPauses skips the human-like delays between calls.
func WithoutPauses() Option {
	return func(c *Client) { c.seenPause, c.typingPause, c.stopPause = 0, 0, 0 }
}

func NewClient(baseURL, apiKey, session string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = "http://waha:3000"
	}
	if session == "" {
		session = "default"
	}
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		session:     session,
		client:      &http.Client{Timeout: 10 * time.Second},
		seenPause:   100 * time.Millisecond,
		typingPause: 150 * time.Millisecond,
		stopPause:   50 * time.Millisecond,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) post(ctx context.Context, endpoint string, payload map[string]string) error {
	payload["session"] = c.session
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s failed with status %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NormalizeChatID turns a Kenyan phone number into a WAHA chat id:
// 0712345678, +254712345678 and 254712345678 all become 254712345678@c.us.
func NormalizeChatID(phone string) string {
	chatID := strings.TrimSpace(phone)
	if strings.HasSuffix(chatID, "@g.us") {
		return chatID
	}
	chatID = strings.TrimSuffix(chatID, "@c.us")
	chatID = strings.NewReplacer(" ", "", "-", "").Replace(chatID)
	chatID = strings.TrimPrefix(chatID, "+")
	if strings.HasPrefix(chatID, "0") {
		chatID = "254" + strings.TrimPrefix(chatID, "0")
	}
	return chatID + "@c.us"
}

// Send delivers text to phone the way a person would: seen, typing, send.
func (c *Client) Send(ctx context.Context, phone, text string) error {
	chatID := NormalizeChatID(phone)

	if err := c.post(ctx, "/api/sendSeen", map[string]string{"chatId": chatID}); err != nil {
		return fmt.Errorf("failed to send seen: %w", err)
	}
	if err := sleep(ctx, c.seenPause); err != nil {
		return err
	}
	if err := c.post(ctx, "/api/startTyping", map[string]string{"chatId": chatID}); err != nil {
		return fmt.Errorf("failed to start typing: %w", err)
	}
	if err := sleep(ctx, c.typingPause); err != nil {
		return err
	}
	if err := c.post(ctx, "/api/stopTyping", map[string]string{"chatId": chatID}); err != nil {
		return fmt.Errorf("failed to stop typing: %w", err)
	}
	if err := sleep(ctx, c.stopPause); err != nil {
		return err
	}
	if err := c.post(ctx, "/api/sendText", map[string]string{"chatId": chatID, "text": text}); err != nil {
		return fmt.Errorf("failed to send text: %w", err)
	}
	return nil
}
