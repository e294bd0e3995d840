// Package notify pushes trade updates to the EETC Notifications Manager,
// which fans them out to Telegram subscribers.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultBaseURL is the production EETC Notifications Manager deployment.
const DefaultBaseURL = "https://eetc-notifications-manager-148296566920.us-east1.run.app"

// Client talks to the notifications manager. Authentication is an
// X-API-Key header on every request.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a non-production deployment.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the default 30s-timeout HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithLogger sets the logger used for request-level debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a notifications manager client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendTradeUpdate broadcasts message to the Telegram trade-updates channel.
func (c *Client) SendTradeUpdate(ctx context.Context, message string) error {
	if message == "" {
		return fmt.Errorf("notify: message is required")
	}

	body, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return fmt.Errorf("notify: encode message: %w", err)
	}

	url := c.baseURL + "/api/v1/telegram/send_trade_update"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: send trade update: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("notify: API error (status %d): %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	c.logger.Debug("sent trade update", "bytes", len(message))
	return nil
}
