package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/teslashibe/restaurantia/internal/httpc"
	"github.com/teslashibe/restaurantia/internal/log"
	"github.com/teslashibe/restaurantia/pkg/booking"
)

// DefaultTimeout bounds a single webhook delivery.
const DefaultTimeout = 10 * time.Second

// Webhook posts notifications as JSON to a fixed URL.
type Webhook struct {
	url     string
	client  *http.Client
	logger  *slog.Logger
	timeout time.Duration
}

// WebhookOption configures a Webhook.
type WebhookOption func(*Webhook)

// WithTimeout sets the delivery timeout.
func WithTimeout(d time.Duration) WebhookOption {
	return func(w *Webhook) {
		if d > 0 {
			w.timeout = d
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) WebhookOption {
	return func(w *Webhook) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) WebhookOption {
	return func(w *Webhook) {
		if c != nil {
			w.client = c
		}
	}
}

// NewWebhook creates a webhook notifier for url.
// An empty url yields a notifier that only logs.
func NewWebhook(url string, opts ...WebhookOption) *Webhook {
	w := &Webhook{
		url:     strings.TrimSpace(url),
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.client == nil {
		w.client = httpc.NewClient(w.timeout)
	}
	w.logger = log.Component(w.logger, "notify.webhook")
	return w
}

// Enabled reports whether a target URL is configured.
func (w *Webhook) Enabled() bool {
	return w.url != ""
}

// Notify posts n. Only 200 and 201 count as delivered.
func (w *Webhook) Notify(ctx context.Context, n booking.Notification) error {
	if !w.Enabled() {
		w.logger.Debug("webhook disabled, skipping", "reservation_id", n.ReservationID)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("notify: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := w.client.Do(req)
	if err != nil {
		w.logger.Warn("webhook request failed", "reservation_id", n.ReservationID, "error", err)
		return fmt.Errorf("notify: request failed: %w", err)
	}
	defer resp.Body.Close()

	if !httpc.IsSuccess(resp.StatusCode, http.StatusOK, http.StatusCreated) {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		err := &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
		w.logger.Warn("webhook rejected notification", "reservation_id", n.ReservationID,
			"status", resp.StatusCode)
		return err
	}

	w.logger.Info("webhook delivered", "reservation_id", n.ReservationID,
		"status", resp.StatusCode, "latency_ms", time.Since(start).Milliseconds())
	return nil
}
