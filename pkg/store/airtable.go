package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/teslashibe/restaurantia/internal/httpc"
	"github.com/teslashibe/restaurantia/internal/log"
	"github.com/teslashibe/restaurantia/pkg/booking"
)

const (
	airtableURL      = "https://api.airtable.com"
	providerAirtable = "airtable"
)

// Airtable implements Store on the Airtable REST API.
type Airtable struct {
	config   *Config
	client   *http.Client
	logger   *slog.Logger
	endpoint string
}

// NewAirtable creates an Airtable store.
func NewAirtable(opts ...Option) (*Airtable, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = airtableURL
	}

	return &Airtable{
		config:   cfg,
		client:   httpc.NewClient(cfg.Timeout),
		logger:   log.Component(cfg.Logger, "store.airtable"),
		endpoint: fmt.Sprintf("%s/v0/%s/%s", baseURL, url.PathEscape(cfg.BaseID), url.PathEscape(cfg.Table)),
	}, nil
}

type airtableCreateRequest struct {
	Fields   map[string]any `json:"fields"`
	Typecast bool           `json:"typecast,omitempty"`
}

type airtableRecord struct {
	ID          string         `json:"id"`
	CreatedTime string         `json:"createdTime"`
	Fields      map[string]any `json:"fields"`
}

// Persist creates one record and returns its Airtable record ID.
func (a *Airtable) Persist(ctx context.Context, r booking.Reservation) (string, error) {
	start := time.Now()

	body, err := json.Marshal(airtableCreateRequest{
		Fields:   Fields(r),
		Typecast: a.config.Typecast,
	})
	if err != nil {
		return "", WrapError(providerAirtable, fmt.Errorf("marshal record: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", WrapError(providerAirtable, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+a.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	a.logger.Debug("creating record", "table", a.config.Table, "reservation_id", r.ReservationID)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", WrapError(providerAirtable, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if !httpc.IsSuccess(resp.StatusCode) {
		apiErr := a.parseError(resp)
		if apiErr.IsRateLimited() {
			a.logger.Warn("airtable rate limit hit", "retry_after", resp.Header.Get("Retry-After"),
				"reservation_id", r.ReservationID)
		}
		return "", apiErr
	}

	var rec airtableRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return "", WrapError(providerAirtable, fmt.Errorf("decode response: %w", err))
	}
	if rec.ID == "" {
		return "", WrapError(providerAirtable, ErrEmptyResponse)
	}

	a.logger.Info("record created", "record_id", rec.ID, "latency_ms", time.Since(start).Milliseconds())
	return rec.ID, nil
}

// parseError extracts error details from a non-2xx response.
// Airtable sends either {"error": {"type", "message"}} or {"error": "TYPE"}.
func (a *Airtable) parseError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Provider:   providerAirtable,
		Message:    http.StatusText(resp.StatusCode),
	}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		if s := strings.TrimSpace(string(body)); s != "" {
			apiErr.Message = s
		}
		return apiErr
	}

	var detailed struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &detailed); err == nil {
		apiErr.Type = detailed.Type
		if detailed.Message != "" {
			apiErr.Message = detailed.Message
		}
		return apiErr
	}

	var code string
	if err := json.Unmarshal(envelope.Error, &code); err == nil {
		apiErr.Type = code
	}
	return apiErr
}
