package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/teslashibe/restaurantia/internal/httpc"
	"github.com/teslashibe/restaurantia/internal/log"
	"github.com/teslashibe/restaurantia/pkg/booking"
)

const providerSheets = "sheets"

// Sheets implements Store by appending rows to a Google Sheets tab.
// Columns follow the Columns order.
type Sheets struct {
	config  *Config
	service *sheets.Service
	logger  *slog.Logger
	rng     string
}

// NewSheets creates a Sheets store authenticated with a service account.
func NewSheets(ctx context.Context, opts ...Option) (*Sheets, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if len(cfg.CredentialsJSON) == 0 {
		return nil, ErrNoCredentials
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	jwt, err := google.JWTConfigFromJSON(cfg.CredentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, WrapError(providerSheets, fmt.Errorf("parse credentials: %w", err))
	}

	// The oauth2 client wraps our bounded transport.
	base := httpc.NewClient(cfg.Timeout)
	authCtx := context.WithValue(ctx, oauth2.HTTPClient, base)
	client := jwt.Client(authCtx)
	client.Timeout = cfg.Timeout

	clientOpts := []option.ClientOption{option.WithHTTPClient(client)}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.BaseURL))
	}

	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, WrapError(providerSheets, fmt.Errorf("create service: %w", err))
	}

	return newSheets(cfg, svc), nil
}

// NewSheetsFromService wraps an existing Sheets service.
// Useful with option.WithEndpoint and option.WithoutAuthentication in tests.
func NewSheetsFromService(svc *sheets.Service, opts ...Option) (*Sheets, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newSheets(cfg, svc), nil
}

func newSheets(cfg *Config, svc *sheets.Service) *Sheets {
	return &Sheets{
		config:  cfg,
		service: svc,
		logger:  log.Component(cfg.Logger, "store.sheets"),
		rng:     appendRange(cfg.Table),
	}
}

// appendRange returns the A1 range covering Columns on sheet, with the
// sheet name quoted so spaces and '!' survive.
func appendRange(sheet string) string {
	quoted := "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	return fmt.Sprintf("%s!A:%c", quoted, 'A'+len(Columns)-1)
}

// Persist appends one row and returns the range the row landed in.
func (s *Sheets) Persist(ctx context.Context, r booking.Reservation) (string, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	vr := &sheets.ValueRange{
		MajorDimension: "ROWS",
		Values:         [][]interface{}{Row(r)},
	}

	resp, err := s.service.Spreadsheets.Values.Append(s.config.BaseID, s.rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", s.wrap(err)
	}
	if resp.Updates == nil || resp.Updates.UpdatedRange == "" {
		return "", WrapError(providerSheets, ErrEmptyResponse)
	}

	s.logger.Info("row appended",
		"range", resp.Updates.UpdatedRange,
		"reservation_id", r.ReservationID,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return resp.Updates.UpdatedRange, nil
}

// wrap converts a googleapi error into an APIError.
func (s *Sheets) wrap(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		apiErr := &APIError{
			StatusCode: gerr.Code,
			Message:    gerr.Message,
			Provider:   providerSheets,
		}
		if len(gerr.Errors) > 0 {
			apiErr.Type = gerr.Errors[0].Reason
		}
		if apiErr.Message == "" {
			apiErr.Message = gerr.Body
		}
		return apiErr
	}
	return WrapError(providerSheets, fmt.Errorf("append failed: %w", err))
}
