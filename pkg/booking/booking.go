package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/teslashibe/restaurantia/internal/log"
)

// Default timeouts for the two external writes.
const (
	DefaultStoreTimeout  = 15 * time.Second
	DefaultNotifyTimeout = 10 * time.Second
)

// Guest range the prompt asks for. Values outside it are logged, not rejected.
const (
	MinGuests = 1
	MaxGuests = 20
)

// Persister writes a reservation to the system of record.
// It makes exactly one attempt and returns the store's record ID.
type Persister interface {
	Persist(ctx context.Context, r Reservation) (string, error)
}

// Notifier forwards a booking attempt to the automation webhook.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Service runs bookings against a store and a notifier.
// It holds no per-call state and is safe for concurrent use.
type Service struct {
	store    Persister
	notifier Notifier
	catalog  Catalog
	newID    IDGenerator
	metrics  *Metrics
	logger   *slog.Logger

	storeTimeout  time.Duration
	notifyTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCatalog replaces the message catalog.
func WithCatalog(c Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithIDGenerator replaces GenerateID, mainly for tests.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Service) {
		if g != nil {
			s.newID = g
		}
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithStoreTimeout bounds the record store write.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

// WithNotifyTimeout bounds the webhook call.
func WithNotifyTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.notifyTimeout = d
		}
	}
}

// NewService creates a booking service. notifier may be nil.
func NewService(store Persister, notifier Notifier, opts ...Option) *Service {
	s := &Service{
		store:         store,
		notifier:      notifier,
		catalog:       DefaultCatalog,
		newID:         GenerateID,
		logger:        slog.Default(),
		storeTimeout:  DefaultStoreTimeout,
		notifyTimeout: DefaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = log.Component(s.logger, "booking")
	return s
}

// Catalog returns the message catalog in use.
func (s *Service) Catalog() Catalog {
	return s.catalog
}

// Book runs one booking transaction and returns the sentence to speak.
// It never panics and never returns an error; failures become localized messages.
func (s *Service) Book(ctx context.Context, req Request, caller Caller) (res Result) {
	start := time.Now()
	lang := caller.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	logger := s.logger.With("customer", req.CustomerName, "language", string(lang))

	defer func() {
		if r := recover(); r != nil {
			err := &PanicError{Value: r}
			logger.Error("unexpected booking error", "stage", "responding", "error", err)
			res = Result{Outcome: OutcomeUnexpected, Message: s.catalog.Render(lang, MsgUnexpected, Vars{})}
		}
		s.metrics.observeOutcome(res.Outcome, start)
		logger.Info("booking finished", "stage", "done", "outcome", string(res.Outcome),
			"duration_ms", time.Since(start).Milliseconds())
	}()

	logger.Info("booking started", "stage", "received",
		"date", req.Date, "time", req.Time, "guests", req.Guests)

	if strings.TrimSpace(req.CustomerName) == "" {
		logger.Error("unexpected booking error", "stage", "received", "error", ErrMissingName)
		return s.unexpected(lang)
	}
	if s.store == nil {
		logger.Error("unexpected booking error", "stage", "received", "error", ErrNoStore)
		return s.unexpected(lang)
	}
	if req.Guests < MinGuests || req.Guests > MaxGuests {
		logger.Warn("guest count outside documented range", "guests", req.Guests,
			"min", MinGuests, "max", MaxGuests)
	}

	// Parsing
	instant, displayDate, err := Normalize(req.Date, req.Time)
	if err != nil {
		logger.Error("date/time parsing error", "stage", "parse_failed", "error", err)
		return Result{Outcome: OutcomeParseFailed, Message: s.catalog.Render(lang, MsgParseFailed, Vars{})}
	}

	// IdAssigned
	id := s.newID()
	logger.Info("parsed date", "stage", "id_assigned", "display_date", displayDate, "reservation_id", id)

	reservation := Reservation{
		ReservationID:   id,
		CustomerName:    req.CustomerName,
		ReservationDate: displayDate,
		ReservationTime: req.Time,
		Summary:         summarize(req.Guests, req.SpecialRequests),
	}

	// Persisting. The write must finish even if the call is torn down.
	recordID, persistErr := s.persist(ctx, reservation)
	if persistErr != nil {
		logger.Error("store write failed", "stage", "persist_failed",
			"reservation_id", id, "error", persistErr)
	} else {
		logger.Info("store write succeeded", "stage", "persisted",
			"reservation_id", id, "record_id", recordID)
	}

	// Notifying
	n := Notification{
		CustomerName:    req.CustomerName,
		CustomerPhone:   caller.Phone,
		ReservationID:   id,
		Date:            req.Date,
		Time:            req.Time,
		Guests:          req.Guests,
		DisplayDate:     displayDate,
		StartTime:       instant.Format(ISOLayout),
		SpecialRequests: req.SpecialRequests,
		Service:         ServiceTableBooking,
		StoreStatus:     StatusSaved,
		Language:        string(lang),
	}
	if persistErr != nil {
		msg := persistErr.Error()
		n.StoreStatus = StatusFailed
		n.StoreError = &msg
	}
	s.notify(ctx, logger, n)

	// Responding
	if persistErr != nil {
		return Result{
			Outcome:   OutcomePersistFailed,
			Message:   s.catalog.Render(lang, MsgPersistFailed, Vars{}),
			StartTime: instant,
		}
	}

	vars := Vars{
		Name:     req.CustomerName,
		Date:     displayDate,
		Time:     req.Time,
		Guests:   req.Guests,
		ID:       id,
		Requests: req.SpecialRequests,
	}
	msg := s.catalog.Render(lang, MsgSuccess, vars)
	if req.SpecialRequests != "" {
		msg += s.catalog.Render(lang, MsgNote, vars)
	}

	return Result{
		Outcome:       OutcomeSuccess,
		Message:       msg,
		ReservationID: id,
		StoreRecordID: recordID,
		StartTime:     instant,
	}
}

// Closing returns the goodbye line for lang.
func (s *Service) Closing(lang Language) string {
	return s.catalog.Render(lang, MsgClosing, Vars{})
}

// NotBooked returns the line used when the call may not end yet.
func (s *Service) NotBooked(lang Language) string {
	return s.catalog.Render(lang, MsgNotBooked, Vars{})
}

func (s *Service) unexpected(lang Language) Result {
	return Result{Outcome: OutcomeUnexpected, Message: s.catalog.Render(lang, MsgUnexpected, Vars{})}
}

// persist makes the single store write. A panicking store counts as a
// failed write so the webhook still hears about the attempt.
func (s *Service) persist(ctx context.Context, r Reservation) (id string, err error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.storeTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			id, err = "", &PanicError{Value: p}
		}
		s.metrics.observeStoreWrite(time.Since(start))
	}()
	return s.store.Persist(ctx, r)
}

func (s *Service) notify(ctx context.Context, logger *slog.Logger, n Notification) {
	if s.notifier == nil {
		logger.Debug("no notifier configured", "stage", "notifying")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	err := s.notifier.Notify(ctx, n)
	s.metrics.observeNotification(err)
	if err != nil {
		// Never affects the caller-facing outcome.
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("webhook timed out", "stage", "notifying", "error", err)
			return
		}
		logger.Warn("webhook failed", "stage", "notifying", "error", err)
		return
	}
	logger.Info("webhook delivered", "stage", "notifying", "reservation_id", n.ReservationID)
}
