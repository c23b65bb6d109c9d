// Package call owns the lifecycle of one phone call: the caller's
// context, the book_table and end_call tools, and the hangup signal.
package call

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/restaurantia/internal/log"
	"github.com/teslashibe/restaurantia/pkg/booking"
	"github.com/teslashibe/restaurantia/pkg/voice"
)

// Tool names exposed to the dialogue model.
const (
	ToolBookTable = "book_table"
	ToolEndCall   = "end_call"
)

// Factory builds a controller for a new call. Transports pass their own
// WithID and WithHangup options in opts.
type Factory func(meta Metadata, opts ...Option) *Controller

// Controller serializes tool calls for one call.
type Controller struct {
	id      string
	svc     *booking.Service
	logger  *slog.Logger
	strict  bool
	onHang  func()
	started time.Time

	// bookMu serializes tool calls; mu guards the fields below and is
	// never held across a store or webhook call.
	bookMu sync.Mutex

	mu            sync.Mutex
	meta          Metadata
	outcome       booking.Outcome
	reservationID string
	attempts      int
	ended         bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithID sets the call ID. A random UUID is used otherwise.
func WithID(id string) Option {
	return func(c *Controller) {
		if id != "" {
			c.id = id
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHangup registers fn to run once when the call is ended.
func WithHangup(fn func()) Option {
	return func(c *Controller) {
		c.onHang = fn
	}
}

// WithStrictEndCall refuses to end the call until a booking succeeded.
func WithStrictEndCall() Option {
	return func(c *Controller) {
		c.strict = true
	}
}

// NewController creates a controller for one call. svc must not be nil.
func NewController(meta Metadata, svc *booking.Service, opts ...Option) *Controller {
	c := &Controller{
		id:      uuid.NewString(),
		svc:     svc,
		logger:  slog.Default(),
		meta:    meta.Normalize(),
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = log.Component(c.logger, "call").With("call_id", c.id)
	return c
}

// ID returns the call ID.
func (c *Controller) ID() string {
	return c.id
}

// Metadata returns the current call context.
func (c *Controller) Metadata() Metadata {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meta
}

// Book runs book_table with the model's arguments and returns the
// sentence to speak.
func (c *Controller) Book(ctx context.Context, args map[string]any) string {
	c.bookMu.Lock()
	defer c.bookMu.Unlock()

	name := voice.String(args, "customer_name")

	c.mu.Lock()
	switch {
	case name == "":
		name = c.meta.CustomerName
	case c.meta.CustomerName == "":
		c.meta.CustomerName = name
	}
	caller := booking.Caller{Phone: c.meta.CustomerPhone, Language: c.meta.Language}
	c.mu.Unlock()

	guests, ok := voice.Int(args, "guests")
	if !ok {
		c.logger.Warn("guests argument missing or not a number", "value", args["guests"])
	}

	req := booking.Request{
		CustomerName:    name,
		Date:            voice.String(args, "date"),
		Time:            voice.String(args, "time"),
		Guests:          guests,
		SpecialRequests: voice.String(args, "special_requests"),
	}

	res := c.svc.Book(ctx, req, caller)

	c.mu.Lock()
	c.attempts++
	c.outcome = res.Outcome
	if res.Confirmed() {
		c.reservationID = res.ReservationID
	}
	c.mu.Unlock()
	return res.Message
}

// EndCall returns the closing line and fires the hangup callback once.
// In strict mode it refuses until a booking has succeeded.
func (c *Controller) EndCall(ctx context.Context) string {
	c.bookMu.Lock()
	defer c.bookMu.Unlock()

	c.mu.Lock()
	lang := c.meta.Language
	if c.strict && c.reservationID == "" {
		c.mu.Unlock()
		c.logger.Info("📞 end_call before a confirmed booking, staying on the line")
		return c.svc.NotBooked(lang)
	}
	first := !c.ended
	c.ended = true
	hang := c.onHang
	resID := c.reservationID
	c.mu.Unlock()

	if first {
		c.logger.Info("📞 Ending call", "reservation_id", resID,
			"duration_ms", time.Since(c.started).Milliseconds())
		if hang != nil {
			hang()
		}
	}
	return c.svc.Closing(lang)
}

// Ended reports whether end_call has completed.
func (c *Controller) Ended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ended
}

// Tools returns the book_table and end_call definitions bound to this call.
// ctx is passed to every booking made through them.
func (c *Controller) Tools(ctx context.Context) []voice.Tool {
	return []voice.Tool{
		{
			Name: ToolBookTable,
			Description: "Book a table reservation in the restaurant system. " +
				"Use this ONLY after confirming all details with the customer, including their name.",
			Parameters: voice.ObjectSchema(map[string]any{
				"customer_name":    voice.Property("string", "The customer's name"),
				"date":             voice.Property("string", "Date in format YYYY-MM-DD or M/D/YYYY (e.g. 2025-10-15 or 10/15/2025)"),
				"time":             voice.Property("string", "Time in HH:MM format (e.g. 19:00 for 7pm)"),
				"guests":           voice.Property("integer", "Number of guests (1-20)"),
				"special_requests": voice.Property("string", "Any special requests, like a birthday dinner or a window seat"),
			}, "customer_name", "date", "time", "guests"),
			Handler: func(args map[string]any) (string, error) {
				return c.Book(ctx, args), nil
			},
		},
		{
			Name:        ToolEndCall,
			Description: "End the call gracefully after the reservation is completed.",
			Parameters:  voice.ObjectSchema(map[string]any{}),
			Handler: func(map[string]any) (string, error) {
				return c.EndCall(ctx), nil
			},
		},
	}
}

// Snapshot is a point-in-time view of a call.
type Snapshot struct {
	ID            string          `json:"id"`
	CustomerName  string          `json:"customerName,omitempty"`
	CustomerPhone string          `json:"customerPhone"`
	Language      string          `json:"language"`
	Attempts      int             `json:"attempts"`
	LastOutcome   booking.Outcome `json:"lastOutcome,omitempty"`
	ReservationID string          `json:"reservationId,omitempty"`
	Ended         bool            `json:"ended"`
	StartedAt     time.Time       `json:"startedAt"`
}

// Snapshot returns the call's current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		ID:            c.id,
		CustomerName:  c.meta.CustomerName,
		CustomerPhone: c.meta.CustomerPhone,
		Language:      string(c.meta.Language),
		Attempts:      c.attempts,
		LastOutcome:   c.outcome,
		ReservationID: c.reservationID,
		Ended:         c.ended,
		StartedAt:     c.started,
	}
}

// NewFactory returns a Factory that builds controllers on svc.
// base options are applied before the transport's own.
func NewFactory(svc *booking.Service, base ...Option) Factory {
	return func(meta Metadata, opts ...Option) *Controller {
		all := make([]Option, 0, len(base)+len(opts))
		all = append(all, base...)
		all = append(all, opts...)
		return NewController(meta, svc, all...)
	}
}
