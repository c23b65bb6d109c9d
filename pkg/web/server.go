// Package web serves the HTTP API for restaurantia: call sessions driven
// over REST, health and Prometheus metrics, and a live event stream.
package web

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teslashibe/restaurantia/internal/log"
	"github.com/teslashibe/restaurantia/pkg/call"
	"github.com/teslashibe/restaurantia/pkg/cloud"
	"github.com/teslashibe/restaurantia/pkg/hub"
	"github.com/teslashibe/restaurantia/pkg/voice"
)

// maxEvents bounds the event buffer.
const maxEvents = 500

// Event is one entry in the call event log.
type Event struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // call, tool, hangup, error
	CallID  string `json:"call_id,omitempty"`
	Message string `json:"message"`
}

// session is one call driven over the REST API.
type session struct {
	controller *call.Controller
	tools      *voice.Registry
}

// Server is the HTTP server
type Server struct {
	app     *fiber.App
	port    string
	logger  *slog.Logger
	factory call.Factory

	gatherer    prometheus.Gatherer
	toolMetrics *voice.Metrics
	callHub     *cloud.Hub
	logRequests bool

	ctx    context.Context
	cancel context.CancelFunc

	sessions   map[string]*session
	sessionsMu sync.RWMutex

	// Event buffer (last maxEvents entries)
	events   []Event
	eventsMu sync.RWMutex
	eventHub *hub.Hub
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGatherer exposes g on /metrics. prometheus.DefaultGatherer is used otherwise.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		if g != nil {
			s.gatherer = g
		}
	}
}

// WithToolMetrics records tool dispatch metrics for REST sessions.
func WithToolMetrics(m *voice.Metrics) Option {
	return func(s *Server) {
		s.toolMetrics = m
	}
}

// WithCallHub mounts the pipeline WebSocket hub on the same app.
func WithCallHub(h *cloud.Hub) Option {
	return func(s *Server) {
		s.callHub = h
	}
}

// WithRequestLogging logs every HTTP request.
func WithRequestLogging(enabled bool) Option {
	return func(s *Server) {
		s.logRequests = enabled
	}
}

// NewServer creates a new HTTP server
func NewServer(port string, factory call.Factory, opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		port:     port,
		logger:   slog.Default(),
		factory:  factory,
		gatherer: prometheus.DefaultGatherer,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*session),
		events:   make([]Event, 0, maxEvents),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = log.Component(s.logger, "web")
	s.eventHub = hub.New("events", s.logger)

	app := fiber.New(fiber.Config{
		AppName:               "Restaurantia",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	// CORS for local development
	app.Use(cors.New())
	if s.logRequests {
		app.Use(logger.New())
	}

	app.Get("/healthz", s.handleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	// API routes
	api := app.Group("/api")
	api.Get("/tools", s.handleListTools)
	api.Post("/calls", s.handleCreateCall)
	api.Get("/calls", s.handleListCalls)
	api.Get("/calls/:id", s.handleGetCall)
	api.Delete("/calls/:id", s.handleDeleteCall)
	api.Post("/calls/:id/tools/:name", s.handleTriggerTool)
	api.Get("/events", s.handleGetEvents)

	// Live event stream
	app.Use("/ws/events", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	if s.callHub != nil {
		s.callHub.RegisterRoutes(app)
		s.callHub.RegisterAPIRoutes(api)
	}

	s.app = app
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the web server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info("🌐 HTTP server listening", "addr", "http://localhost:"+s.port)

	go s.eventHub.Run(s.ctx)

	return s.app.Listen(":" + s.port)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("⚠️  Web server error", "error", err)
		}
	}()
}

// AddEvent records an event and broadcasts it to dashboards.
func (s *Server) AddEvent(eventType, callID, message string) {
	entry := Event{
		Time:    time.Now().Format("15:04:05"),
		Type:    eventType,
		CallID:  callID,
		Message: message,
	}

	s.eventsMu.Lock()
	s.events = append(s.events, entry)
	if len(s.events) > maxEvents {
		s.events = s.events[1:]
	}
	s.eventsMu.Unlock()

	s.eventHub.BroadcastJSON(entry)
}

// Events returns a copy of the buffered events.
func (s *Server) Events() []Event {
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// SessionCount returns the number of open REST sessions.
func (s *Server) SessionCount() int {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	return len(s.sessions)
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	return s.app.ShutdownWithContext(ctx)
}
