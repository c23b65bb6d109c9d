// Package cloud provides the WebSocket hub speech pipelines connect to.
// Each connection carries one phone call.
package cloud

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/restaurantia/internal/log"
	"github.com/teslashibe/restaurantia/pkg/booking"
	"github.com/teslashibe/restaurantia/pkg/call"
	"github.com/teslashibe/restaurantia/pkg/protocol"
	"github.com/teslashibe/restaurantia/pkg/voice"
)

// CallConnection represents a connected speech pipeline
type CallConnection struct {
	ID        string
	Conn      *websocket.Conn
	Connected time.Time
	LastSeen  time.Time

	controller *call.Controller
	tools      *voice.Registry
	hangup     chan struct{}

	mu sync.Mutex
}

// Send sends a message to the pipeline
func (c *CallConnection) Send(msg *protocol.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	return c.Conn.WriteMessage(websocket.TextMessage, data)
}

// Hub manages WebSocket connections from speech pipelines
type Hub struct {
	mu      sync.RWMutex
	calls   map[string]*CallConnection
	factory call.Factory
	metrics *voice.Metrics
	logger  *slog.Logger

	// Stats
	messagesReceived atomic.Uint64
	messagesSent     atomic.Uint64
	toolCalls        atomic.Uint64
	callsEnded       atomic.Uint64
}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithToolMetrics records tool dispatch metrics.
func WithToolMetrics(m *voice.Metrics) Option {
	return func(h *Hub) {
		h.metrics = m
	}
}

// NewHub creates a new call hub
func NewHub(factory call.Factory, opts ...Option) *Hub {
	h := &Hub{
		calls:   make(map[string]*CallConnection),
		factory: factory,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = log.Component(h.logger, "cloud.hub")
	return h
}

// RegisterRoutes registers WebSocket routes on a Fiber app
func (h *Hub) RegisterRoutes(app *fiber.App) {
	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/call", websocket.New(h.handleCall))
	app.Get("/ws/call/:id", websocket.New(h.handleCall))
}

// handleCall handles one pipeline connection
func (h *Hub) handleCall(c *websocket.Conn) {
	callID := c.Params("id")
	if callID == "" {
		callID = uuid.NewString()
	}

	conn := &CallConnection{
		ID:        callID,
		Conn:      c,
		Connected: time.Now(),
		LastSeen:  time.Now(),
		hangup:    make(chan struct{}),
	}

	h.mu.Lock()
	if _, exists := h.calls[callID]; exists {
		h.mu.Unlock()
		h.logger.Warn("⚠️  Duplicate call ID, rejecting", "call_id", callID)
		if msg, err := protocol.NewErrorMessage("call already connected"); err == nil {
			conn.Send(msg)
		}
		return
	}
	h.calls[callID] = conn
	callCount := len(h.calls)
	h.mu.Unlock()

	logger := h.logger.With("call_id", callID)
	logger.Info("📞 Call connected", "total", callCount)

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		h.mu.Lock()
		delete(h.calls, callID)
		callCount := len(h.calls)
		h.mu.Unlock()

		logger.Info("📞 Call disconnected", "total", callCount)
	}()

	// Read loop
	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			logger.Debug("read loop ended", "error", err)
			return
		}

		conn.mu.Lock()
		conn.LastSeen = time.Now()
		conn.mu.Unlock()

		h.messagesReceived.Add(1)
		if done := h.handleMessage(ctx, conn, data); done {
			return
		}
	}
}

// handleMessage processes one message and reports whether the call is over.
func (h *Hub) handleMessage(ctx context.Context, conn *CallConnection, data []byte) bool {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		h.logger.Warn("⚠️  Parse error", "call_id", conn.ID, "error", err)
		h.sendError(conn, err.Error())
		return false
	}

	switch msg.Type {
	case protocol.TypeStart:
		if conn.controller != nil {
			h.sendError(conn, "call already started")
			return false
		}
		start, err := msg.GetStartData()
		if err != nil {
			h.sendError(conn, "invalid start data: "+err.Error())
			return false
		}
		h.startCall(ctx, conn, call.Metadata{
			CustomerName:  start.CustomerName,
			CustomerPhone: start.CustomerPhone,
			Language:      booking.Language(start.Language),
		})

	case protocol.TypeToolCall:
		if conn.controller == nil {
			// Pipelines that skip start get the default call context.
			h.startCall(ctx, conn, call.ParseMetadata(""))
		}
		tc, err := msg.GetToolCallData()
		if err != nil {
			h.sendError(conn, "invalid tool call: "+err.Error())
			return false
		}
		if tc.ID == "" {
			tc.ID = uuid.NewString()
		}

		h.toolCalls.Add(1)
		res := conn.tools.Dispatch(voice.ToolCall{ID: tc.ID, Name: tc.Name, Arguments: tc.Arguments})
		reply, err := protocol.NewToolResultMessage(res.CallID, res.Result, res.Error)
		if err == nil {
			h.send(conn, reply)
		}

		select {
		case <-conn.hangup:
			h.sendHangup(conn, call.ToolEndCall)
			return true
		default:
		}

	case protocol.TypePing:
		ping, _ := msg.GetPingData()
		id := ""
		if ping != nil {
			id = ping.ID
		}
		if pong, err := protocol.NewPongMessage(id, msg.Timestamp, time.Now().UnixMilli()); err == nil {
			h.send(conn, pong)
		}

	case protocol.TypeHangup:
		h.logger.Info("📞 Pipeline hung up", "call_id", conn.ID)
		return true

	default:
		h.sendError(conn, "unsupported message type: "+string(msg.Type))
	}
	return false
}

// startCall creates the controller and tool registry for conn.
func (h *Hub) startCall(ctx context.Context, conn *CallConnection, meta call.Metadata) {
	var once sync.Once
	ctrl := h.factory(meta,
		call.WithID(conn.ID),
		call.WithHangup(func() {
			once.Do(func() { close(conn.hangup) })
		}),
	)

	reg := voice.NewRegistry(voice.WithLogger(h.logger), voice.WithMetrics(h.metrics))
	tools := ctrl.Tools(ctx)
	if err := reg.Register(tools...); err != nil {
		h.logger.Error("❌ Failed to register call tools", "call_id", conn.ID, "error", err)
	}

	conn.mu.Lock()
	conn.controller = ctrl
	conn.tools = reg
	conn.mu.Unlock()

	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name)
	}
	if msg, err := protocol.NewReadyMessage(conn.ID, names); err == nil {
		h.send(conn, msg)
	}

	m := ctrl.Metadata()
	h.logger.Info("📞 Call started", "call_id", conn.ID, "language", string(m.Language),
		"has_name", m.CustomerName != "")
}

func (h *Hub) sendHangup(conn *CallConnection, reason string) {
	h.callsEnded.Add(1)
	if msg, err := protocol.NewHangupMessage(conn.ID, reason); err == nil {
		h.send(conn, msg)
	}
	conn.mu.Lock()
	conn.Conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason))
	conn.mu.Unlock()
}

func (h *Hub) sendError(conn *CallConnection, text string) {
	if msg, err := protocol.NewErrorMessage(text); err == nil {
		h.send(conn, msg)
	}
}

func (h *Hub) send(conn *CallConnection, msg *protocol.Message) {
	h.messagesSent.Add(1)
	if err := conn.Send(msg); err != nil {
		h.logger.Warn("⚠️  Send failed", "call_id", conn.ID, "type", string(msg.Type), "error", err)
	}
}

// Hangup ends a call from the server side.
func (h *Hub) Hangup(callID, reason string) error {
	h.mu.RLock()
	conn, ok := h.calls[callID]
	h.mu.RUnlock()

	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "call not connected")
	}

	h.sendHangup(conn, reason)
	return nil
}

// GetCall returns a call connection by ID
func (h *Hub) GetCall(callID string) *CallConnection {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.calls[callID]
}

// CallCount returns the number of connected calls
func (h *Hub) CallCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.calls)
}

// Stats contains hub statistics
type Stats struct {
	CallCount        int    `json:"call_count"`
	MessagesReceived uint64 `json:"messages_received"`
	MessagesSent     uint64 `json:"messages_sent"`
	ToolCalls        uint64 `json:"tool_calls"`
	CallsEnded       uint64 `json:"calls_ended"`
}

// GetStats returns hub statistics
func (h *Hub) GetStats() Stats {
	return Stats{
		CallCount:        h.CallCount(),
		MessagesReceived: h.messagesReceived.Load(),
		MessagesSent:     h.messagesSent.Load(),
		ToolCalls:        h.toolCalls.Load(),
		CallsEnded:       h.callsEnded.Load(),
	}
}

// CallInfo contains info about a connected call
type CallInfo struct {
	ID        string         `json:"id"`
	Connected time.Time      `json:"connected"`
	LastSeen  time.Time      `json:"last_seen"`
	Call      *call.Snapshot `json:"call,omitempty"`
}

// GetCallInfos returns info about all connected calls
func (h *Hub) GetCallInfos() []CallInfo {
	h.mu.RLock()
	conns := make([]*CallConnection, 0, len(h.calls))
	for _, c := range h.calls {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	infos := make([]CallInfo, 0, len(conns))
	for _, c := range conns {
		c.mu.Lock()
		info := CallInfo{ID: c.ID, Connected: c.Connected, LastSeen: c.LastSeen}
		ctrl := c.controller
		c.mu.Unlock()
		if ctrl != nil {
			snap := ctrl.Snapshot()
			info.Call = &snap
		}
		infos = append(infos, info)
	}
	return infos
}

// RegisterAPIRoutes registers API routes for call management
func (h *Hub) RegisterAPIRoutes(api fiber.Router) {
	hub := api.Group("/hub")

	// List connected calls
	hub.Get("/calls", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"calls": h.GetCallInfos(),
			"count": h.CallCount(),
		})
	})

	// Get hub stats
	hub.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(h.GetStats())
	})

	// Force a hangup
	hub.Post("/calls/:id/hangup", func(c *fiber.Ctx) error {
		if err := h.Hangup(c.Params("id"), "operator"); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"status": "sent"})
	})
}
