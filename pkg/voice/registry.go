package voice

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Registry errors.
var (
	ErrToolNotFound  = errors.New("voice: tool not found")
	ErrDuplicateTool = errors.New("voice: tool already registered")
	ErrInvalidTool   = errors.New("voice: tool needs a name and a handler")
)

// Registry holds the tools available to one conversation and dispatches
// calls to them. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	order   []string
	metrics *Metrics
	logger  *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithMetrics records tool call counts and latency.
func WithMetrics(m *Metrics) RegistryOption {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		tools:  make(map[string]Tool),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a tool. Names must be unique.
func (r *Registry) Register(tools ...Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range tools {
		if t.Name == "" || t.Handler == nil {
			return ErrInvalidTool
		}
		if _, ok := r.tools[t.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateTool, t.Name)
		}
		r.tools[t.Name] = t
		r.order = append(r.order, t.Name)
	}
	return nil
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Dispatch runs the handler for call.Name. A panicking handler is
// reported as an error result.
func (r *Registry) Dispatch(call ToolCall) (res ToolResult) {
	res.CallID = call.ID

	tool, ok := r.Get(call.Name)
	if !ok {
		r.logger.Warn("unknown tool", "tool", call.Name, "call_id", call.ID)
		res.Error = fmt.Errorf("%w: %s", ErrToolNotFound, call.Name)
		r.metrics.observe(call.Name, res.Error, 0)
		return res
	}

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res.Result = ""
			res.Error = fmt.Errorf("voice: tool %s panicked: %v", call.Name, p)
			r.logger.Error("tool panicked", "tool", call.Name, "call_id", call.ID, "panic", p)
		}
		r.metrics.observe(call.Name, res.Error, time.Since(start))
	}()

	args := call.Arguments
	if args == nil {
		args = map[string]any{}
	}

	r.logger.Debug("tool call", "tool", call.Name, "call_id", call.ID)
	res.Result, res.Error = tool.Handler(args)
	if res.Error != nil {
		r.logger.Warn("tool failed", "tool", call.Name, "call_id", call.ID, "error", res.Error)
	}
	return res
}
