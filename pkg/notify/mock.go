package notify

import (
	"context"
	"sync"

	"github.com/teslashibe/restaurantia/pkg/booking"
)

// Mock implements Notifier for testing.
type Mock struct {
	// NotifyFunc is called when Notify is invoked.
	// If nil, Notify succeeds.
	NotifyFunc func(ctx context.Context, n booking.Notification) error

	mu    sync.Mutex
	calls []booking.Notification
}

// NewMock creates a mock notifier that accepts everything.
func NewMock() *Mock {
	return &Mock{}
}

// WithError creates a mock notifier that always fails with err.
func WithError(err error) *Mock {
	return &Mock{
		NotifyFunc: func(ctx context.Context, n booking.Notification) error {
			return err
		},
	}
}

// Notify records n and calls NotifyFunc.
func (m *Mock) Notify(ctx context.Context, n booking.Notification) error {
	m.mu.Lock()
	m.calls = append(m.calls, n)
	m.mu.Unlock()

	if m.NotifyFunc != nil {
		return m.NotifyFunc(ctx, n)
	}
	return nil
}

// Calls returns the notifications received so far.
func (m *Mock) Calls() []booking.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]booking.Notification, len(m.calls))
	copy(result, m.calls)
	return result
}

// CallCount returns the number of Notify calls.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Reset clears recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}
