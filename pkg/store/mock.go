package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/teslashibe/restaurantia/pkg/booking"
)

// Mock implements Store for testing.
type Mock struct {
	// PersistFunc is called when Persist is invoked.
	// If nil, returns a generated record ID.
	PersistFunc func(ctx context.Context, r booking.Reservation) (string, error)

	mu    sync.Mutex
	calls []booking.Reservation
}

// NewMock creates a mock store that accepts every write.
func NewMock() *Mock {
	return &Mock{}
}

// WithError creates a mock store whose writes fail with err.
func WithError(err error) *Mock {
	return &Mock{
		PersistFunc: func(ctx context.Context, r booking.Reservation) (string, error) {
			return "", err
		},
	}
}

// Persist records the reservation and calls PersistFunc.
func (m *Mock) Persist(ctx context.Context, r booking.Reservation) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, r)
	n := len(m.calls)
	m.mu.Unlock()

	if m.PersistFunc != nil {
		return m.PersistFunc(ctx, r)
	}
	return fmt.Sprintf("rec%04d", n), nil
}

// Calls returns the reservations written so far.
func (m *Mock) Calls() []booking.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]booking.Reservation, len(m.calls))
	copy(result, m.calls)
	return result
}

// CallCount returns the number of Persist calls.
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
