// Package notify forwards booking attempts to a downstream automation
// webhook (an n8n workflow in the stock deployment).
//
// Delivery is best-effort: one POST, bounded by a timeout, no retry.
// A failed delivery is reported to the caller as an error value and never
// changes the outcome of the booking itself.
package notify

import (
	"context"

	"github.com/teslashibe/restaurantia/pkg/booking"
)

// Notifier delivers one booking notification.
type Notifier interface {
	Notify(ctx context.Context, n booking.Notification) error
}

var _ booking.Notifier = Notifier(nil)
