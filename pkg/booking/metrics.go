package booking

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the booking counters and histograms.
type Metrics struct {
	Bookings      *prometheus.CounterVec
	Notifications *prometheus.CounterVec
	StoreWrite    prometheus.Histogram
	Duration      prometheus.Histogram
}

// NewMetrics registers booking metrics on reg.
// Pass prometheus.NewRegistry() in tests to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Bookings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "restaurantia_bookings_total",
			Help: "Booking invocations by outcome",
		}, []string{"outcome"}),

		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "restaurantia_notifications_total",
			Help: "Webhook notification attempts by status",
		}, []string{"status"}),

		StoreWrite: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "restaurantia_store_write_seconds",
			Help:    "Latency of record store writes",
			Buckets: prometheus.DefBuckets,
		}),

		Duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "restaurantia_booking_duration_seconds",
			Help:    "End-to-end time spent in Book",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) observeOutcome(o Outcome, start time.Time) {
	if m == nil {
		return
	}
	m.Bookings.WithLabelValues(string(o)).Inc()
	m.Duration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) observeStoreWrite(d time.Duration) {
	if m == nil {
		return
	}
	m.StoreWrite.Observe(d.Seconds())
}

func (m *Metrics) observeNotification(err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.Notifications.WithLabelValues(status).Inc()
}
