package voice

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts tool invocations and how long they took.
type Metrics struct {
	Calls   *prometheus.CounterVec
	Latency *prometheus.HistogramVec
}

// NewMetrics registers tool metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Calls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "restaurantia_tool_calls_total",
			Help: "Tool invocations by tool and status",
		}, []string{"tool", "status"}),

		Latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "restaurantia_tool_call_seconds",
			Help:    "Tool handler latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),
	}
}

func (m *Metrics) observe(tool string, err error, d time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	switch {
	case errors.Is(err, ErrToolNotFound):
		status = "not_found"
		tool = "unknown"
	case err != nil:
		status = "error"
	}
	m.Calls.WithLabelValues(tool, status).Inc()
	if status != "not_found" {
		m.Latency.WithLabelValues(tool).Observe(d.Seconds())
	}
}
