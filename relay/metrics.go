package relay

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the relay's Prometheus collectors.
type metrics struct {
	requests     *prometheus.CounterVec
	streamEvents prometheus.Counter
	upstream     *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notechat",
				Subsystem: "relay",
				Name:      "requests_total",
				Help:      "Total number of relayed requests",
			},
			[]string{"mode", "code"},
		),
		streamEvents: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "notechat",
				Subsystem: "relay",
				Name:      "stream_events_total",
				Help:      "Total number of event-stream data lines relayed",
			},
		),
		upstream: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "notechat",
				Subsystem: "relay",
				Name:      "upstream_seconds",
				Help:      "Time until the endpoint answered, in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"mode"},
		),
	}

	reg.MustRegister(m.requests, m.streamEvents, m.upstream)
	return m
}
