// Package observability holds the Prometheus instrumentation for the sync
// core. Metrics are created against an injected Registerer so embedders
// (and tests) control exposure; passing nil yields unregistered metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TransportMetrics counts transport-level events.
type TransportMetrics struct {
	FramesDispatched *prometheus.CounterVec
	ParseErrors      prometheus.Counter
	Reconnects       prometheus.Counter
	PublishesDropped prometheus.Counter
}

// NewTransportMetrics builds and registers the transport counters.
func NewTransportMetrics(reg prometheus.Registerer) *TransportMetrics {
	factory := promauto.With(reg)
	return &TransportMetrics{
		FramesDispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skein",
			Subsystem: "transport",
			Name:      "frames_dispatched_total",
			Help:      "Well-formed inbound frames fanned out to subscribers, by topic.",
		}, []string{"topic"}),
		ParseErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "skein",
			Subsystem: "transport",
			Name:      "parse_errors_total",
			Help:      "Inbound frames discarded because the envelope failed to parse.",
		}),
		Reconnects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "skein",
			Subsystem: "transport",
			Name:      "reconnects_total",
			Help:      "Reconnect attempts armed after a dial failure or socket loss.",
		}),
		PublishesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "skein",
			Subsystem: "transport",
			Name:      "publishes_dropped_total",
			Help:      "Outbound messages dropped because no socket was up.",
		}),
	}
}

// NopTransportMetrics returns counters that are never exposed anywhere.
func NopTransportMetrics() *TransportMetrics {
	return NewTransportMetrics(nil)
}
