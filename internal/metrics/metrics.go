// Package metrics exposes gateway counters to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Gateway groups the chat gateway collectors. A nil *Gateway records nothing.
type Gateway struct {
	activeConns   prometheus.Gauge
	connsTotal    prometheus.Counter
	authFailures  *prometheus.CounterVec
	events        *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	dropped       prometheus.Counter
	kicked        prometheus.Counter
	messages      prometheus.Counter
	notices       *prometheus.CounterVec
	offlineCounts prometheus.Histogram
}

func NewGateway(reg prometheus.Registerer) *Gateway {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Gateway{
		activeConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chat_connections_active",
			Help: "Current number of open websocket connections.",
		}),
		connsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_connections_total",
			Help: "Total number of connections accepted since start.",
		}),
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_auth_failures_total",
			Help: "Connections terminated during authentication.",
		}, []string{"reason"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_events_total",
			Help: "Inbound events by name and outcome.",
		}, []string{"event", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chat_event_latency_seconds",
			Help:    "Latency for handling inbound events.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}, []string{"event"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_frames_dropped_total",
			Help: "Broadcast frames dropped on full send buffers.",
		}),
		kicked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_slow_connections_kicked_total",
			Help: "Connections closed by the backpressure policy.",
		}),
		messages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_messages_stored_total",
			Help: "Chat messages persisted and broadcast.",
		}),
		notices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_offline_notices_total",
			Help: "Offline reconciliation results.",
		}, []string{"result"}),
		offlineCounts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chat_offline_recipients",
			Help:    "Offline recipients per published notice.",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		}),
	}

	reg.MustRegister(
		m.activeConns,
		m.connsTotal,
		m.authFailures,
		m.events,
		m.latency,
		m.dropped,
		m.kicked,
		m.messages,
		m.notices,
		m.offlineCounts,
	)
	return m
}

func (m *Gateway) ConnectionOpened() {
	if m == nil {
		return
	}
	m.activeConns.Inc()
	m.connsTotal.Inc()
}

func (m *Gateway) ConnectionClosed() {
	if m == nil {
		return
	}
	m.activeConns.Dec()
}

func (m *Gateway) AuthFailed(reason string) {
	if m == nil {
		return
	}
	m.authFailures.WithLabelValues(reason).Inc()
}

// Event records one handled inbound event.
func (m *Gateway) Event(event, outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(event, outcome).Inc()
	m.latency.WithLabelValues(event).Observe(time.Since(started).Seconds())
}

func (m *Gateway) FramesDropped(n int) {
	if m == nil || n == 0 {
		return
	}
	m.dropped.Add(float64(n))
}

func (m *Gateway) Kicked() {
	if m == nil {
		return
	}
	m.kicked.Inc()
}

func (m *Gateway) MessageStored() {
	if m == nil {
		return
	}
	m.messages.Inc()
}

// Notice records a reconciliation pass: "published", "none" or "failed".
func (m *Gateway) Notice(result string, recipients int) {
	if m == nil {
		return
	}
	m.notices.WithLabelValues(result).Inc()
	if result == "published" {
		m.offlineCounts.Observe(float64(recipients))
	}
}
