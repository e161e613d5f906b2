// Package metrics exposes the core's counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/felixgeelhaar/hireline/pkg/push"
)

// Metrics holds the hireline collectors. It implements push.Observer and
// application.Observer.
type Metrics struct {
	registry *prometheus.Registry

	FramesDelivered *prometheus.CounterVec
	FramesDropped   *prometheus.CounterVec
	Reconnects      prometheus.Counter
	PushState       prometheus.Gauge
	Evictions       prometheus.Counter
	Polls           *prometheus.CounterVec
	PollDuration    prometheus.Histogram
	ChatStreams     *prometheus.CounterVec
}

// New registers the collectors on a fresh registry that also carries the Go
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FramesDelivered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hireline_push_frames_delivered_total",
			Help: "Push frames handed to the subscriber, by kind",
		}, []string{"kind"}),
		FramesDropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hireline_push_frames_dropped_total",
			Help: "Push frames dropped before delivery, by kind and reason",
		}, []string{"kind", "reason"}),
		Reconnects: f.NewCounter(prometheus.CounterOpts{
			Name: "hireline_push_reconnects_total",
			Help: "Push channel reconnection attempts",
		}),
		PushState: f.NewGauge(prometheus.GaugeOpts{
			Name: "hireline_push_state",
			Help: "Push channel state (0=closed, 1=connecting, 2=open)",
		}),
		Evictions: f.NewCounter(prometheus.CounterOpts{
			Name: "hireline_audit_evicted_total",
			Help: "Audit events evicted from the ring buffer",
		}),
		Polls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hireline_snapshot_polls_total",
			Help: "Snapshot refreshes, by result",
		}, []string{"result"}),
		PollDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "hireline_snapshot_poll_seconds",
			Help:    "Snapshot refresh latency",
			Buckets: prometheus.DefBuckets,
		}),
		ChatStreams: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hireline_chat_streams_total",
			Help: "Chat replies, by result",
		}, []string{"result"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// StateChanged records the push channel state.
func (m *Metrics) StateChanged(_, to push.State) {
	m.PushState.Set(stateValue(to))
}

// FrameDelivered counts a delivered frame.
func (m *Metrics) FrameDelivered(kind string) {
	m.FramesDelivered.WithLabelValues(kind).Inc()
}

// FrameDropped counts a dropped frame.
func (m *Metrics) FrameDropped(kind, reason string) {
	m.FramesDropped.WithLabelValues(kind, reason).Inc()
}

// Reconnecting counts a reconnection attempt.
func (m *Metrics) Reconnecting() {
	m.Reconnects.Inc()
}

// Polled records one snapshot refresh.
func (m *Metrics) Polled(d time.Duration, err error) {
	m.PollDuration.Observe(d.Seconds())
	if err != nil {
		m.Polls.WithLabelValues("partial").Inc()
		return
	}
	m.Polls.WithLabelValues("ok").Inc()
}

// AuditEvicted counts one evicted audit event.
func (m *Metrics) AuditEvicted() {
	m.Evictions.Inc()
}

// ChatFinished counts a finished chat reply.
func (m *Metrics) ChatFinished(failed bool) {
	if failed {
		m.ChatStreams.WithLabelValues("fallback").Inc()
		return
	}
	m.ChatStreams.WithLabelValues("ok").Inc()
}

func stateValue(s push.State) float64 {
	switch s {
	case push.StateConnecting:
		return 1
	case push.StateOpen:
		return 2
	default:
		return 0
	}
}
