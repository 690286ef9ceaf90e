package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "myspace_bot"

// Metrics records bot activity. A nil *Metrics is a valid no-op recorder.
type Metrics struct {
	updates         *prometheus.CounterVec
	flowsStarted    *prometheus.CounterVec
	flowsFinished   *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	backendErrors   *prometheus.CounterVec
	photoRelays     *prometheus.CounterVec
	reconnects      *prometheus.CounterVec
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// Default returns the recorder bound to the default registry
func Default() *Metrics {
	defaultMetricsOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// New registers the bot collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		updates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Telegram updates received, by kind and whether they were accepted.",
		}, []string{"kind", "result"}),
		flowsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flows_started_total",
			Help:      "Conversation flows started.",
		}, []string{"flow"}),
		flowsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flows_finished_total",
			Help:      "Conversation flows finalized, by outcome.",
		}, []string{"flow", "result"}),
		backendDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Latency of backend API calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		backendErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_request_errors_total",
			Help:      "Failed backend API calls.",
		}, []string{"operation"}),
		photoRelays: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photo_relays_total",
			Help:      "Photos relayed from Telegram to backend storage.",
		}, []string{"result"}),
		reconnects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconnects_total",
			Help:      "Bot reconnect attempts after a token change.",
		}, []string{"result"}),
	}
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

// RecordUpdate counts an inbound update
func (m *Metrics) RecordUpdate(kind string, accepted bool) {
	if m == nil {
		return
	}
	label := "accepted"
	if !accepted {
		label = "dropped"
	}
	m.updates.WithLabelValues(kind, label).Inc()
}

// RecordFlowStarted counts a flow start
func (m *Metrics) RecordFlowStarted(flow string) {
	if m == nil {
		return
	}
	m.flowsStarted.WithLabelValues(flow).Inc()
}

// RecordFlowFinished counts a finalized flow
func (m *Metrics) RecordFlowFinished(flow string, err error) {
	if m == nil {
		return
	}
	m.flowsFinished.WithLabelValues(flow, result(err == nil)).Inc()
}

// RecordBackendCall tracks backend latency and failures
func (m *Metrics) RecordBackendCall(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.backendDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.backendErrors.WithLabelValues(operation).Inc()
	}
}

// RecordPhotoRelay counts photo relay outcomes
func (m *Metrics) RecordPhotoRelay(ok bool) {
	if m == nil {
		return
	}
	m.photoRelays.WithLabelValues(result(ok)).Inc()
}

// RecordReconnect counts reconnect attempts
func (m *Metrics) RecordReconnect(err error) {
	if m == nil {
		return
	}
	m.reconnects.WithLabelValues(result(err == nil)).Inc()
}
