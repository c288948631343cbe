package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service, plus a
// sliding latency window for the perf endpoint.
type Metrics struct {
	SubmissionsAccepted *prometheus.CounterVec
	SubmissionsRejected *prometheus.CounterVec
	InternalErrors      prometheus.Counter
	StoreErrors         *prometheus.CounterVec
	FeedSubscribers     prometheus.Gauge
	FeedDropped         prometheus.Counter
	SubmitLatency       prometheus.Histogram

	submitStages *latencyWindow
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		submitStages: newLatencyWindow(256),
		SubmissionsAccepted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_accepted_total",
			Help:      "Accepted submissions by zodiac sign.",
		}, []string{"sign"}),
		SubmissionsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_rejected_total",
			Help:      "Rejected submissions by reason.",
		}, []string{"reason"}),
		InternalErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "internal_errors_total",
			Help:      "Requests that failed on an internal invariant rather than user input.",
		}),
		StoreErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Submission store failures by operation.",
		}, []string{"op"}),
		FeedSubscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_subscribers",
			Help:      "Connected live-feed WebSocket clients.",
		}),
		FeedDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_dropped_events_total",
			Help:      "Feed events dropped because a subscriber could not keep up.",
		}),
		SubmitLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submit_latency_ms",
			Help:      "End-to-end submit handling latency in milliseconds.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
		}),
	}
}

func (m *Metrics) ObserveSubmitLatency(d time.Duration) {
	m.SubmitLatency.Observe(float64(d.Milliseconds()))
	m.ObserveStageLatency(StageTotal, d)
}

// ObserveStageLatency records one pipeline stage duration in the
// sliding window.
func (m *Metrics) ObserveStageLatency(stage string, d time.Duration) {
	if m.submitStages == nil {
		return
	}
	m.submitStages.Observe(stage, float64(d.Nanoseconds())/1e6)
}

// SnapshotSubmitStages summarizes the recent per-stage latencies.
func (m *Metrics) SnapshotSubmitStages() LatencySnapshot {
	if m.submitStages == nil {
		return LatencySnapshot{}
	}
	return m.submitStages.Snapshot()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
