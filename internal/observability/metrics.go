package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ConversationsProcessed *prometheus.CounterVec
	StageFailures          *prometheus.CounterVec
	ProfilesPublished      prometheus.Counter
	EscalationsDetected    prometheus.Counter
	WatcherCycles          prometheus.Counter
	ProcessingDuration     prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ConversationsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversations_processed_total",
			Help:      "Completed pipeline runs by outcome.",
		}, []string{"outcome"}),
		StageFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Pipeline stage failures by stage.",
		}, []string{"stage"}),
		ProfilesPublished: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profiles_published_total",
			Help:      "Profiles uploaded to the agent knowledge base.",
		}),
		EscalationsDetected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "escalations_detected_total",
			Help:      "User turns flagged by the escalation classifier.",
		}),
		WatcherCycles: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watcher_cycles_total",
			Help:      "Completed watcher poll cycles.",
		}),
		ProcessingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "processing_duration_seconds",
			Help:      "End-to-end duration of one conversation pipeline run.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
	}
}

func (m *Metrics) ObserveProcessing(d time.Duration) {
	m.ProcessingDuration.Observe(d.Seconds())
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
