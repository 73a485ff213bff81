package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kova98/userlens.api/enums"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	analyses       *prometheus.CounterVec
	duration       prometheus.Histogram
	redditRequests *prometheus.CounterVec
	redditRetries  prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		analyses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "userlens_analyses_total",
			Help: "Analysis runs by outcome.",
		}, []string{"outcome"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "userlens_analysis_duration_seconds",
			Help:    "Wall time of a fetch-then-analyze run.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
		redditRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "userlens_reddit_requests_total",
			Help: "Requests sent to reddit by endpoint and status code.",
		}, []string{"endpoint", "status"}),
		redditRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "userlens_reddit_retries_total",
			Help: "Reddit requests that were retried after a rate limit or transient failure.",
		}),
	}
}

func (m *Metrics) ObserveAnalysis(outcome enums.Outcome, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(string(outcome)).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRedditRequest(endpoint string, status int) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.redditRequests.WithLabelValues(endpoint, label).Inc()
}

func (m *Metrics) ObserveRetry() {
	if m == nil {
		return
	}
	m.redditRetries.Inc()
}
