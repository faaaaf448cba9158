package metrics

import "github.com/prometheus/client_golang/prometheus"

// Commit modes and outcomes used as label values.
const (
	CommitModeExplicit = "explicit"
	CommitModeFirst    = "first_visible"

	CommitOutcomeResolved = "resolved"
	CommitOutcomeRepeated = "repeated"
	CommitOutcomeRejected = "rejected"
)

// Session Prometheus metrics.
var (
	SessionsStartedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tagfind",
			Name:      "sessions_started_total",
			Help:      "Total number of started find-by-tag sessions",
		},
	)

	CommitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tagfind",
			Name:      "commits_total",
			Help:      "Commit attempts by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	RecomputeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tagfind",
			Name:      "recompute_duration_seconds",
			Help:      "Visibility recompute duration in seconds",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
	)

	VisibleCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tagfind",
			Name:      "visible_candidates",
			Help:      "Visible candidate count after a tag edit",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 1000},
		},
	)
)

var sessionMetricsRegistered bool

// RegisterSessionMetrics registers Prometheus session metrics. Must be called once from main.
func RegisterSessionMetrics() {
	if sessionMetricsRegistered {
		return
	}
	prometheus.MustRegister(SessionsStartedTotal)
	prometheus.MustRegister(CommitsTotal)
	prometheus.MustRegister(RecomputeDuration)
	prometheus.MustRegister(VisibleCandidates)
	sessionMetricsRegistered = true
}

// NewActiveSessionsGauge reports count at scrape time, so sessions that
// expired without a request are never counted as live.
func NewActiveSessionsGauge(count func() int) prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "tagfind",
			Name:      "active_sessions",
			Help:      "Live sessions held by the in-memory store",
		},
		func() float64 { return float64(count()) },
	)
}

var activeSessionsRegistered bool

// RegisterActiveSessions registers the active sessions gauge backed by count.
// Only stores that can count their sessions cheaply should call it.
func RegisterActiveSessions(count func() int) {
	if activeSessionsRegistered {
		return
	}
	prometheus.MustRegister(NewActiveSessionsGauge(count))
	activeSessionsRegistered = true
}
