package tagfind

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation outcomes used as the status label.
const (
	statusOK       = "ok"
	statusRejected = "rejected"
	statusIgnored  = "ignored"
)

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	visible    prometheus.Histogram
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tagfind",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Total session operations by type and status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tagfind",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "Session operation duration in seconds.",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}, []string{"operation"}),
		visible: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tagfind",
			Subsystem: "sdk",
			Name:      "visible_candidates",
			Help:      "Visible candidate count after a tag edit.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 1000},
		}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.visible); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("tagfind: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("tagfind: register metric: %w", err)
	}
	return nil
}

// observer provides logging and metrics for session operations.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

// edited records a tag edit and the resulting visible count.
func (o *observer) edited(session, op string, start time.Time, status string, visible int) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
		if status == statusOK {
			o.metrics.visible.Observe(float64(visible))
		}
	}

	if o.logger != nil {
		o.logger.Debug("tags edited",
			"session", session,
			"op", op,
			"status", status,
			"visible", visible,
			"duration", dur,
		)
	}
}

// committed records a commit attempt.
func (o *observer) committed(session, op string, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	status := statusOK
	if err != nil {
		status = statusRejected
	}

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	if o.logger != nil {
		if err != nil {
			o.logger.Debug("commit rejected",
				"session", session,
				"op", op,
				"error", err,
			)
		} else {
			o.logger.Info("session resolved",
				"session", session,
				"op", op,
				"duration", dur,
			)
		}
	}
}
