package health

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tagfind/internal/logger"
)

// DefaultTimeout bounds a single store ping.
const DefaultTimeout = 2 * time.Second

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store     StorePinger
	storeName string
	timeout   time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a Service. storeName labels the store check ("memory", "redis", "valkey").
func New(store StorePinger, storeName string, opts ...Option) *Service {
	if storeName == "" {
		storeName = "store"
	}
	s := &Service{store: store, storeName: storeName, timeout: DefaultTimeout}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.store.Ping(pingCtx); err != nil {
		logger.FromContext(ctx).Warn("Health check failed",
			zap.String("check", s.storeName),
			zap.Error(err),
		)
		checks[s.storeName] = CheckError
	} else {
		checks[s.storeName] = CheckOK
	}

	// Sessions live only in the store, so a failing store leaves nothing to serve.
	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Unhealthy
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
