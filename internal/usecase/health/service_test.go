package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

// --- Mocks ---

type mockStorePinger struct {
	err error
}

func (m *mockStorePinger) Ping(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_Healthy(t *testing.T) {
	svc := New(&mockStorePinger{}, "redis")
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["redis"] != CheckOK {
		t.Errorf("expected redis %q, got %q", CheckOK, r.Checks["redis"])
	}
}

func TestCheck_StoreError(t *testing.T) {
	svc := New(&mockStorePinger{err: errors.New("conn refused")}, "valkey")
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["valkey"] != CheckError {
		t.Errorf("expected valkey %q, got %q", CheckError, r.Checks["valkey"])
	}
}

func TestCheck_DefaultStoreName(t *testing.T) {
	svc := New(&mockStorePinger{}, "")
	r := svc.Check(context.Background())

	if _, ok := r.Checks["store"]; !ok {
		t.Errorf("expected check named %q, got %v", "store", r.Checks)
	}
}

type slowPinger struct{}

func (slowPinger) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestCheck_PingTimeout(t *testing.T) {
	svc := New(slowPinger{}, "redis", WithTimeout(10*time.Millisecond))

	start := time.Now()
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("check should give up after the timeout, took %s", elapsed)
	}
}
