// pkg/health/health_test.go
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// stubCheck is a configurable health check for tests.
type stubCheck struct {
	name string
	err  error
}

func (s *stubCheck) Name() string                    { return s.name }
func (s *stubCheck) Check(ctx context.Context) error { return s.err }

func TestCheckHealth_Aggregation(t *testing.T) {
	t.Run("all_healthy", func(t *testing.T) {
		hc := NewHealthChecker()
		hc.AddCheck(&stubCheck{name: "a"})
		hc.AddCheck(&stubCheck{name: "b"})

		status := hc.CheckHealth(context.Background())
		if status.Status != "healthy" {
			t.Errorf("status = %q, expected healthy", status.Status)
		}
		if len(status.Checks) != 2 {
			t.Errorf("reported %d checks, expected 2", len(status.Checks))
		}
	})

	t.Run("one_failure_marks_unhealthy", func(t *testing.T) {
		hc := NewHealthChecker()
		hc.AddCheck(&stubCheck{name: "a"})
		hc.AddCheck(&stubCheck{name: "b", err: errors.New("broken")})

		status := hc.CheckHealth(context.Background())
		if status.Status != "unhealthy" {
			t.Errorf("status = %q, expected unhealthy", status.Status)
		}
		if status.Checks["b"].Message != "broken" {
			t.Errorf("failing check message = %q, expected broken", status.Checks["b"].Message)
		}
		if status.Checks["a"].Status != "healthy" {
			t.Errorf("passing check status = %q, expected healthy", status.Checks["a"].Status)
		}
	})

	t.Run("no_checks_is_healthy", func(t *testing.T) {
		hc := NewHealthChecker()
		if status := hc.CheckHealth(context.Background()); status.Status != "healthy" {
			t.Errorf("status = %q, expected healthy with no checks", status.Status)
		}
	})
}

func TestAddRemoveCheck(t *testing.T) {
	hc := NewHealthChecker()
	hc.AddCheck(&stubCheck{name: "flaky", err: errors.New("down")})

	if status := hc.CheckHealth(context.Background()); status.Status != "unhealthy" {
		t.Fatalf("status = %q before removal, expected unhealthy", status.Status)
	}

	hc.RemoveCheck("flaky")
	if status := hc.CheckHealth(context.Background()); status.Status != "healthy" {
		t.Errorf("status = %q after removal, expected healthy", status.Status)
	}
}

func TestLivenessHandler(t *testing.T) {
	hc := NewHealthChecker()
	// Liveness ignores check results entirely.
	hc.AddCheck(&stubCheck{name: "down", err: errors.New("down")})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	hc.LivenessHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status code = %d, expected %d", rec.Code, http.StatusOK)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["status"] != "alive" {
		t.Errorf("body status = %q, expected alive", body["status"])
	}
}

func TestReadinessHandler(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		hc := NewHealthChecker()
		hc.AddCheck(&stubCheck{name: "ok"})

		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		rec := httptest.NewRecorder()
		hc.ReadinessHandler(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status code = %d, expected %d", rec.Code, http.StatusOK)
		}
	})

	t.Run("not_ready", func(t *testing.T) {
		hc := NewHealthChecker()
		hc.AddCheck(&stubCheck{name: "bad", err: errors.New("down")})

		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		rec := httptest.NewRecorder()
		hc.ReadinessHandler(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status code = %d, expected %d", rec.Code, http.StatusServiceUnavailable)
		}
		var status HealthStatus
		if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if status.Status != "unhealthy" {
			t.Errorf("body status = %q, expected unhealthy", status.Status)
		}
	})
}

func TestSimulationHealthCheck(t *testing.T) {
	running := false
	check := NewSimulationHealthCheck(func() bool { return running })

	if check.Name() != "simulation" {
		t.Errorf("Name() = %q, expected simulation", check.Name())
	}
	if err := check.Check(context.Background()); err == nil {
		t.Error("Check() passed for a stopped simulation")
	}

	running = true
	if err := check.Check(context.Background()); err != nil {
		t.Errorf("Check() failed for a running simulation: %v", err)
	}
}

func TestTickHealthCheck(t *testing.T) {
	t.Run("recent_tick", func(t *testing.T) {
		check := NewTickHealthCheck(func() time.Time { return time.Now() }, 5*time.Second)
		if err := check.Check(context.Background()); err != nil {
			t.Errorf("Check() failed for a fresh tick: %v", err)
		}
	})

	t.Run("stalled_tick", func(t *testing.T) {
		stale := time.Now().Add(-time.Minute)
		check := NewTickHealthCheck(func() time.Time { return stale }, 5*time.Second)
		if err := check.Check(context.Background()); err == nil {
			t.Error("Check() passed for a stalled tick loop")
		}
	})
}

func TestMemoryHealthCheck(t *testing.T) {
	t.Run("within_limit", func(t *testing.T) {
		check := NewMemoryHealthCheck(500, func() int64 { return 100 })
		if err := check.Check(context.Background()); err != nil {
			t.Errorf("Check() failed within the limit: %v", err)
		}
	})

	t.Run("over_limit", func(t *testing.T) {
		check := NewMemoryHealthCheck(500, func() int64 { return 600 })
		if err := check.Check(context.Background()); err == nil {
			t.Error("Check() passed over the limit")
		}
	})
}
