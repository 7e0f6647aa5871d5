package observability

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/kevin07696/intesa-checkout/pkg/encoding"
)

// Pinger is satisfied by *pgxpool.Pool and by adapters wrapping a go-redis client
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

// Ping calls f
func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// HealthStatus represents the health status of the service
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// HealthChecker manages health checks for the service
type HealthChecker struct {
	checks  map[string]Pinger
	timeout time.Duration
}

// NewHealthChecker creates a HealthChecker over named dependencies; nil entries are reported as not configured
func NewHealthChecker(checks map[string]Pinger) *HealthChecker {
	return &HealthChecker{
		checks:  checks,
		timeout: 2 * time.Second,
	}
}

// Check pings every dependency and returns the aggregate status
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]string, len(names))
	overallStatus := "healthy"

	for _, name := range names {
		pinger := h.checks[name]
		if pinger == nil {
			results[name] = "not configured"
			continue
		}

		pingCtx, cancel := context.WithTimeout(ctx, h.timeout)
		err := pinger.Ping(pingCtx)
		cancel()

		if err != nil {
			results[name] = "unhealthy: " + err.Error()
			overallStatus = "unhealthy"
		} else {
			results[name] = "healthy"
		}
	}

	return HealthStatus{
		Status:    overallStatus,
		Timestamp: time.Now().UTC(),
		Checks:    results,
	}
}

// HealthHandler returns an HTTP handler for health checks
func (h *HealthChecker) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := h.Check(r.Context())

		body, err := encoding.EncodeJSON(status)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if status.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_, _ = w.Write(body)
	}
}
