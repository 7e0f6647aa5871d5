package shutdown

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"
)

// InFlightTracker lets shutdown wait for callbacks that are still writing to the
// ledger or sending mail
type InFlightTracker struct {
	mu       sync.Mutex
	wg       sync.WaitGroup
	draining bool
	logger   *zap.Logger
	name     string
}

// NewInFlightTracker creates a new in-flight work tracker
func NewInFlightTracker(name string, logger *zap.Logger) *InFlightTracker {
	return &InFlightTracker{logger: logger, name: name}
}

// Add registers one unit of work. It returns false once shutdown has started.
func (t *InFlightTracker) Add() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.draining {
		return false
	}
	t.wg.Add(1)
	return true
}

// Draining reports whether Shutdown has been called
func (t *InFlightTracker) Draining() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.draining
}

// Done marks one unit of work complete
func (t *InFlightTracker) Done() {
	t.wg.Done()
}

// Middleware rejects requests with 503 once draining and tracks the rest
func (t *InFlightTracker) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !t.Add() {
			http.Error(w, "Service is shutting down", http.StatusServiceUnavailable)
			return
		}
		defer t.Done()
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops accepting work and waits for in-flight work or ctx
func (t *InFlightTracker) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	t.draining = true
	t.mu.Unlock()

	t.logger.Info("Waiting for in-flight work to complete", zap.String("tracker", t.name))

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		t.logger.Warn("Shutdown timeout - some work may be incomplete", zap.String("tracker", t.name))
		return ctx.Err()
	}
}
