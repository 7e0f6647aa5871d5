package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetry(t *testing.T) {
	noDelay := &FixedBackoff{Delay: 0}

	tests := []struct {
		name      string
		attempts  int
		failUntil int
		wantCalls int
		wantErr   bool
	}{
		{name: "first try", attempts: 3, failUntil: 0, wantCalls: 1},
		{name: "succeeds on retry", attempts: 3, failUntil: 2, wantCalls: 3},
		{name: "exhausted", attempts: 3, failUntil: 5, wantCalls: 3, wantErr: true},
		{name: "zero attempts runs once", attempts: 0, failUntil: 5, wantCalls: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), tt.attempts, noDelay, func(attempt int) error {
				calls++
				if attempt < tt.failUntil {
					return errors.New("transient")
				}
				return nil
			})

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr {
				assert.EqualError(t, err, "transient")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := Retry(ctx, 5, &FixedBackoff{Delay: time.Hour}, func(attempt int) error {
		calls++
		cancel()
		return errors.New("down")
	})

	assert.EqualError(t, err, "down")
	assert.Equal(t, 1, calls)
}
