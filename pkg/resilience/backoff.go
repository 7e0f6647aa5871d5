package resilience

import (
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy returns how long to wait after a failed attempt (0-indexed)
type BackoffStrategy interface {
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff grows the delay by Multiplier per attempt up to MaxDelay,
// then spreads it by ±Jitter so concurrent callers do not retry in lockstep.
type ExponentialBackoff struct {
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
	Jitter     float64 // fraction of the delay, 0.1 means ±10%

	// random returns a value in [0, 1); nil uses math/rand
	random func() float64
}

// MailBackoff paces SMTP retries while the buyer waits on the callback page:
// about 250ms, then 500ms, never more than 2s.
func MailBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		BaseDelay:  250 * time.Millisecond,
		MaxDelay:   2 * time.Second,
		Multiplier: 2,
		Jitter:     0.1,
	}
}

// NextDelay returns BaseDelay * Multiplier^attempt, capped and jittered
func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt < 0 {
		return eb.BaseDelay
	}

	delay := math.Min(
		float64(eb.BaseDelay)*math.Pow(eb.Multiplier, float64(attempt)),
		float64(eb.MaxDelay),
	)

	if eb.Jitter > 0 {
		random := eb.random
		if random == nil {
			random = rand.Float64
		}
		delay += (random()*2 - 1) * delay * eb.Jitter
	}

	if delay < 0 {
		return eb.BaseDelay
	}
	return time.Duration(delay)
}

// FixedBackoff waits the same Delay after every attempt
type FixedBackoff struct {
	Delay time.Duration
}

// NextDelay returns Delay
func (fb *FixedBackoff) NextDelay(int) time.Duration {
	return fb.Delay
}
