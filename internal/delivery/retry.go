package delivery

import (
	"math"
	"math/rand"
	"time"
)

// RetryStrategy defines exponential backoff for message redelivery
type RetryStrategy struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	Jitter      bool
}

// NewRetryStrategy creates a RetryStrategy with defaults
func NewRetryStrategy(maxAttempts int) *RetryStrategy {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &RetryStrategy{
		MaxAttempts: maxAttempts,
		BaseBackoff: 1 * time.Second,
		MaxBackoff:  30 * time.Second,
		Jitter:      true,
	}
}

// Backoff returns the delay before the given attempt is redelivered.
// Grows as 1s, 2s, 4s, 8s... capped at MaxBackoff.
func (s *RetryStrategy) Backoff(attempt int) time.Duration {
	if attempt <= 0 {
		return s.BaseBackoff
	}

	multiplier := math.Pow(2, float64(attempt-1))
	backoff := time.Duration(multiplier) * s.BaseBackoff
	if backoff > s.MaxBackoff {
		backoff = s.MaxBackoff
	}

	if s.Jitter {
		// Spread redeliveries by up to 10% either way
		jitterRange := backoff / 10
		if jitterRange > 0 {
			jitter := time.Duration(rand.Intn(int(jitterRange*2))) - jitterRange
			backoff += jitter
			if backoff < s.BaseBackoff {
				backoff = s.BaseBackoff
			}
		}
	}

	return backoff
}

// Exhausted reports whether the attempt count has used up the budget
func (s *RetryStrategy) Exhausted(attempt int) bool {
	return attempt >= s.MaxAttempts
}
