package delivery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryStrategyBackoffGrowth(t *testing.T) {
	s := &RetryStrategy{
		MaxAttempts: 5,
		BaseBackoff: 1 * time.Second,
		MaxBackoff:  8 * time.Second,
		Jitter:      false,
	}

	assert.Equal(t, 1*time.Second, s.Backoff(0))
	assert.Equal(t, 1*time.Second, s.Backoff(1))
	assert.Equal(t, 2*time.Second, s.Backoff(2))
	assert.Equal(t, 4*time.Second, s.Backoff(3))
	assert.Equal(t, 8*time.Second, s.Backoff(4))
	// Capped at MaxBackoff
	assert.Equal(t, 8*time.Second, s.Backoff(10))
}

func TestRetryStrategyJitterBounds(t *testing.T) {
	s := &RetryStrategy{
		MaxAttempts: 5,
		BaseBackoff: 1 * time.Second,
		MaxBackoff:  30 * time.Second,
		Jitter:      true,
	}

	for i := 0; i < 100; i++ {
		backoff := s.Backoff(3) // nominal 4s, ±10%
		assert.GreaterOrEqual(t, backoff, 3500*time.Millisecond)
		assert.LessOrEqual(t, backoff, 4500*time.Millisecond)
	}
}

func TestRetryStrategyExhausted(t *testing.T) {
	s := NewRetryStrategy(3)

	assert.False(t, s.Exhausted(1))
	assert.False(t, s.Exhausted(2))
	assert.True(t, s.Exhausted(3))
	assert.True(t, s.Exhausted(4))
}

func TestNewRetryStrategyDefaults(t *testing.T) {
	s := NewRetryStrategy(0)
	assert.Equal(t, 5, s.MaxAttempts)
	assert.Equal(t, 1*time.Second, s.BaseBackoff)
	assert.True(t, s.Jitter)
}
