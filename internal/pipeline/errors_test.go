package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestIsTransientError(t *testing.T) {
	transient := []error{
		context.DeadlineExceeded,
		errors.New("dial tcp: connection refused"),
		errors.New("unexpected EOF"),
		errors.New("read: connection reset by peer"),
		errors.New("Client.Timeout exceeded while awaiting headers"),
		&openai.APIError{HTTPStatusCode: 429},
		&openai.APIError{HTTPStatusCode: 500},
		&openai.APIError{HTTPStatusCode: 503},
		fmt.Errorf("wrapped: %w", &openai.APIError{HTTPStatusCode: 502}),
	}
	for _, err := range transient {
		assert.True(t, isTransientError(err), "expected transient: %v", err)
	}

	permanent := []error{
		nil,
		errors.New("invalid request"),
		&openai.APIError{HTTPStatusCode: 400},
		&openai.APIError{HTTPStatusCode: 401},
		&openai.APIError{HTTPStatusCode: 404},
	}
	for _, err := range permanent {
		assert.False(t, isTransientError(err), "expected permanent: %v", err)
	}
}

func TestIsRetryableStatusCode(t *testing.T) {
	assert.True(t, isRetryableStatusCode(429))
	assert.True(t, isRetryableStatusCode(500))
	assert.True(t, isRetryableStatusCode(599))
	assert.False(t, isRetryableStatusCode(400))
	assert.False(t, isRetryableStatusCode(200))
	assert.False(t, isRetryableStatusCode(302))
}
