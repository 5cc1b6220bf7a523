package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// isTransientError determines if an error is worth a redelivery. Anything
// not recognized as transient is treated as permanent.
func isTransientError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return isRetryableStatusCode(apiErr.HTTPStatusCode)
	}

	errStr := err.Error()

	// Timeout errors are temporary
	if strings.Contains(errStr, "context deadline exceeded") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "Timeout") {
		return true
	}

	// Network errors are temporary
	if strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "EOF") ||
		strings.Contains(errStr, "reset by peer") {
		return true
	}

	return false
}

// isRetryableStatusCode determines if an HTTP status warrants retry
func isRetryableStatusCode(statusCode int) bool {
	// Permanent errors: 4xx except 429 (rate limit)
	if statusCode >= 400 && statusCode < 500 {
		return statusCode == 429
	}
	if statusCode >= 500 && statusCode < 600 {
		return true
	}
	return false
}
