// Package logging provides request ID generation and context propagation so
// every log line on a forwarding path can be correlated.
package logging

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const requestIDKey contextKey = "requestId"

// GenerateRequestID creates a fresh "req-" prefixed request ID.
func GenerateRequestID() string {
	return "req-" + uuid.New().String()
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
// Returns empty string if not found.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
