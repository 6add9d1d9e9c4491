package ctxutil

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ctxKey string

const (
	sessionKey ctxKey = "loader_session"
	traceKey   ctxKey = "trace_id"

	// TraceIDKey is the log field and gin key carrying the trace ID.
	TraceIDKey = "trace_id"
)

// GetTraceID returns the trace ID stored by SetTraceID. A *gin.Context
// is also searched for a value set under TraceIDKey.
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(traceKey).(string); ok {
		return id
	}
	if c, ok := ctx.(*gin.Context); ok {
		return c.GetString(TraceIDKey)
	}
	return ""
}

// SetTraceID stores traceID in the returned context.
func SetTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey, traceID)
}

// EnsureTraceID returns ctx with a trace ID, generating one when missing.
func EnsureTraceID(ctx context.Context) (context.Context, string) {
	if traceID := GetTraceID(ctx); traceID != "" {
		return ctx, traceID
	}
	traceID := uuid.NewString()
	return SetTraceID(ctx, traceID), traceID
}

// WithSessionID tags the context with a loader session identifier.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey, id)
}

// GetSessionID returns the loader session identifier, if any.
func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionKey).(string); ok {
		return id
	}
	return ""
}
