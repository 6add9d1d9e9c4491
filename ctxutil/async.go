package ctxutil

import (
	"context"
	"time"
)

// DefaultAsyncTimeout bounds background work started on behalf of a request.
const DefaultAsyncTimeout = 5 * time.Second

// WithAsyncContext derives a context for work that outlives the caller.
// Trace and session values are kept; the parent's cancellation is not.
func WithAsyncContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultAsyncTimeout
	}
	return context.WithTimeout(context.WithoutCancel(parent), timeout)
}
