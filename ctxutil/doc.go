// Package ctxutil carries request-scoped values: trace IDs (google/uuid)
// and the loader session ID.
//
//	ctx, traceID := ctxutil.EnsureTraceID(ctx)
//	ctx = ctxutil.WithSessionID(ctx, sessionID)
//
// Detached contexts for fire-and-forget work keep those values but not the
// caller's cancellation:
//
//	actx, cancel := ctxutil.WithAsyncContext(ctx, 0)
//	defer cancel()
package ctxutil
