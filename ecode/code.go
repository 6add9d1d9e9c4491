package ecode

import (
	"net/http"
	"sync"
)

// Business codes
const (
	Success     = 0
	RequestErr  = -400
	ParamErr    = -401
	NotFound    = -404
	Conflict    = -409
	ServerErr   = -500
	Unavailable = -503
	Deadline    = -504
)

var (
	mu       sync.RWMutex
	messages = map[int]string{
		Success:     "ok",
		RequestErr:  "Invalid request",
		ParamErr:    "Invalid parameters",
		NotFound:    "Resource not found",
		Conflict:    "Resource conflict",
		ServerErr:   "Internal server error",
		Unavailable: "Service unavailable",
		Deadline:    "Deadline exceeded",
	}
)

// Register adds or replaces the message for a code.
func Register(code int, message string) {
	mu.Lock()
	defer mu.Unlock()
	messages[code] = message
}

// Text returns the message for a code, or the server error message for
// unknown codes.
func Text(code int) string {
	mu.RLock()
	defer mu.RUnlock()
	if m, ok := messages[code]; ok {
		return m
	}
	return messages[ServerErr]
}

// ToHTTPStatus maps a business code to an HTTP status.
func ToHTTPStatus(code int) int {
	switch code {
	case Success:
		return http.StatusOK
	case RequestErr, ParamErr:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Unavailable:
		return http.StatusServiceUnavailable
	case Deadline:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
