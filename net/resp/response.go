package resp

import (
	"encoding/json"
	"net/http"

	"github.com/ncobase/unicourse/ecode"
)

// Exception represents the response structure.
type Exception struct {
	Status  int    `json:"status,omitempty"`  // HTTP status
	Code    int    `json:"code,omitempty"`    // Business code
	Message string `json:"message,omitempty"` // Message
	Errors  any    `json:"errors,omitempty"`  // Validation errors
	Data    any    `json:"data,omitempty"`    // Response data
}

// Success handles success responses.
func Success(w http.ResponseWriter, data ...any) {
	WithStatusCode(w, http.StatusOK, data...)
}

// WithStatusCode handles success responses with custom status code.
func WithStatusCode(w http.ResponseWriter, statusCode int, data ...any) {
	if statusCode < 200 || statusCode >= 400 {
		Fail(w, &Exception{Status: statusCode, Code: ecode.RequestErr})
		return
	}

	var payload any = map[string]any{"message": "ok"}
	if len(data) > 0 && data[0] != nil {
		if msg, ok := data[0].(string); ok {
			payload = map[string]any{"message": msg}
		} else {
			payload = data[0]
		}
	}
	writeJSON(w, statusCode, payload)
}

// Fail handles failure responses.
func Fail(w http.ResponseWriter, r *Exception) {
	if r == nil {
		r = &Exception{
			Status:  http.StatusInternalServerError,
			Code:    ecode.ServerErr,
			Message: ecode.Text(ecode.ServerErr),
		}
	}
	status, body := buildFailureResponse(r)
	writeJSON(w, status, body)
}

func buildFailureResponse(r *Exception) (int, *Exception) {
	code := ecode.RequestErr
	if r.Code != 0 {
		code = r.Code
	}
	status := ecode.ToHTTPStatus(code)
	if r.Status != 0 {
		status = r.Status
	}
	message := ecode.Text(code)
	if r.Message != "" {
		message = r.Message
	}
	return status, &Exception{Code: code, Message: message, Errors: r.Errors}
}

// BadRequest writes a 400 with optional error details.
func BadRequest(w http.ResponseWriter, message string, errs ...any) {
	fail(w, http.StatusBadRequest, ecode.RequestErr, message, errs...)
}

// NotFound writes a 404.
func NotFound(w http.ResponseWriter, message string) {
	fail(w, http.StatusNotFound, ecode.NotFound, message)
}

// InternalServer writes a 500.
func InternalServer(w http.ResponseWriter, message string) {
	fail(w, http.StatusInternalServerError, ecode.ServerErr, message)
}

// ServiceUnavailable writes a 503.
func ServiceUnavailable(w http.ResponseWriter, message string) {
	fail(w, http.StatusServiceUnavailable, ecode.Unavailable, message)
}

func fail(w http.ResponseWriter, status, code int, message string, errs ...any) {
	e := &Exception{Status: status, Code: code, Message: message}
	if len(errs) > 0 {
		e.Errors = errs[0]
	}
	Fail(w, e)
}

func writeJSON(w http.ResponseWriter, code int, res any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		http.Error(w, "Failed to encode JSON response", http.StatusInternalServerError)
	}
}
