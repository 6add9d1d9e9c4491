package resp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ncobase/unicourse/ecode"
)

func TestSuccessWritesPayload(t *testing.T) {
	w := httptest.NewRecorder()
	Success(w, []string{"a", "b"})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got []string
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "a" {
		t.Errorf("body = %v", got)
	}
}

func TestSuccessMessageOnly(t *testing.T) {
	w := httptest.NewRecorder()
	WithStatusCode(w, http.StatusCreated, "created")

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	var got map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got["message"] != "created" {
		t.Errorf("body = %v", got)
	}
}

func TestFailures(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		code   int
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "bad", map[string]string{"email": "invalid"}) }, http.StatusBadRequest, ecode.RequestErr},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "missing") }, http.StatusNotFound, ecode.NotFound},
		{"internal", func(w http.ResponseWriter) { InternalServer(w, "boom") }, http.StatusInternalServerError, ecode.ServerErr},
		{"nil exception", func(w http.ResponseWriter) { Fail(w, nil) }, http.StatusInternalServerError, ecode.ServerErr},
		{"status from code", func(w http.ResponseWriter) { Fail(w, &Exception{Code: ecode.Unavailable}) }, http.StatusServiceUnavailable, ecode.Unavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			var e Exception
			if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
				t.Fatal(err)
			}
			if e.Code != tt.code {
				t.Errorf("code = %d, want %d", e.Code, tt.code)
			}
			if e.Message == "" {
				t.Error("message should not be empty")
			}
		})
	}
}
