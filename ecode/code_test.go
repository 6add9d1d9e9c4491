package ecode

import (
	"net/http"
	"testing"
)

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		code int
		want int
	}{
		{Success, http.StatusOK},
		{RequestErr, http.StatusBadRequest},
		{ParamErr, http.StatusBadRequest},
		{NotFound, http.StatusNotFound},
		{Unavailable, http.StatusServiceUnavailable},
		{ServerErr, http.StatusInternalServerError},
		{-9999, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := ToHTTPStatus(tt.code); got != tt.want {
			t.Errorf("ToHTTPStatus(%d) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestTextAndRegister(t *testing.T) {
	if got := Text(-12345); got != Text(ServerErr) {
		t.Errorf("unknown code text = %q", got)
	}
	Register(-1001, "Lead already submitted")
	if got := Text(-1001); got != "Lead already submitted" {
		t.Errorf("registered text = %q", got)
	}
	if got := FieldIsInvalid("email"); got != "email invalid" {
		t.Errorf("FieldIsInvalid = %q", got)
	}
}

func TestFieldSkipsBlankNames(t *testing.T) {
	if got := FieldIsRequired(" ", "phone"); got != "phone required" {
		t.Errorf("FieldIsRequired = %q", got)
	}
	if got := FieldIsTooShort(); got != MsgTooShort {
		t.Errorf("FieldIsTooShort = %q", got)
	}
}
