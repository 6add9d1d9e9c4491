package ecode

import "strings"

// Field messages used in request error details.
const (
	MsgRequired = "required"
	MsgInvalid  = "invalid"
	MsgTooShort = "too short"
)

// Field prefixes msg with the first non-empty name in k.
func Field(msg string, k ...string) string {
	for _, name := range k {
		if name = strings.TrimSpace(name); name != "" {
			return name + " " + msg
		}
	}
	return msg
}

// FieldIsRequired returns "<field> required".
func FieldIsRequired(k ...string) string { return Field(MsgRequired, k...) }

// FieldIsInvalid returns "<field> invalid".
func FieldIsInvalid(k ...string) string { return Field(MsgInvalid, k...) }

// FieldIsTooShort returns "<field> too short".
func FieldIsTooShort(k ...string) string { return Field(MsgTooShort, k...) }
