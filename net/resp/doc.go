// Package resp writes the JSON envelopes used by the HTTP handlers.
//
// Successful responses write the payload as-is; failures write
//
//	{"code": -404, "message": "Resource not found", "errors": {...}}
//
// with the HTTP status taken from the Exception.
package resp
