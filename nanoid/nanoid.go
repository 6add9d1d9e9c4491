// Package nanoid generates short random identifiers.
package nanoid

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	defaultSize = 16

	// Reference excludes look-alike characters so codes can be read aloud.
	Reference = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	Lowercase = "abcdefghijklmnopqrstuvwxyz0123456789"
)

func getSize(l ...int) int {
	if len(l) > 0 && l[0] > 0 {
		return l[0]
	}
	return defaultSize
}

// Must generates a URL-safe nanoid of optional length.
func Must(l ...int) string {
	return gonanoid.Must(getSize(l...))
}

// Lower generates a lowercase alphanumeric nanoid.
func Lower(l ...int) string {
	return gonanoid.MustGenerate(Lowercase, getSize(l...))
}

// Ref generates a human friendly reference code such as "K7QX-M2PA".
func Ref() string {
	id := gonanoid.MustGenerate(Reference, 8)
	return id[:4] + "-" + id[4:]
}
