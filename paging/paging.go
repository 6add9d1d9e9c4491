package paging

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidCursor is returned when a cursor cannot be decoded.
var ErrInvalidCursor = errors.New("paging: invalid cursor")

// Params holds the unified pagination parameters
type Params struct {
	Cursor string `json:"cursor"`
	Limit  int    `json:"limit"`
}

// Result holds the pagination result
type Result[T any] struct {
	Items       []T    `json:"items"`
	Total       int64  `json:"total,omitempty"`
	NextCursor  string `json:"next,omitempty"`
	HasNextPage bool   `json:"has_next"`
}

// Cursor is the keyset position after the last returned row: its sort
// value and its identifier as tie-breaker. Value is nil for the default
// identifier-only order.
type Cursor struct {
	Value any    `json:"v,omitempty"`
	ID    string `json:"id"`
}

// Page size bounds applied by NormalizeParams.
const (
	DefaultLimit = 256
	MaxLimit     = 1024
)

// NormalizeParams defaults a missing Limit and caps it at MaxLimit.
func NormalizeParams(params Params) Params {
	switch {
	case params.Limit <= 0:
		params.Limit = DefaultLimit
	case params.Limit > MaxLimit:
		params.Limit = MaxLimit
	}
	return params
}

// EncodeCursor encodes a keyset position to an opaque cursor string
func EncodeCursor(c Cursor) string {
	b, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeCursor decodes a cursor string. An empty string decodes to nil.
func DecodeCursor(cursor string) (*Cursor, error) {
	if cursor == "" {
		return nil, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if c.ID == "" {
		return nil, ErrInvalidCursor
	}
	return &c, nil
}

// PagingFunc fetches up to limit rows positioned after cursor (nil for the
// first page).
type PagingFunc[T any] func(ctx context.Context, cursor *Cursor, limit int) ([]T, error)

// CursorFunc returns the keyset position of a row.
type CursorFunc[T any] func(item T) Cursor

// Paginate applies pagination using the provided PagingFunc
func Paginate[T any](ctx context.Context, params Params, fetch PagingFunc[T], cursorOf CursorFunc[T]) (*Result[T], error) {
	params = NormalizeParams(params)
	after, err := DecodeCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	items, err := fetch(ctx, after, params.Limit+1)
	if err != nil {
		return nil, fmt.Errorf("pagination error: %w", err)
	}

	hasNextPage := false
	if len(items) > params.Limit {
		hasNextPage = true
		items = items[:params.Limit]
	}

	if items == nil {
		items = make([]T, 0)
	}

	var next string
	if hasNextPage {
		next = EncodeCursor(cursorOf(items[len(items)-1]))
	}

	return &Result[T]{
		Items:       items,
		NextCursor:  next,
		HasNextPage: hasNextPage,
	}, nil
}
