package loader

import (
	"context"

	"github.com/ncobase/unicourse/course"
	"github.com/ncobase/unicourse/paging"
)

// Store is the document store the loader pages through.
type Store interface {
	// FindPage returns up to q.Limit courses after q.After.
	FindPage(ctx context.Context, q course.Query) (*paging.Result[course.Course], error)
	// EstimateCount returns the number of courses matching f. Best effort.
	EstimateCount(ctx context.Context, f course.FilterSet) (int64, error)
}

// Searcher is the free-text search endpoint. Results are unfiltered and
// unsorted.
type Searcher interface {
	Search(ctx context.Context, term string) ([]course.Course, error)
}

// Observer receives a snapshot after every state change.
type Observer interface {
	Observe(State)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(State)

// Observe calls f.
func (f ObserverFunc) Observe(s State) { f(s) }

// Trigger distinguishes user-requested loads from automatic ones.
type Trigger int

const (
	// Explicit loads are requested by the user and are never capped.
	Explicit Trigger = iota
	// Auto loads come from a proximity observer and are capped per session.
	Auto
)

func (t Trigger) String() string {
	if t == Auto {
		return "auto"
	}
	return "explicit"
}

// State is a snapshot of the current session.
type State struct {
	Items      []course.Course  `json:"items"`
	Busy       bool             `json:"busy"`
	Exhausted  bool             `json:"exhausted"`
	Total      int64            `json:"total"`
	TotalKnown bool             `json:"total_known"`
	SearchMode bool             `json:"search_mode"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	AutoLoads  int              `json:"auto_loads"`
	Filters    course.FilterSet `json:"filters"`
	Seq        uint64           `json:"seq"` // increases with every change
}
