package search

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ncobase/unicourse/ctxutil"
	"github.com/ncobase/unicourse/logging/logger"
	"golang.org/x/sync/errgroup"
)

const (
	// MinTermLength is the shortest term that produces suggestions.
	MinTermLength = 2
	// DefaultSuggestions caps the merged suggestion list.
	DefaultSuggestions = 8
)

// Suggestion is one entry of the suggestion dropdown.
type Suggestion struct {
	Kind  string `json:"type"`
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Source produces suggestions of a single kind.
type Source interface {
	Kind() string
	Suggest(ctx context.Context, term string, limit int) ([]Suggestion, error)
}

type sourceFunc struct {
	kind string
	fn   func(ctx context.Context, term string, limit int) ([]Suggestion, error)
}

func (s sourceFunc) Kind() string { return s.kind }
func (s sourceFunc) Suggest(ctx context.Context, term string, limit int) ([]Suggestion, error) {
	return s.fn(ctx, term, limit)
}

// NewSource adapts fn to a Source of the given kind.
func NewSource(kind string, fn func(ctx context.Context, term string, limit int) ([]Suggestion, error)) Source {
	return sourceFunc{kind: kind, fn: fn}
}

// Suggester queries its sources in parallel and merges the results.
type Suggester struct {
	sources  []Source
	limit    int
	debounce *Debouncer
	timeout  time.Duration
	seq      atomic.Uint64
	log      *logger.Logger
}

// NewSuggester creates a suggester. Sources keep their order in the
// merged result.
func NewSuggester(window time.Duration, l *logger.Logger, sources ...Source) *Suggester {
	if l == nil {
		l = logger.StdLogger()
	}
	return &Suggester{
		sources:  sources,
		limit:    DefaultSuggestions,
		debounce: NewDebouncer(window),
		timeout:  defaultTimeout,
		log:      l,
	}
}

// Suggest returns merged suggestions for term. Terms shorter than
// MinTermLength yield nothing; a failing source contributes nothing.
func (s *Suggester) Suggest(ctx context.Context, term string) []Suggestion {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < MinTermLength || len(s.sources) == 0 {
		return []Suggestion{}
	}

	results := make([][]Suggestion, len(s.sources))
	var g errgroup.Group
	for i, src := range s.sources {
		i, src := i, src
		g.Go(func() error {
			items, err := src.Suggest(ctx, term, s.limit)
			if err != nil {
				s.log.Debugf(ctx, "suggest %s %q: %v", src.Kind(), term, err)
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = g.Wait()

	return merge(results, s.limit)
}

// Type is the debounced entry point. deliver receives the suggestions of
// the last term typed within the window; results of superseded terms are
// dropped.
func (s *Suggester) Type(ctx context.Context, term string, deliver func(term string, items []Suggestion)) {
	seq := s.seq.Add(1)
	s.debounce.Do(func() {
		if s.seq.Load() != seq {
			return
		}
		cctx, cancel := ctxutil.WithAsyncContext(ctx, s.timeout)
		defer cancel()

		items := s.Suggest(cctx, term)
		if s.seq.Load() != seq {
			return
		}
		deliver(term, items)
	})
}

// merge concatenates per-source results, dropping repeated (kind, id)
// pairs, up to limit entries.
func merge(results [][]Suggestion, limit int) []Suggestion {
	type key struct{ kind, id string }
	seen := make(map[key]struct{})
	out := make([]Suggestion, 0, limit)
	for _, items := range results {
		for _, it := range items {
			if len(out) == limit {
				return out
			}
			k := key{it.Kind, it.ID}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, it)
		}
	}
	return out
}
