package search

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ncobase/unicourse/course"
	engine "github.com/ncobase/unicourse/data/search"
	"github.com/ncobase/unicourse/logging/logger"
	"github.com/ncobase/unicourse/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultMaxResults caps the number of results of one search.
const DefaultMaxResults = 20

// Engine runs full-text queries.
type Engine interface {
	Search(ctx context.Context, req *engine.Request) (*engine.Response, error)
}

// Lister returns the first courses of the catalogue.
type Lister interface {
	First(ctx context.Context, limit int) ([]course.Course, error)
}

// Service answers search requests.
type Service struct {
	engine Engine
	lister Lister
	index  string
	max    int
	log    *logger.Logger
}

// NewService creates a search service over index.
func NewService(e Engine, lister Lister, index string, maxResults int, l *logger.Logger) *Service {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if l == nil {
		l = logger.StdLogger()
	}
	return &Service{engine: e, lister: lister, index: index, max: maxResults, log: l}
}

// SearchCourses returns up to the configured maximum of courses matching
// term in relevance order, without duplicates. A blank term returns the
// first courses of the catalogue.
func (s *Service) SearchCourses(ctx context.Context, term string) (items []course.Course, err error) {
	term = strings.TrimSpace(term)
	ctx, span := tracing.Start(ctx, "search.Service.SearchCourses",
		attribute.String("search.index", s.index),
		attribute.Bool("search.blank", term == ""),
	)
	defer func() {
		span.SetAttributes(attribute.Int("search.results", len(items)))
		tracing.End(span, err)
	}()

	if term == "" {
		if s.lister == nil {
			return []course.Course{}, nil
		}
		first, err := s.lister.First(ctx, s.max)
		if err != nil {
			return nil, err
		}
		return capUnique(first, s.max), nil
	}

	resp, err := s.engine.Search(ctx, &engine.Request{Index: s.index, Query: term, Size: s.max})
	if err != nil {
		s.log.Warnf(ctx, "search %q: %v", term, err)
		return nil, err
	}

	found := make([]course.Course, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		c, err := hitToCourse(hit)
		if err != nil {
			s.log.Debugf(ctx, "skip hit %s: %v", hit.ID, err)
			continue
		}
		found = append(found, c)
	}
	return capUnique(found, s.max), nil
}

func hitToCourse(hit engine.Hit) (course.Course, error) {
	var c course.Course
	raw, err := json.Marshal(hit.Source)
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return c, err
	}
	if c.ID == "" {
		c.ID = hit.ID
	}
	return c, nil
}

// capUnique drops repeated identifiers and truncates to limit.
func capUnique(items []course.Course, limit int) []course.Course {
	seen := make(map[string]struct{}, len(items))
	out := make([]course.Course, 0, min(len(items), limit))
	for _, c := range items {
		if len(out) == limit {
			break
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}
