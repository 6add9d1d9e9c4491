package loader

import (
	"context"
	"slices"
	"sync"

	"github.com/ncobase/unicourse/course"
	"github.com/ncobase/unicourse/paging"
)

// memStore serves pages from an in-memory slice. hook runs before every
// FindPage and may block or fail it.
type memStore struct {
	mu       sync.Mutex
	items    []course.Course
	overlap  int
	countErr error
	queries  []course.Query
	hook     func(ctx context.Context, q course.Query) error
}

func (s *memStore) FindPage(ctx context.Context, q course.Query) (*paging.Result[course.Course], error) {
	s.mu.Lock()
	s.queries = append(s.queries, q)
	hook := s.hook
	s.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, q); err != nil {
			return nil, err
		}
	}

	matched := s.matching(q.Filters)
	if !q.Sort.IsDefault() {
		slices.SortStableFunc(matched, q.Filters.Comparator())
	}

	return paging.Paginate(ctx, paging.Params{Cursor: q.After, Limit: q.Limit},
		func(_ context.Context, c *paging.Cursor, limit int) ([]course.Course, error) {
			start := 0
			if c != nil {
				idx := slices.IndexFunc(matched, func(x course.Course) bool { return x.ID == c.ID })
				start = max(idx+1-s.overlap, 0)
			}
			end := min(start+limit, len(matched))
			return matched[start:end], nil
		},
		func(c course.Course) paging.Cursor { return paging.Cursor{ID: c.ID} },
	)
}

func (s *memStore) EstimateCount(_ context.Context, f course.FilterSet) (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return int64(len(s.matching(f))), nil
}

func (s *memStore) matching(f course.FilterSet) []course.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []course.Course
	for _, c := range s.items {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b course.Course) int { return compareIDs(a.ID, b.ID) })
	return out
}

func (s *memStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

func (s *memStore) lastQuery() course.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[len(s.queries)-1]
}

func compareIDs(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

type searcherFunc func(ctx context.Context, term string) ([]course.Course, error)

func (f searcherFunc) Search(ctx context.Context, term string) ([]course.Course, error) {
	return f(ctx, term)
}

func mk(id, name, discipline, location string) course.Course {
	return course.Course{
		ID:         id,
		Name:       name,
		Discipline: course.Ref{ID: discipline, Name: discipline},
		Location:   course.Ref{ID: location, Name: location},
	}
}
