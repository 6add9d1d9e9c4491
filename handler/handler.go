// Package handler exposes the course catalogue over HTTP.
package handler

import (
	"context"

	"github.com/ncobase/unicourse/analytics"
	"github.com/ncobase/unicourse/concurrency"
	"github.com/ncobase/unicourse/course"
	"github.com/ncobase/unicourse/data/repository"
	"github.com/ncobase/unicourse/lead"
	"github.com/ncobase/unicourse/loader"
	"github.com/ncobase/unicourse/logging/logger"
	"github.com/ncobase/unicourse/search"
)

// CourseSearcher answers /search_courses.
type CourseSearcher interface {
	SearchCourses(ctx context.Context, term string) ([]course.Course, error)
}

// CourseDetails looks up single courses.
type CourseDetails interface {
	FindByID(ctx context.Context, id string) (*course.Course, error)
}

// Taxonomy serves facet lists.
type Taxonomy interface {
	TopTaxonomy(ctx context.Context, kind repository.Kind, limit int) ([]repository.Taxon, error)
	PrefixSearch(ctx context.Context, kind repository.Kind, prefix string, limit int) ([]repository.Taxon, error)
}

// Leads captures lead submissions.
type Leads interface {
	Submit(ctx context.Context, p lead.Payload) (*lead.Lead, error)
}

// Logos resolves university logos.
type Logos interface {
	Resolve(ctx context.Context, id, name string) string
}

// HealthChecker reports backend health.
type HealthChecker interface {
	Health(ctx context.Context) map[string]any
}

// Deps are the collaborators of the handler. Nil collaborators disable
// their routes with 503, except Proxy whose route degrades to [].
type Deps struct {
	Store     loader.Store
	Details   CourseDetails
	Search    CourseSearcher
	Proxy     loader.Searcher
	Suggester *search.Suggester
	Taxonomy  Taxonomy
	Leads     Leads
	Logos     Logos
	Health    HealthChecker
	Notifier  analytics.Notifier
	Logger    *logger.Logger

	PageSize      int
	ProxyParallel int32
}

// Handler serves the HTTP API.
type Handler struct {
	d       Deps
	limiter *concurrency.Manager
	log     *logger.Logger
}

// New creates a handler.
func New(d Deps) (*Handler, error) {
	if d.Logger == nil {
		d.Logger = logger.StdLogger()
	}
	if d.Notifier == nil {
		d.Notifier = analytics.Nop
	}
	if d.PageSize <= 0 {
		d.PageSize = loader.DefaultPageSize
	}
	if d.ProxyParallel <= 0 {
		d.ProxyParallel = 16
	}
	limiter, err := concurrency.NewManager(d.ProxyParallel)
	if err != nil {
		return nil, err
	}
	return &Handler{d: d, limiter: limiter, log: d.Logger}, nil
}
