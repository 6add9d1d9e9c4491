package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ncobase/unicourse/analytics"
	"github.com/ncobase/unicourse/concurrency/worker"
	"github.com/ncobase/unicourse/config"
	"github.com/ncobase/unicourse/data"
	"github.com/ncobase/unicourse/data/repository"
	"github.com/ncobase/unicourse/handler"
	"github.com/ncobase/unicourse/lead"
	"github.com/ncobase/unicourse/logging/logger"
	"github.com/ncobase/unicourse/logo"
	"github.com/ncobase/unicourse/search"
	"github.com/ncobase/unicourse/tracing"
	"github.com/ncobase/unicourse/version"
)

const (
	leadLanguage      = "it"
	defaultIndex      = "courses"
	aliasFetchTimeout = 5 * time.Second
	streamMaxLen      = 100_000
)

// optional turns ErrNotConfigured into a nil component so the server can
// start with only part of its backends.
func optional[T any](v *T, err error, l *logger.Logger, what string) (*T, error) {
	if errors.Is(err, repository.ErrNotConfigured) {
		l.Warnf(context.Background(), "%s disabled: mongodb is not configured", what)
		return nil, nil
	}
	return v, err
}

// ProvideTracing installs the tracer provider and, with a Sentry DSN,
// forwards error logs to Sentry.
func ProvideTracing(cfg *config.Tracing, l *logger.Logger) (*tracing.Provider, func(), error) {
	p, cleanup, err := tracing.New(cfg, version.GetVersionInfo().Version)
	if err != nil {
		return nil, nil, err
	}
	if p.SentryEnabled() {
		l.AddHook(tracing.NewSentryHook(nil))
	}
	if p.Exporting() {
		l.Infof(context.Background(), "exporting spans to %s", cfg.Endpoint)
	}
	return p, cleanup, nil
}

// ProvideCourseStore creates the course store, nil without MongoDB.
func ProvideCourseStore(d *data.Data, l *logger.Logger) (*repository.CourseStore, error) {
	s, err := repository.NewCourseStore(d, l)
	return optional(s, err, l, "course listing")
}

// ProvideTaxonomyStore creates the taxonomy store, nil without MongoDB.
func ProvideTaxonomyStore(d *data.Data, l *logger.Logger) (*repository.TaxonomyStore, error) {
	s, err := repository.NewTaxonomyStore(d)
	return optional(s, err, l, "facets")
}

// ProvideLeadService creates the lead service, nil without MongoDB.
func ProvideLeadService(d *data.Data, l *logger.Logger) (*lead.Service, error) {
	st, err := repository.NewLeadStore(d)
	st, err = optional(st, err, l, "lead capture")
	if err != nil || st == nil {
		return nil, err
	}
	return lead.NewService(st, leadLanguage, l), nil
}

// ProvideSearchService creates the search endpoint service over the
// configured engines.
func ProvideSearchService(d *data.Data, courses *repository.CourseStore, l *logger.Logger) *search.Service {
	var lister search.Lister
	if courses != nil {
		lister = courses
	}
	index, maxResults := defaultIndex, 0
	if d.Conf != nil && d.Conf.Search != nil {
		if d.Conf.Search.Index != "" {
			index = d.Conf.Search.Index
		}
		maxResults = d.Conf.Search.MaxResults
	}
	return search.NewService(d.Search, lister, index, maxResults, l)
}

// ProvideSearchClient creates the client of the remote search endpoint.
func ProvideSearchClient(cfg *config.Loader) *search.Client {
	if cfg == nil {
		return search.NewClient("", 0)
	}
	return search.NewClient(cfg.SearchEndpoint, cfg.SearchTimeout)
}

// ProvideSuggester merges taxonomy prefixes and course matches.
func ProvideSuggester(cfg *config.Loader, tax *repository.TaxonomyStore, svc *search.Service, l *logger.Logger) *search.Suggester {
	var sources []search.Source
	if tax != nil {
		for _, kind := range []repository.Kind{repository.Universities, repository.Locations, repository.Disciplines} {
			sources = append(sources, taxonomySource(tax, kind))
		}
	}
	if svc != nil {
		sources = append(sources, search.NewSource("course", func(ctx context.Context, term string, limit int) ([]search.Suggestion, error) {
			items, err := svc.SearchCourses(ctx, term)
			if err != nil {
				return nil, err
			}
			out := make([]search.Suggestion, 0, min(len(items), limit))
			for _, c := range items[:min(len(items), limit)] {
				out = append(out, search.Suggestion{Kind: "course", ID: c.ID, Label: c.Name})
			}
			return out, nil
		}))
	}
	window := search.DefaultDebounce
	if cfg != nil && cfg.Debounce > 0 {
		window = cfg.Debounce
	}
	return search.NewSuggester(window, l, sources...)
}

var suggestionKinds = map[repository.Kind]string{
	repository.Universities: "university",
	repository.Locations:    "location",
	repository.Disciplines:  "discipline",
}

func taxonomySource(tax *repository.TaxonomyStore, kind repository.Kind) search.Source {
	label := suggestionKinds[kind]
	return search.NewSource(label, func(ctx context.Context, term string, limit int) ([]search.Suggestion, error) {
		found, err := tax.PrefixSearch(ctx, kind, term, limit)
		if err != nil {
			return nil, err
		}
		out := make([]search.Suggestion, len(found))
		for i, t := range found {
			out[i] = search.Suggestion{Kind: label, ID: t.ID, Label: t.Name}
		}
		return out, nil
	})
}

// ProvideDispatcher builds the analytics dispatcher over the configured
// sinks. Sink is a comma separated list of log, redis and kafka.
func ProvideDispatcher(cfg *config.Analytics, dc *config.Data, d *data.Data, l *logger.Logger) (*analytics.Dispatcher, func(), error) {
	if cfg == nil {
		cfg = &config.Analytics{Sink: "log"}
	}
	var (
		sinks   []analytics.Sink
		closers []func() error
	)
	for _, name := range strings.Split(cfg.Sink, ",") {
		switch strings.TrimSpace(name) {
		case "", "log":
			sinks = append(sinks, analytics.LogSink{Logger: l})
		case "redis":
			if d.Redis == nil {
				l.Warnf(context.Background(), "analytics: redis sink requested but redis is not configured")
				continue
			}
			sinks = append(sinks, analytics.NewRedisStreamSink(d.Redis, cfg.Stream, streamMaxLen))
		case "kafka":
			if dc == nil || dc.Kafka == nil || len(dc.Kafka.Brokers) == 0 {
				l.Warnf(context.Background(), "analytics: kafka sink requested but no brokers are configured")
				continue
			}
			ks := analytics.NewKafkaSink(analytics.NewKafkaWriter(dc.Kafka.Brokers, dc.Kafka.Topic))
			sinks = append(sinks, ks)
			closers = append(closers, ks.Close)
		default:
			return nil, nil, fmt.Errorf("analytics: unknown sink %q", name)
		}
	}

	wc := worker.DefaultConfig()
	if cfg.Workers > 0 {
		wc.MaxWorkers = cfg.Workers
	}
	if cfg.QueueSize > 0 {
		wc.QueueSize = cfg.QueueSize
	}
	disp, err := analytics.NewDispatcher(wc, l, sinks...)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), wc.TaskTimeout+time.Second)
		defer cancel()
		_ = disp.Close(ctx)
		for _, c := range closers {
			_ = c()
		}
	}
	return disp, cleanup, nil
}

// ProvideLogoResolver builds the logo resolver. Candidates are probed in
// AssetsDir, else over HTTP against AssetsURL, else the first one wins.
func ProvideLogoResolver(cfg *config.Logo, l *logger.Logger) *logo.Resolver {
	if cfg == nil {
		cfg = &config.Logo{}
	}
	hc := &http.Client{Timeout: aliasFetchTimeout}

	var load logo.AliasLoader
	if cfg.AliasesURL != "" {
		load = logo.HTTPAliasLoader(cfg.AliasesURL, hc)
	}

	var probe logo.Prober
	switch {
	case cfg.AssetsDir != "":
		probe = logo.DirProber{Root: cfg.AssetsDir}
	case cfg.AssetsURL != "":
		probe = logo.HTTPProber{Base: cfg.AssetsURL, Client: hc}
	}
	return logo.NewResolver(cfg.BasePath, cfg.Default, logo.NewAliasCache(load, l), probe)
}

// ProvideHandler assembles the HTTP handler. Missing components leave
// their collaborator unset so the matching routes degrade.
func ProvideHandler(
	cfg *config.Config,
	l *logger.Logger,
	d *data.Data,
	courses *repository.CourseStore,
	tax *repository.TaxonomyStore,
	leads *lead.Service,
	svc *search.Service,
	proxy *search.Client,
	sugg *search.Suggester,
	logos *logo.Resolver,
	disp *analytics.Dispatcher,
) (*handler.Handler, error) {
	deps := handler.Deps{
		Search:    svc,
		Suggester: sugg,
		Logos:     logos,
		Health:    d,
		Notifier:  disp,
		Logger:    l,
	}
	if courses != nil {
		deps.Store = courses
		deps.Details = courses
	}
	if tax != nil {
		deps.Taxonomy = tax
	}
	if leads != nil {
		deps.Leads = leads
	}
	if cfg.Loader != nil {
		deps.PageSize = cfg.Loader.PageSize
		if cfg.Loader.SearchEndpoint != "" {
			deps.Proxy = proxy
		}
	}
	return handler.New(deps)
}
