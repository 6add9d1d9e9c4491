package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ncobase/unicourse/analytics"
	"github.com/ncobase/unicourse/config"
	"github.com/ncobase/unicourse/data"
	"github.com/ncobase/unicourse/data/repository"
	"github.com/ncobase/unicourse/handler"
	"github.com/ncobase/unicourse/logging/logger"
	"github.com/ncobase/unicourse/search"
	"github.com/ncobase/unicourse/tracing"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 30 * time.Second

// App is the HTTP server.
type App struct {
	config  *config.Config
	logger  *logger.Logger
	handler *handler.Handler
	tracing *tracing.Provider
	server  *http.Server
}

// NewApp creates a new application instance.
func NewApp(cfg *config.Config, l *logger.Logger, h *handler.Handler, tp *tracing.Provider) *App {
	return &App{config: cfg, logger: l, handler: h, tracing: tp}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	a.server = &http.Server{
		Addr:         a.config.Server.Addr(),
		Handler:      a.handler.Router(a.config.RunMode),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	config.Watch(func(c *config.Config) {
		if c.Logger != nil && c.Logger.Level > 0 {
			a.logger.SetLevel(logrus.Level(c.Logger.Level))
		}
		a.logger.Info(context.Background(), "configuration reloaded")
	})

	errc := make(chan error, 1)
	go func() {
		a.logger.Infof(ctx, "%s listening on %s (span export %t)", a.config.AppName, a.server.Addr, a.tracing.Exporting())
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	a.logger.Info(context.Background(), "shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(sctx); err != nil {
		a.logger.Errorf(context.Background(), "server forced to shutdown: %v", err)
		return err
	}
	a.logger.Info(context.Background(), "server exited")
	return nil
}

// Tools bundles what the offline commands need.
type Tools struct {
	Config   *config.Config
	Logger   *logger.Logger
	Data     *data.Data
	Courses  *repository.CourseStore
	Search   *search.Service
	Remote   *search.Client
	Notifier *analytics.Dispatcher
	Tracing  *tracing.Provider
}

// NewTools creates the command toolbox.
func NewTools(
	cfg *config.Config,
	l *logger.Logger,
	d *data.Data,
	courses *repository.CourseStore,
	svc *search.Service,
	remote *search.Client,
	disp *analytics.Dispatcher,
	tp *tracing.Provider,
) *Tools {
	return &Tools{Config: cfg, Logger: l, Data: d, Courses: courses, Search: svc, Remote: remote, Notifier: disp, Tracing: tp}
}
