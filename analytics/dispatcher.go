package analytics

import (
	"context"
	"errors"
	"fmt"

	"github.com/ncobase/unicourse/concurrency/worker"
	"github.com/ncobase/unicourse/ctxutil"
	"github.com/ncobase/unicourse/logging/logger"
)

// Sink publishes page views somewhere.
type Sink interface {
	Name() string
	Send(ctx context.Context, pv PageView) error
}

type delivery struct {
	traceID   string
	sessionID string
	view      PageView
}

// Dispatcher fans page views out to sinks on a small worker pool. Notify
// never blocks: when the queue is full the page view is dropped.
type Dispatcher struct {
	sinks  []Sink
	pool   *worker.Pool[delivery]
	logger *logger.Logger
}

// NewDispatcher creates and starts a dispatcher.
func NewDispatcher(cfg *worker.Config, l *logger.Logger, sinks ...Sink) (*Dispatcher, error) {
	if cfg == nil {
		cfg = worker.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("analytics: %w", err)
	}
	if l == nil {
		l = logger.StdLogger()
	}
	d := &Dispatcher{sinks: sinks, logger: l}
	d.pool = worker.NewPool(cfg, d.deliver)
	d.pool.Start()
	return d, nil
}

// Notify queues pv for delivery.
func (d *Dispatcher) Notify(ctx context.Context, pv PageView) error {
	err := d.pool.Submit(delivery{
		traceID:   ctxutil.GetTraceID(ctx),
		sessionID: ctxutil.GetSessionID(ctx),
		view:      pv,
	})
	if errors.Is(err, worker.ErrQueueFull) {
		d.logger.Debugf(ctx, "analytics queue full, dropping page %d of %s", pv.Page, pv.ListID)
	}
	return err
}

func (d *Dispatcher) deliver(ctx context.Context, dl delivery) error {
	if dl.traceID != "" {
		ctx = ctxutil.SetTraceID(ctx, dl.traceID)
	}
	if dl.sessionID != "" {
		ctx = ctxutil.WithSessionID(ctx, dl.sessionID)
	}

	var errs []error
	for _, s := range d.sinks {
		if err := sendSafe(ctx, s, dl.view); err != nil {
			d.logger.Debugf(ctx, "analytics sink %s: %v", s.Name(), err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func sendSafe(ctx context.Context, s Sink, pv PageView) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panicked: %v", r)
		}
	}()
	return s.Send(ctx, pv)
}

// Metrics exposes the underlying pool counters.
func (d *Dispatcher) Metrics() map[string]int64 {
	return d.pool.GetMetrics()
}

// Close drains queued page views until ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	return d.pool.Stop(ctx)
}
