package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrQueueFull   = errors.New("task queue is full")
	ErrPoolStopped = errors.New("pool is stopped")
)

// Config represents pool configuration
type Config struct {
	MaxWorkers  int           // maximum number of workers
	QueueSize   int           // task queue size
	TaskTimeout time.Duration // timeout for single task
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		MaxWorkers:  2,
		QueueSize:   256,
		TaskTimeout: 5 * time.Second,
	}
}

// Validate validates configuration
func (cfg *Config) Validate() error {
	if cfg.MaxWorkers < 1 {
		return errors.New("max workers must be greater than 0")
	}
	if cfg.QueueSize < 1 {
		return errors.New("queue size must be greater than 0")
	}
	if cfg.TaskTimeout < 0 {
		return errors.New("task timeout must be greater than or equal to 0")
	}
	return nil
}

// Processor handles one task. ctx carries the task timeout.
type Processor[T any] func(ctx context.Context, task T) error

// Metrics tracks pool's operational metrics
type Metrics struct {
	ActiveWorkers  atomic.Int64
	PendingTasks   atomic.Int64
	CompletedTasks atomic.Int64
	FailedTasks    atomic.Int64
	DroppedTasks   atomic.Int64
}

// Pool is a bounded queue drained by a fixed set of workers. Submit never
// blocks: a full queue rejects the task.
type Pool[T any] struct {
	maxWorkers  int
	taskTimeout time.Duration
	process     Processor[T]

	mu      sync.RWMutex
	stopped bool
	tasks   chan T
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	metrics *Metrics
}

// NewPool creates a new worker pool
//
// Usage:
//
//	pool := worker.NewPool(cfg, func(ctx context.Context, pv analytics.PageView) error {
//	    return sink.Send(ctx, pv)
//	})
//	pool.Start()
//	defer pool.Stop(ctx)
//
//	if err := pool.Submit(pv); errors.Is(err, worker.ErrQueueFull) {
//	    // dropped
//	}
func NewPool[T any](cfg *Config, process Processor[T]) *Pool[T] {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool[T]{
		maxWorkers:  cfg.MaxWorkers,
		taskTimeout: cfg.TaskTimeout,
		process:     process,
		tasks:       make(chan T, cfg.QueueSize),
		ctx:         ctx,
		cancel:      cancel,
		metrics:     &Metrics{},
	}
}

// Start starts the worker pool
func (p *Pool[T]) Start() {
	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Stop rejects new tasks and waits for queued ones to finish. When ctx
// expires first, running tasks are cancelled and Stop returns ctx.Err()
// once the workers have exited.
func (p *Pool[T]) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	close(p.tasks)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		return ctx.Err()
	}
}

// Submit submits a task to the pool
func (p *Pool[T]) Submit(task T) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.tasks <- task:
		p.metrics.PendingTasks.Add(1)
		return nil
	default:
		p.metrics.DroppedTasks.Add(1)
		return ErrQueueFull
	}
}

func (p *Pool[T]) worker() {
	defer p.wg.Done()

	for task := range p.tasks {
		if p.ctx.Err() != nil {
			p.metrics.PendingTasks.Add(-1)
			p.metrics.FailedTasks.Add(1)
			continue
		}
		p.processTask(task)
	}
}

func (p *Pool[T]) processTask(task T) {
	p.metrics.ActiveWorkers.Add(1)
	p.metrics.PendingTasks.Add(-1)
	defer p.metrics.ActiveWorkers.Add(-1)

	ctx := p.ctx
	if p.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(p.ctx, p.taskTimeout)
		defer cancel()
	}

	if err := p.safeProcess(ctx, task); err != nil {
		p.metrics.FailedTasks.Add(1)
		return
	}
	p.metrics.CompletedTasks.Add(1)
}

func (p *Pool[T]) safeProcess(ctx context.Context, task T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker: task panicked: %v", r)
		}
	}()
	return p.process(ctx, task)
}

// GetMetrics returns the current metrics
func (p *Pool[T]) GetMetrics() map[string]int64 {
	return map[string]int64{
		"active_workers":  p.metrics.ActiveWorkers.Load(),
		"pending_tasks":   p.metrics.PendingTasks.Load(),
		"completed_tasks": p.metrics.CompletedTasks.Load(),
		"failed_tasks":    p.metrics.FailedTasks.Load(),
		"dropped_tasks":   p.metrics.DroppedTasks.Load(),
	}
}

// IsIdle returns whether the pool is idle
func (p *Pool[T]) IsIdle() bool {
	return p.metrics.ActiveWorkers.Load() == 0 && p.metrics.PendingTasks.Load() == 0
}
