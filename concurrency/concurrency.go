// Package concurrency bounds the number of concurrent operations.
package concurrency

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Manager is a weighted semaphore of unit slots with usage counters.
type Manager struct {
	max int32
	sem *semaphore.Weighted

	inUse    atomic.Int32
	admitted atomic.Int64
	rejected atomic.Int64
}

// NewManager creates a manager allowing up to max concurrent holders.
func NewManager(max int32) (*Manager, error) {
	if max <= 0 {
		return nil, fmt.Errorf("max concurrent must be positive, got: %d", max)
	}
	return &Manager{max: max, sem: semaphore.NewWeighted(int64(max))}, nil
}

// Acquire waits for a slot until ctx is done.
func (m *Manager) Acquire(ctx context.Context) error {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		m.rejected.Add(1)
		return fmt.Errorf("failed to acquire concurrency slot: %w", err)
	}
	m.admit()
	return nil
}

// TryAcquire takes a slot only if one is free.
func (m *Manager) TryAcquire() bool {
	if !m.sem.TryAcquire(1) {
		m.rejected.Add(1)
		return false
	}
	m.admit()
	return true
}

func (m *Manager) admit() {
	m.inUse.Add(1)
	m.admitted.Add(1)
}

// Release frees a slot. Releasing more than was acquired is ignored.
func (m *Manager) Release() {
	for {
		n := m.inUse.Load()
		if n <= 0 {
			return
		}
		if m.inUse.CompareAndSwap(n, n-1) {
			m.sem.Release(1)
			return
		}
	}
}

// Available returns the number of free slots.
func (m *Manager) Available() int32 {
	return m.max - m.inUse.Load()
}

// GetMetrics returns the current counters.
func (m *Manager) GetMetrics() map[string]int64 {
	return map[string]int64{
		"current":          int64(m.inUse.Load()),
		"total_executions": m.admitted.Load(),
		"rejected_count":   m.rejected.Load(),
	}
}
