package search

import (
	"sync"
	"time"

	"github.com/bep/debounce"
)

// DefaultDebounce is the quiet period before a typed term is searched.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer runs only the last function submitted within the window.
type Debouncer struct {
	mu       sync.Mutex
	debounce func(func())
}

// NewDebouncer creates a debouncer with the given window.
func NewDebouncer(after time.Duration) *Debouncer {
	if after <= 0 {
		after = DefaultDebounce
	}
	return &Debouncer{debounce: debounce.New(after)}
}

// Do schedules f, replacing any function still waiting.
func (d *Debouncer) Do(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.debounce(f)
}
