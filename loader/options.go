package loader

import (
	"github.com/ncobase/unicourse/analytics"
	"github.com/ncobase/unicourse/logging/logger"
	"github.com/ncobase/unicourse/paging"
)

// DefaultAutoLoadCap is the number of automatic loads allowed per session.
const DefaultAutoLoadCap = 5

// DefaultPageSize is used by RunTextSearch before any Initialize.
const DefaultPageSize = 24

// MaxPageSize is the largest page a Store returns. Larger requests are
// lowered to it so a full page is never mistaken for the last one.
const MaxPageSize = paging.MaxLimit

// Option configures a Loader.
type Option func(*Loader)

// WithSearcher sets the free-text search backend.
func WithSearcher(s Searcher) Option {
	return func(l *Loader) { l.searcher = s }
}

// WithObserver sets the state observer.
func WithObserver(o Observer) Option {
	return func(l *Loader) { l.observer = o }
}

// WithNotifier sets the analytics collaborator.
func WithNotifier(n analytics.Notifier) Option {
	return func(l *Loader) {
		if n != nil {
			l.notifier = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(lg *logger.Logger) Option {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// WithAutoLoadCap overrides the automatic load cap. Values below zero are
// ignored; zero disables automatic loads.
func WithAutoLoadCap(n int) Option {
	return func(l *Loader) {
		if n >= 0 {
			l.autoLoadCap = n
		}
	}
}

// WithListID sets the list identifier reported to analytics.
func WithListID(id string) Option {
	return func(l *Loader) {
		if id != "" {
			l.listID = id
		}
	}
}

// WithPageSize sets the page size used before the first Initialize.
func WithPageSize(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.pageSize = n
		}
	}
}
