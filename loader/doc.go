// Package loader incrementally loads a deduplicated, ordered list of
// courses for one filter set.
//
// A Loader owns one session at a time. Initialize (or a filter change through
// Apply) starts a new session: pending requests of the previous session are
// cancelled and their late results discarded. LoadMore appends the next page
// of the current session; RunTextSearch replaces paging with a single,
// locally filtered window of search results.
//
//	l := loader.New(store,
//	    loader.WithSearcher(search.NewClient(endpoint)),
//	    loader.WithNotifier(dispatcher),
//	    loader.WithObserver(loader.ObserverFunc(render)),
//	)
//	_ = l.Initialize(ctx, course.FilterSet{Discipline: "ingegneria"}, 24)
//	l.LoadMore(ctx, loader.Auto)
package loader
