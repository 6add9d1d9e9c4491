package loader

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/ncobase/unicourse/analytics"
	"github.com/ncobase/unicourse/course"
	"github.com/ncobase/unicourse/ctxutil"
	"github.com/ncobase/unicourse/logging/logger"
	"github.com/ncobase/unicourse/paging"
	"github.com/ncobase/unicourse/tracing"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidPageSize = errors.New("loader: page size must be positive")
	ErrNoSearcher      = errors.New("loader: no searcher configured")
)

// Loader is safe for concurrent use. Store and search calls are made
// without holding the state lock; every completion is checked against the
// session epoch it was issued under.
type Loader struct {
	store       Store
	searcher    Searcher
	observer    Observer
	notifier    analytics.Notifier
	logger      *logger.Logger
	autoLoadCap int
	listID      string

	mu         sync.Mutex
	epoch      uint64
	seq        uint64
	session    string
	cancel     context.CancelFunc
	filters    course.FilterSet
	sort       course.Sort
	pageSize   int
	items      []course.Course
	seen       map[string]struct{}
	cursor     string
	busy       bool
	exhausted  bool
	failed     bool
	searchMode bool
	total      int64
	totalKnown bool
	page       int
	autoLoads  int
}

// New creates a loader over store.
func New(store Store, opts ...Option) *Loader {
	l := &Loader{
		store:       store,
		notifier:    analytics.Nop,
		logger:      logger.StdLogger(),
		autoLoadCap: DefaultAutoLoadCap,
		listID:      "courses",
		pageSize:    DefaultPageSize,
		seen:        make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns a snapshot of the current session.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

func (l *Loader) snapshot() State {
	return State{
		Items:      slices.Clone(l.items),
		Busy:       l.busy,
		Exhausted:  l.exhausted,
		Total:      l.total,
		TotalKnown: l.totalKnown,
		SearchMode: l.searchMode,
		Page:       l.page,
		PageSize:   l.pageSize,
		AutoLoads:  l.autoLoads,
		Filters:    l.filters,
		Seq:        l.seq,
	}
}

// begin resets the session and returns the request context for it. The
// previous session's in-flight request is cancelled. Caller holds l.mu.
func (l *Loader) begin(ctx context.Context, f course.FilterSet, pageSize int, search bool) (context.Context, context.CancelFunc, uint64) {
	if l.cancel != nil {
		l.cancel()
	}
	l.epoch++
	l.seq++
	l.session = uuid.NewString()
	l.filters = f
	l.sort = f.SortKey().Sort()
	l.pageSize = pageSize
	l.items = nil
	l.seen = make(map[string]struct{})
	l.cursor = ""
	l.busy = true
	l.exhausted = false
	l.failed = false
	l.searchMode = search
	l.total = 0
	l.totalKnown = false
	l.page = 0
	l.autoLoads = 0

	reqCtx, cancel := context.WithCancel(ctxutil.WithSessionID(ctx, l.session))
	l.cancel = cancel
	return reqCtx, cancel, l.epoch
}

// finish marks the request of epoch done. It reports false when the session
// has been superseded. Caller holds l.mu.
func (l *Loader) finish(epoch uint64) bool {
	if epoch != l.epoch {
		return false
	}
	l.busy = false
	l.cancel = nil
	l.seq++
	return true
}

// Initialize starts a new paginated session for f and loads its first page.
// Store failures never surface: after a failed retry with the default order
// the session is left empty and not exhausted.
func (l *Loader) Initialize(ctx context.Context, f course.FilterSet, pageSize int) error {
	if pageSize <= 0 {
		return ErrInvalidPageSize
	}
	pageSize = min(pageSize, MaxPageSize)
	ctx, span := tracing.Start(ctx, "loader.Initialize",
		attribute.String("loader.filters", f.CacheKey()),
		attribute.Int("loader.page_size", pageSize),
	)
	defer span.End()

	l.mu.Lock()
	reqCtx, cancel, epoch := l.begin(ctx, f, pageSize, false)
	q := course.Query{Filters: f, Sort: l.sort, Limit: pageSize}
	l.mu.Unlock()
	defer cancel()
	l.emit(reqCtx)

	var (
		res      *paging.Result[course.Course]
		sort     course.Sort
		pageErr  error
		count    int64
		countErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		res, sort, pageErr = l.firstPage(reqCtx, q)
		return nil
	})
	g.Go(func() error {
		count, countErr = l.store.EstimateCount(reqCtx, f)
		return nil
	})
	_ = g.Wait()

	l.mu.Lock()
	if !l.finish(epoch) {
		l.mu.Unlock()
		l.logger.Debug(reqCtx, "discarding first page of superseded session")
		return nil
	}
	if countErr == nil {
		l.total, l.totalKnown = count, true
	}
	if pageErr != nil {
		l.failed = true
		l.mu.Unlock()
		span.RecordError(pageErr)
		l.logger.Warnf(reqCtx, "first page failed, showing empty result: %v", pageErr)
		l.emit(reqCtx)
		return nil
	}
	l.sort = sort
	added := l.appendUnique(res.Items)
	l.cursor = res.NextCursor
	l.exhausted = lastPage(res, pageSize)
	l.page = 1
	pv := analytics.NewPageView(l.listID, l.filters, l.page, 0, added)
	span.SetAttributes(attribute.Int("loader.items", len(added)), attribute.Bool("loader.exhausted", l.exhausted))
	l.mu.Unlock()

	if countErr != nil {
		l.logger.Debugf(reqCtx, "count estimate unavailable: %v", countErr)
	}
	l.emit(reqCtx)
	l.notify(reqCtx, pv)
	return nil
}

func (l *Loader) firstPage(ctx context.Context, q course.Query) (*paging.Result[course.Course], course.Sort, error) {
	res, err := l.store.FindPage(ctx, q)
	if err == nil {
		return orEmpty(res), q.Sort, nil
	}
	if ctx.Err() != nil || q.Sort.IsDefault() {
		return nil, q.Sort, err
	}

	l.logger.Infof(ctx, "page query ordered by %s failed, retrying with default order: %v", q.Sort.Field, err)
	q.Sort = course.Sort{}
	res, err = l.store.FindPage(ctx, q)
	if err != nil {
		return nil, q.Sort, err
	}
	return orEmpty(res), q.Sort, nil
}

// LoadMore appends the next page of the current session. It does nothing
// while a request is pending, once the session is exhausted, in search
// mode, after a failed Initialize, or for Auto triggers past the cap.
func (l *Loader) LoadMore(ctx context.Context, trigger Trigger) {
	l.mu.Lock()
	if l.busy || l.exhausted || l.searchMode || l.failed || l.page == 0 {
		l.mu.Unlock()
		return
	}
	if trigger == Auto {
		if l.autoLoads >= l.autoLoadCap {
			l.mu.Unlock()
			return
		}
		l.autoLoads++
	}
	l.busy = true
	l.seq++
	epoch := l.epoch
	offset := len(l.items)
	q := course.Query{Filters: l.filters, Sort: l.sort, Limit: l.pageSize, After: l.cursor}
	reqCtx, cancel := context.WithCancel(ctxutil.WithSessionID(ctx, l.session))
	l.cancel = cancel
	l.mu.Unlock()
	defer cancel()
	reqCtx, span := tracing.Start(reqCtx, "loader.LoadMore",
		attribute.String("loader.trigger", trigger.String()),
		attribute.Int("loader.offset", offset),
	)
	defer span.End()
	l.emit(reqCtx)

	res, err := l.store.FindPage(reqCtx, q)

	l.mu.Lock()
	if !l.finish(epoch) {
		l.mu.Unlock()
		l.logger.Debug(reqCtx, "discarding page of superseded session")
		return
	}
	if err != nil {
		l.exhausted = true
		l.mu.Unlock()
		span.RecordError(err)
		l.logger.Warnf(reqCtx, "%s load failed, no more results: %v", trigger, err)
		l.emit(reqCtx)
		return
	}
	res = orEmpty(res)
	added := l.appendUnique(res.Items)
	l.cursor = res.NextCursor
	l.exhausted = lastPage(res, q.Limit)
	l.page++
	pv := analytics.NewPageView(l.listID, l.filters, l.page, offset, added)
	l.mu.Unlock()

	l.emit(reqCtx)
	l.notify(reqCtx, pv)
}

// RunTextSearch replaces the session with one window of search results for
// term under the current category constraints and sort key. A blank term
// returns to paginated mode.
func (l *Loader) RunTextSearch(ctx context.Context, term string) error {
	l.mu.Lock()
	f, pageSize := l.filters, l.pageSize
	l.mu.Unlock()

	term = strings.TrimSpace(term)
	if term == "" {
		return l.Initialize(ctx, f.WithoutQuery(), pageSize)
	}
	f.Query = term
	return l.search(ctx, f, pageSize)
}

// Apply starts a session for f: a search session when f carries a query,
// a paginated one otherwise.
func (l *Loader) Apply(ctx context.Context, f course.FilterSet, pageSize int) error {
	if pageSize <= 0 {
		return ErrInvalidPageSize
	}
	pageSize = min(pageSize, MaxPageSize)
	if term := f.Term(); term != "" {
		f.Query = term
		return l.search(ctx, f, pageSize)
	}
	return l.Initialize(ctx, f.WithoutQuery(), pageSize)
}

func (l *Loader) search(ctx context.Context, f course.FilterSet, pageSize int) error {
	ctx, span := tracing.Start(ctx, "loader.Search", attribute.Int("loader.page_size", pageSize))
	defer span.End()

	l.mu.Lock()
	reqCtx, cancel, epoch := l.begin(ctx, f, pageSize, true)
	l.mu.Unlock()
	defer cancel()
	l.emit(reqCtx)

	var (
		found []course.Course
		err   = ErrNoSearcher
	)
	if l.searcher != nil {
		found, err = l.searcher.Search(reqCtx, f.Term())
	}
	var (
		window []course.Course
		total  int64
	)
	if err == nil {
		window, total = localWindow(found, f, pageSize)
	}

	l.mu.Lock()
	if !l.finish(epoch) {
		l.mu.Unlock()
		l.logger.Debug(reqCtx, "discarding search results of superseded session")
		return nil
	}
	l.exhausted = true
	if err != nil {
		l.mu.Unlock()
		span.RecordError(err)
		l.logger.Warnf(reqCtx, "search for %q failed, showing empty result: %v", f.Term(), err)
		l.emit(reqCtx)
		return nil
	}
	added := l.appendUnique(window)
	l.total, l.totalKnown = total, true
	l.page = 1
	pv := analytics.NewPageView(l.listID, l.filters, l.page, 0, added)
	l.mu.Unlock()

	l.emit(reqCtx)
	l.notify(reqCtx, pv)
	return nil
}

// localWindow applies the category constraints and ordering of f to
// unfiltered search results. It returns at most pageSize courses and the
// number of distinct matches.
func localWindow(found []course.Course, f course.FilterSet, pageSize int) ([]course.Course, int64) {
	seen := make(map[string]struct{}, len(found))
	matched := make([]course.Course, 0, len(found))
	for _, c := range found {
		if !f.Matches(c) {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		matched = append(matched, c)
	}
	slices.SortStableFunc(matched, f.Comparator())

	total := int64(len(matched))
	if len(matched) > pageSize {
		matched = matched[:pageSize]
	}
	return matched, total
}

// appendUnique appends courses not yet delivered in this session and
// returns them. Caller holds l.mu.
func (l *Loader) appendUnique(items []course.Course) []course.Course {
	added := make([]course.Course, 0, len(items))
	for _, c := range items {
		if _, dup := l.seen[c.ID]; dup {
			continue
		}
		l.seen[c.ID] = struct{}{}
		added = append(added, c)
	}
	l.items = append(l.items, added...)
	return added
}

func lastPage(res *paging.Result[course.Course], pageSize int) bool {
	return len(res.Items) < pageSize || !res.HasNextPage || res.NextCursor == ""
}

func orEmpty(res *paging.Result[course.Course]) *paging.Result[course.Course] {
	if res == nil {
		return &paging.Result[course.Course]{}
	}
	return res
}

func (l *Loader) emit(ctx context.Context) {
	if l.observer == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			l.logger.Warnf(ctx, "observer panicked: %v", r)
		}
	}()
	l.observer.Observe(l.State())
}

func (l *Loader) notify(ctx context.Context, pv analytics.PageView) {
	if len(pv.Items) == 0 {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			l.logger.Debugf(ctx, "analytics notifier panicked: %v", r)
		}
	}()
	if err := l.notifier.Notify(ctx, pv); err != nil {
		l.logger.Debugf(ctx, "analytics notification dropped: %v", err)
	}
}
