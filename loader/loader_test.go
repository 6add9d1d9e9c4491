package loader

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/ncobase/unicourse/analytics"
	"github.com/ncobase/unicourse/course"
	"github.com/ncobase/unicourse/logging/logger"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newLoader(s Store, opts ...Option) *Loader {
	return New(s, append([]Option{WithLogger(logger.Discard())}, opts...)...)
}

func ids(s State) []string {
	return course.IDs(s.Items)
}

func assertUnique(t *testing.T, s State) {
	t.Helper()
	seen := map[string]bool{}
	for _, id := range ids(s) {
		if seen[id] {
			t.Fatalf("duplicate id %q in %v", id, ids(s))
		}
		seen[id] = true
	}
}

var ctx = context.Background()

func TestScenarioA_PaginatesUntilShortPage(t *testing.T) {
	store := &memStore{items: []course.Course{
		mk("a", "Analisi", "X", "roma"),
		mk("b", "Biologia", "X", "roma"),
		mk("c", "Chimica", "X", "milano"),
		mk("d", "Diritto", "Y", "roma"),
	}}
	l := newLoader(store)

	if err := l.Initialize(ctx, course.FilterSet{Discipline: "X"}, 2); err != nil {
		t.Fatal(err)
	}
	s := l.State()
	if !slices.Equal(ids(s), []string{"a", "b"}) || s.Exhausted || s.Busy {
		t.Fatalf("after initialize: items=%v exhausted=%v busy=%v", ids(s), s.Exhausted, s.Busy)
	}
	if !s.TotalKnown || s.Total != 3 {
		t.Errorf("total = %d (known %v), want 3", s.Total, s.TotalKnown)
	}

	l.LoadMore(ctx, Explicit)
	s = l.State()
	if !slices.Equal(ids(s), []string{"a", "b", "c"}) || !s.Exhausted {
		t.Fatalf("after load more: items=%v exhausted=%v", ids(s), s.Exhausted)
	}
	if s.Page != 2 {
		t.Errorf("page = %d, want 2", s.Page)
	}
	if store.lastQuery().After == "" {
		t.Error("second page should be requested after a cursor")
	}

	calls := store.calls()
	l.LoadMore(ctx, Explicit)
	if store.calls() != calls {
		t.Error("exhausted session issued another request")
	}
}

func TestInitializeRespectsPageSize(t *testing.T) {
	var items []course.Course
	for i := 0; i < 7; i++ {
		items = append(items, mk(fmt.Sprintf("c%02d", i), fmt.Sprintf("Corso %02d", i), "X", "roma"))
	}

	for pageSize := 1; pageSize <= 9; pageSize++ {
		t.Run(fmt.Sprintf("size=%d", pageSize), func(t *testing.T) {
			l := newLoader(&memStore{items: items})
			if err := l.Initialize(ctx, course.FilterSet{}, pageSize); err != nil {
				t.Fatal(err)
			}
			s := l.State()
			if len(s.Items) > pageSize {
				t.Fatalf("got %d items for page size %d", len(s.Items), pageSize)
			}
			wantExhausted := pageSize >= len(items)
			if s.Exhausted != wantExhausted {
				t.Errorf("exhausted = %v, want %v", s.Exhausted, wantExhausted)
			}
		})
	}
}

func manyCourses(n int) []course.Course {
	items := make([]course.Course, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, mk(fmt.Sprintf("c%05d", i), fmt.Sprintf("Corso %05d", i), "X", "roma"))
	}
	return items
}

func TestInitializeAboveMaxPageSize(t *testing.T) {
	store := &memStore{items: manyCourses(1500)}
	l := newLoader(store)

	if err := l.Initialize(ctx, course.FilterSet{Discipline: "X"}, 1100); err != nil {
		t.Fatal(err)
	}
	s := l.State()
	if len(s.Items) != MaxPageSize || s.PageSize != MaxPageSize {
		t.Fatalf("items = %d page size = %d, want %d", len(s.Items), s.PageSize, MaxPageSize)
	}
	if s.Exhausted {
		t.Fatal("a full page of a larger result must not exhaust the session")
	}
	if s.Total != 1500 {
		t.Errorf("total = %d, want 1500", s.Total)
	}
	if q := store.lastQuery(); q.Limit != MaxPageSize {
		t.Errorf("query limit = %d, want %d", q.Limit, MaxPageSize)
	}

	l.LoadMore(ctx, Explicit)
	s = l.State()
	if len(s.Items) != 1500 || !s.Exhausted {
		t.Fatalf("after load more: items = %d exhausted = %v", len(s.Items), s.Exhausted)
	}
	assertUnique(t, s)
}

func TestExhaustedMatchesStoreAroundMaxPageSize(t *testing.T) {
	tests := []struct {
		name     string
		stored   int
		pageSize int
	}{
		{"below max, more rows", MaxPageSize + 10, MaxPageSize - 1},
		{"at max, exact fit", MaxPageSize, MaxPageSize},
		{"at max, one more row", MaxPageSize + 1, MaxPageSize},
		{"above max, exact fit", MaxPageSize, 2 * MaxPageSize},
		{"above max, short store", 300, MaxPageSize + 1},
		{"two full pages", 2 * MaxPageSize, MaxPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{items: manyCourses(tt.stored)}
			l := newLoader(store)
			if err := l.Initialize(ctx, course.FilterSet{}, tt.pageSize); err != nil {
				t.Fatal(err)
			}

			for pages := 1; ; pages++ {
				s := l.State()
				if len(s.Items) > pages*s.PageSize {
					t.Fatalf("page %d: %d items exceed page size %d", pages, len(s.Items), s.PageSize)
				}
				if s.Exhausted != (len(s.Items) == tt.stored) {
					t.Fatalf("page %d: exhausted = %v with %d of %d items", pages, s.Exhausted, len(s.Items), tt.stored)
				}
				if s.Exhausted {
					break
				}
				if pages > tt.stored {
					t.Fatal("session never exhausted")
				}
				l.LoadMore(ctx, Explicit)
			}
			assertUnique(t, l.State())
		})
	}
}

func TestInitializeInvalidPageSize(t *testing.T) {
	l := newLoader(&memStore{})
	if err := l.Initialize(ctx, course.FilterSet{}, 0); !errors.Is(err, ErrInvalidPageSize) {
		t.Errorf("error = %v, want ErrInvalidPageSize", err)
	}
	if err := l.Apply(ctx, course.FilterSet{}, -1); !errors.Is(err, ErrInvalidPageSize) {
		t.Errorf("Apply error = %v, want ErrInvalidPageSize", err)
	}
}

var errMissingIndex = errors.New("missing index for compound filter and sort")

func TestScenarioB_FallsBackToDefaultOrder(t *testing.T) {
	store := &memStore{
		items: []course.Course{mk("a", "Zoologia", "X", "roma"), mk("b", "Arte", "X", "roma")},
		hook: func(_ context.Context, q course.Query) error {
			if !q.Sort.IsDefault() {
				return errMissingIndex
			}
			return nil
		},
	}
	l := newLoader(store)

	if err := l.Initialize(ctx, course.FilterSet{Discipline: "X", Sort: course.SortNameDesc}, 1); err != nil {
		t.Fatal(err)
	}
	s := l.State()
	if !slices.Equal(ids(s), []string{"a"}) || s.Exhausted || s.Busy {
		t.Fatalf("items=%v exhausted=%v busy=%v", ids(s), s.Exhausted, s.Busy)
	}
	if store.calls() != 2 {
		t.Errorf("calls = %d, want 2", store.calls())
	}

	l.LoadMore(ctx, Explicit)
	if q := store.lastQuery(); !q.Sort.IsDefault() {
		t.Errorf("continuation used sort %+v, want default order", q.Sort)
	}
	if s := l.State(); !slices.Equal(ids(s), []string{"a", "b"}) || !s.Exhausted {
		t.Errorf("after load more: items=%v exhausted=%v", ids(s), s.Exhausted)
	}
}

func TestInitializeFailureLeavesQuietEmptySession(t *testing.T) {
	store := &memStore{
		items: []course.Course{mk("a", "Arte", "X", "roma")},
		hook:  func(context.Context, course.Query) error { return errMissingIndex },
	}
	l := newLoader(store)

	if err := l.Initialize(ctx, course.FilterSet{}, 10); err != nil {
		t.Fatalf("failure should not surface, got %v", err)
	}
	s := l.State()
	if len(s.Items) != 0 || s.Exhausted || s.Busy {
		t.Fatalf("items=%v exhausted=%v busy=%v", ids(s), s.Exhausted, s.Busy)
	}
	if store.calls() != 2 {
		t.Errorf("calls = %d, want one retry", store.calls())
	}

	l.LoadMore(ctx, Explicit)
	if store.calls() != 2 {
		t.Error("LoadMore after failed initialize issued a request")
	}
}

func TestCountFailureIsIgnored(t *testing.T) {
	store := &memStore{
		items:    []course.Course{mk("a", "Arte", "X", "roma")},
		countErr: errors.New("count unsupported"),
	}
	l := newLoader(store)
	_ = l.Initialize(ctx, course.FilterSet{}, 10)

	s := l.State()
	if s.TotalKnown || s.Total != 0 {
		t.Errorf("total = %d known=%v, want unknown", s.Total, s.TotalKnown)
	}
	if len(s.Items) != 1 {
		t.Errorf("items = %v", ids(s))
	}
}

func TestLoadMoreDeduplicatesOverlappingPages(t *testing.T) {
	var items []course.Course
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		items = append(items, mk(id, "Corso "+id, "X", "roma"))
	}
	l := newLoader(&memStore{items: items, overlap: 1})

	_ = l.Initialize(ctx, course.FilterSet{}, 2)
	for i := 0; i < 10 && !l.State().Exhausted; i++ {
		l.LoadMore(ctx, Explicit)
		assertUnique(t, l.State())
	}
	s := l.State()
	if !s.Exhausted {
		t.Fatal("expected session to be exhausted")
	}
	if !slices.Equal(ids(s), []string{"a", "b", "c", "d", "e"}) {
		t.Errorf("items = %v", ids(s))
	}
}

func TestLoadMoreFailureExhaustsSession(t *testing.T) {
	store := &memStore{items: []course.Course{mk("a", "A", "X", "r"), mk("b", "B", "X", "r"), mk("c", "C", "X", "r")}}
	l := newLoader(store)
	_ = l.Initialize(ctx, course.FilterSet{}, 1)

	store.mu.Lock()
	store.hook = func(context.Context, course.Query) error { return errors.New("network down") }
	store.mu.Unlock()

	l.LoadMore(ctx, Explicit)
	s := l.State()
	if !s.Exhausted || s.Busy {
		t.Fatalf("exhausted=%v busy=%v", s.Exhausted, s.Busy)
	}
	if !slices.Equal(ids(s), []string{"a"}) {
		t.Errorf("items = %v", ids(s))
	}
	calls := store.calls()
	l.LoadMore(ctx, Explicit)
	if store.calls() != calls {
		t.Error("failed session kept loading")
	}
}

func TestLoadMoreWhileBusyIsNoop(t *testing.T) {
	store := &memStore{items: []course.Course{mk("a", "A", "X", "r"), mk("b", "B", "X", "r"), mk("c", "C", "X", "r")}}
	l := newLoader(store)
	_ = l.Initialize(ctx, course.FilterSet{}, 1)

	entered := make(chan struct{})
	release := make(chan struct{})
	store.mu.Lock()
	store.hook = func(context.Context, course.Query) error {
		close(entered)
		<-release
		return nil
	}
	store.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		l.LoadMore(ctx, Explicit)
	}()
	<-entered

	before := l.State()
	if !before.Busy {
		t.Fatal("expected busy while request is pending")
	}
	calls := store.calls()
	for i := 0; i < 5; i++ {
		l.LoadMore(ctx, Explicit)
		l.LoadMore(ctx, Auto)
	}
	after := l.State()
	if store.calls() != calls {
		t.Errorf("busy LoadMore issued %d extra requests", store.calls()-calls)
	}
	if !slices.Equal(ids(before), ids(after)) || after.AutoLoads != before.AutoLoads {
		t.Error("busy LoadMore changed state")
	}

	close(release)
	<-done
	if s := l.State(); s.Busy || !slices.Equal(ids(s), []string{"a", "b"}) {
		t.Errorf("after release: busy=%v items=%v", s.Busy, ids(s))
	}
}

func TestScenarioC_StaleResponseIsDiscarded(t *testing.T) {
	store := &memStore{items: []course.Course{
		mk("x1", "Fisica", "F1", "roma"),
		mk("x2", "Geologia", "F1", "roma"),
		mk("y1", "Lettere", "F2", "roma"),
	}}

	entered := make(chan struct{})
	release := make(chan struct{})
	staleErr := make(chan error, 1)
	store.hook = func(ctx context.Context, q course.Query) error {
		if q.Filters.Discipline == "F1" {
			close(entered)
			<-release
			staleErr <- ctx.Err()
		}
		return nil
	}
	l := newLoader(store)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = l.Initialize(ctx, course.FilterSet{Discipline: "F1"}, 10)
	}()
	<-entered

	if err := l.Initialize(ctx, course.FilterSet{Discipline: "F2"}, 10); err != nil {
		t.Fatal(err)
	}
	close(release)
	<-done

	if err := <-staleErr; !errors.Is(err, context.Canceled) {
		t.Errorf("stale request context error = %v, want canceled", err)
	}
	s := l.State()
	if !slices.Equal(ids(s), []string{"y1"}) {
		t.Fatalf("items = %v, want only F2 results", ids(s))
	}
	if s.Filters.Discipline != "F2" || s.Busy {
		t.Errorf("filters=%+v busy=%v", s.Filters, s.Busy)
	}
}

func TestStaleLoadMoreIsDiscarded(t *testing.T) {
	store := &memStore{items: []course.Course{
		mk("a", "A", "F1", "r"), mk("b", "B", "F1", "r"), mk("c", "C", "F1", "r"),
		mk("z", "Z", "F2", "r"),
	}}
	l := newLoader(store)
	_ = l.Initialize(ctx, course.FilterSet{Discipline: "F1"}, 1)

	entered := make(chan struct{})
	release := make(chan struct{})
	store.mu.Lock()
	store.hook = func(_ context.Context, q course.Query) error {
		if q.After != "" {
			close(entered)
			<-release
		}
		return nil
	}
	store.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		l.LoadMore(ctx, Auto)
	}()
	<-entered

	_ = l.Initialize(ctx, course.FilterSet{Discipline: "F2"}, 1)
	close(release)
	<-done

	s := l.State()
	if !slices.Equal(ids(s), []string{"z"}) || s.Page != 1 || s.AutoLoads != 0 {
		t.Errorf("items=%v page=%d autoLoads=%d", ids(s), s.Page, s.AutoLoads)
	}
}

func TestResetClearsPreviousItems(t *testing.T) {
	store := &memStore{items: []course.Course{mk("a", "A", "X", "r"), mk("b", "B", "Y", "r")}}
	l := newLoader(store)

	_ = l.Initialize(ctx, course.FilterSet{Discipline: "X"}, 5)
	first := ids(l.State())
	_ = l.Initialize(ctx, course.FilterSet{Discipline: "Y"}, 5)
	second := ids(l.State())

	for _, id := range second {
		if slices.Contains(first, id) {
			t.Errorf("id %q carried over across reset", id)
		}
	}
}

func TestAutoLoadCap(t *testing.T) {
	var items []course.Course
	for i := 0; i < 20; i++ {
		items = append(items, mk(fmt.Sprintf("c%02d", i), fmt.Sprintf("Corso %02d", i), "X", "r"))
	}
	store := &memStore{items: items}
	l := newLoader(store)
	_ = l.Initialize(ctx, course.FilterSet{}, 1)

	for i := 0; i < 10; i++ {
		l.LoadMore(ctx, Auto)
	}
	s := l.State()
	if s.AutoLoads != DefaultAutoLoadCap || len(s.Items) != 1+DefaultAutoLoadCap {
		t.Fatalf("autoLoads=%d items=%d", s.AutoLoads, len(s.Items))
	}

	l.LoadMore(ctx, Explicit)
	if got := len(l.State().Items); got != 2+DefaultAutoLoadCap {
		t.Errorf("explicit load after cap: items = %d", got)
	}
	l.LoadMore(ctx, Auto)
	if got := len(l.State().Items); got != 2+DefaultAutoLoadCap {
		t.Errorf("auto load after cap still proceeded: items = %d", got)
	}

	_ = l.Initialize(ctx, course.FilterSet{}, 1)
	l.LoadMore(ctx, Auto)
	if s := l.State(); s.AutoLoads != 1 || len(s.Items) != 2 {
		t.Errorf("cap not reset by initialize: autoLoads=%d items=%d", s.AutoLoads, len(s.Items))
	}
}

func TestWithAutoLoadCap(t *testing.T) {
	store := &memStore{items: []course.Course{mk("a", "A", "X", "r"), mk("b", "B", "X", "r"), mk("c", "C", "X", "r")}}
	l := newLoader(store, WithAutoLoadCap(0))
	_ = l.Initialize(ctx, course.FilterSet{}, 1)

	l.LoadMore(ctx, Auto)
	if got := len(l.State().Items); got != 1 {
		t.Errorf("items = %d, auto loads should be disabled", got)
	}
}

func TestLoadMoreBeforeInitializeIsNoop(t *testing.T) {
	store := &memStore{items: []course.Course{mk("a", "A", "X", "r")}}
	l := newLoader(store)
	l.LoadMore(ctx, Explicit)
	if store.calls() != 0 {
		t.Error("LoadMore without a session issued a request")
	}
}

func TestScenarioD_SearchFiltersSortsLocally(t *testing.T) {
	var candidates []course.Course
	for i := 0; i < 47; i++ {
		candidates = append(candidates, mk(fmt.Sprintf("o%02d", i), fmt.Sprintf("Data %02d", i), "X", "milano"))
	}
	candidates = append(candidates,
		mk("r3", "Data Science", "X", "rome"),
		mk("r1", "Data Analytics", "X", "rome"),
		mk("r2", "Data Engineering", "X", "rome"),
	)
	slices.Reverse(candidates)

	var terms []string
	store := &memStore{}
	l := newLoader(store, WithSearcher(searcherFunc(func(_ context.Context, term string) ([]course.Course, error) {
		terms = append(terms, term)
		return candidates, nil
	})))

	if err := l.Apply(ctx, course.FilterSet{Location: "rome"}, 24); err != nil {
		t.Fatal(err)
	}
	if err := l.RunTextSearch(ctx, "data"); err != nil {
		t.Fatal(err)
	}

	s := l.State()
	if !slices.Equal(ids(s), []string{"r1", "r2", "r3"}) {
		t.Fatalf("items = %v", ids(s))
	}
	if !s.TotalKnown || s.Total != 3 || !s.Exhausted || !s.SearchMode || s.Busy {
		t.Errorf("state = total %d known %v exhausted %v search %v busy %v", s.Total, s.TotalKnown, s.Exhausted, s.SearchMode, s.Busy)
	}
	if !slices.Equal(terms, []string{"data"}) {
		t.Errorf("search terms = %v", terms)
	}

	calls := store.calls()
	l.LoadMore(ctx, Explicit)
	l.LoadMore(ctx, Auto)
	if store.calls() != calls || len(l.State().Items) != 3 {
		t.Error("LoadMore in search mode was not a no-op")
	}
}

func TestSearchTruncatesAndDeduplicates(t *testing.T) {
	var candidates []course.Course
	for i := 0; i < 30; i++ {
		c := mk(fmt.Sprintf("s%02d", i), fmt.Sprintf("Corso %02d", i), "X", "r")
		candidates = append(candidates, c, c)
	}
	l := newLoader(&memStore{}, WithSearcher(searcherFunc(func(context.Context, string) ([]course.Course, error) {
		return candidates, nil
	})))

	_ = l.Apply(ctx, course.FilterSet{Query: "  corso "}, 24)
	s := l.State()
	if len(s.Items) != 24 || s.Total != 30 {
		t.Errorf("items=%d total=%d, want 24/30", len(s.Items), s.Total)
	}
	if s.Filters.Query != "corso" {
		t.Errorf("query = %q", s.Filters.Query)
	}
	assertUnique(t, s)
}

func TestSearchFailureIsQuietAndTerminal(t *testing.T) {
	l := newLoader(&memStore{}, WithSearcher(searcherFunc(func(context.Context, string) ([]course.Course, error) {
		return nil, errors.New("search endpoint down")
	})))

	if err := l.RunTextSearch(ctx, "fisica"); err != nil {
		t.Fatal(err)
	}
	s := l.State()
	if len(s.Items) != 0 || !s.Exhausted || s.Busy || s.TotalKnown {
		t.Errorf("state = %+v", s)
	}
}

func TestSearchWithoutSearcher(t *testing.T) {
	l := newLoader(&memStore{})
	_ = l.RunTextSearch(ctx, "fisica")
	if s := l.State(); !s.Exhausted || !s.SearchMode || len(s.Items) != 0 {
		t.Errorf("state = %+v", s)
	}
}

func TestBlankSearchFallsBackToPaging(t *testing.T) {
	store := &memStore{items: []course.Course{mk("a", "A", "X", "r"), mk("b", "B", "Y", "r")}}
	searched := false
	l := newLoader(store, WithSearcher(searcherFunc(func(context.Context, string) ([]course.Course, error) {
		searched = true
		return nil, nil
	})))

	_ = l.Initialize(ctx, course.FilterSet{Discipline: "X"}, 5)
	_ = l.RunTextSearch(ctx, "   ")

	s := l.State()
	if searched {
		t.Error("blank term reached the search endpoint")
	}
	if s.SearchMode || s.Filters.Discipline != "X" || !slices.Equal(ids(s), []string{"a"}) {
		t.Errorf("state = %+v", s)
	}
}

func TestAnalyticsNotifications(t *testing.T) {
	var mu sync.Mutex
	var views []analytics.PageView
	notifier := analytics.NotifierFunc(func(_ context.Context, pv analytics.PageView) error {
		mu.Lock()
		defer mu.Unlock()
		views = append(views, pv)
		return errors.New("collector unavailable")
	})
	store := &memStore{items: []course.Course{mk("a", "A", "X", "roma"), mk("b", "B", "X", "roma"), mk("c", "C", "X", "roma")}}
	l := newLoader(store, WithNotifier(notifier), WithListID("grid"))

	_ = l.Initialize(ctx, course.FilterSet{Location: "roma"}, 2)
	l.LoadMore(ctx, Explicit)

	if len(views) != 2 {
		t.Fatalf("views = %d, want 2", len(views))
	}
	if views[0].Page != 1 || !slices.Equal(views[0].ItemIDs(), []string{"a", "b"}) {
		t.Errorf("first view = %+v", views[0])
	}
	if views[1].Page != 2 || !slices.Equal(views[1].ItemIDs(), []string{"c"}) || views[1].Items[0].Index != 2 {
		t.Errorf("second view = %+v", views[1])
	}
	if views[0].ListID != "grid" || views[0].ListName != "Corsi | roma" {
		t.Errorf("list = %q %q", views[0].ListID, views[0].ListName)
	}
	if s := l.State(); len(s.Items) != 3 {
		t.Errorf("notifier errors affected state: %v", ids(s))
	}
}

func TestPanickingCollaboratorsAreSwallowed(t *testing.T) {
	store := &memStore{items: []course.Course{mk("a", "A", "X", "r")}}
	l := newLoader(store,
		WithNotifier(analytics.NotifierFunc(func(context.Context, analytics.PageView) error { panic("analytics") })),
		WithObserver(ObserverFunc(func(State) { panic("render") })),
	)

	if err := l.Initialize(ctx, course.FilterSet{}, 5); err != nil {
		t.Fatal(err)
	}
	if s := l.State(); len(s.Items) != 1 || s.Busy {
		t.Errorf("state = %+v", s)
	}
}

func TestObserverSeesBusyTransitions(t *testing.T) {
	var mu sync.Mutex
	var states []State
	store := &memStore{items: []course.Course{mk("a", "A", "X", "r"), mk("b", "B", "X", "r")}}
	l := newLoader(store, WithObserver(ObserverFunc(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, s)
	})))

	_ = l.Initialize(ctx, course.FilterSet{}, 1)
	l.LoadMore(ctx, Explicit)

	if len(states) != 4 {
		t.Fatalf("observed %d states, want 4", len(states))
	}
	if !states[0].Busy || len(states[0].Items) != 0 {
		t.Errorf("initial state = %+v", states[0])
	}
	if states[1].Busy || len(states[1].Items) != 1 {
		t.Errorf("after first page = %+v", states[1])
	}
	if !states[2].Busy || states[3].Busy || len(states[3].Items) != 2 {
		t.Errorf("load more states = %+v, %+v", states[2], states[3])
	}
	for i := 1; i < len(states); i++ {
		if states[i].Seq <= states[i-1].Seq {
			t.Errorf("seq not increasing: %d then %d", states[i-1].Seq, states[i].Seq)
		}
	}
}

func TestAutoLoadingObserver(t *testing.T) {
	var items []course.Course
	for i := 0; i < 12; i++ {
		items = append(items, mk(fmt.Sprintf("c%02d", i), fmt.Sprintf("Corso %02d", i), "X", "r"))
	}
	store := &memStore{items: items}

	var l *Loader
	l = newLoader(store, WithObserver(ObserverFunc(func(s State) {
		if !s.Busy && !s.Exhausted {
			l.LoadMore(ctx, Auto)
		}
	})))

	_ = l.Initialize(ctx, course.FilterSet{}, 2)
	s := l.State()
	if s.AutoLoads != DefaultAutoLoadCap || len(s.Items) != 2*(1+DefaultAutoLoadCap) {
		t.Errorf("autoLoads=%d items=%d", s.AutoLoads, len(s.Items))
	}
}

func TestConcurrentUseKeepsInvariants(t *testing.T) {
	var items []course.Course
	for i := 0; i < 50; i++ {
		items = append(items, mk(fmt.Sprintf("c%02d", i), fmt.Sprintf("Corso %02d", i), fmt.Sprintf("D%d", i%3), "r"))
	}
	store := &memStore{items: items, hook: func(ctx context.Context, _ course.Query) error {
		select {
		case <-time.After(time.Millisecond):
		case <-ctx.Done():
		}
		return nil
	}}
	l := newLoader(store)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				if i%4 == 0 {
					_ = l.Initialize(ctx, course.FilterSet{Discipline: fmt.Sprintf("D%d", (g+i)%3)}, 3)
				} else {
					l.LoadMore(ctx, Trigger(i%2))
				}
			}
		}(g)
	}
	wg.Wait()

	s := l.State()
	assertUnique(t, s)
	for _, c := range s.Items {
		if c.Discipline.ID != s.Filters.Discipline {
			t.Fatalf("item %s from discipline %s in session for %s", c.ID, c.Discipline.ID, s.Filters.Discipline)
		}
	}
}

func TestSessionSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer func() { _ = tp.Shutdown(ctx) }()
	otel.SetTracerProvider(tp)

	store := &memStore{items: manyCourses(3)}
	l := newLoader(store)
	if err := l.Initialize(ctx, course.FilterSet{}, 2); err != nil {
		t.Fatal(err)
	}
	store.hook = func(context.Context, course.Query) error { return errors.New("connection reset") }
	l.LoadMore(ctx, Explicit)

	var names []string
	for _, s := range rec.Ended() {
		names = append(names, s.Name())
		if s.Name() == "loader.LoadMore" && len(s.Events()) == 0 {
			t.Error("failed load did not record its error")
		}
	}
	if !slices.Equal(names, []string{"loader.Initialize", "loader.LoadMore"}) {
		t.Errorf("spans = %v", names)
	}
}
