package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ncobase/unicourse/concurrency/worker"
	"github.com/ncobase/unicourse/course"
	"github.com/ncobase/unicourse/ctxutil"
	"github.com/ncobase/unicourse/logging/logger"
	"github.com/segmentio/kafka-go"
)

func TestListName(t *testing.T) {
	tests := []struct {
		f    course.FilterSet
		want string
	}{
		{course.FilterSet{}, "Corsi"},
		{course.FilterSet{Discipline: "ingegneria"}, "Corsi | ingegneria"},
		{course.FilterSet{Discipline: "ingegneria", Location: "roma", University: "sapienza"}, "Corsi | roma | ingegneria | sapienza"},
	}
	for _, tt := range tests {
		if got := ListName(tt.f); got != tt.want {
			t.Errorf("ListName(%+v) = %q, want %q", tt.f, got, tt.want)
		}
	}
}

func TestNewPageView(t *testing.T) {
	items := []course.Course{
		{ID: "a", Name: "Fisica", Discipline: course.Ref{Name: "Scienze"}},
		{ID: "b", Name: "Storia"},
	}
	pv := NewPageView("courses", course.FilterSet{Location: "roma"}, 2, 24, items)

	if pv.ListName != "Corsi | roma" || pv.Page != 2 {
		t.Errorf("pv = %+v", pv)
	}
	if !slices.Equal(pv.ItemIDs(), []string{"a", "b"}) {
		t.Errorf("ItemIDs() = %v", pv.ItemIDs())
	}
	if pv.Items[0].Category != "Scienze" || pv.Items[1].Category != "course" {
		t.Errorf("categories = %q, %q", pv.Items[0].Category, pv.Items[1].Category)
	}
	if pv.Items[1].Index != 25 {
		t.Errorf("index = %d", pv.Items[1].Index)
	}
	if ev := pv.Event(); ev["item_count"] != 2 || ev["event"] != EventName {
		t.Errorf("Event() = %v", ev)
	}
}

type recordingSink struct {
	mu     sync.Mutex
	views  []PageView
	traces []string
	err    error
	panic  bool
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Send(ctx context.Context, pv PageView) error {
	if s.panic {
		panic("sink exploded")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views = append(s.views, pv)
	s.traces = append(s.traces, ctxutil.GetTraceID(ctx))
	return s.err
}

func TestDispatcherDeliversToAllSinks(t *testing.T) {
	ok := &recordingSink{}
	failing := &recordingSink{err: errors.New("unavailable")}
	exploding := &recordingSink{panic: true}

	d, err := NewDispatcher(&worker.Config{MaxWorkers: 1, QueueSize: 8, TaskTimeout: time.Second}, logger.Discard(), exploding, failing, ok)
	if err != nil {
		t.Fatal(err)
	}

	ctx := ctxutil.SetTraceID(context.Background(), "trace-7")
	for page := 1; page <= 3; page++ {
		if err := d.Notify(ctx, PageView{ListID: "courses", Page: page}); err != nil {
			t.Fatalf("Notify() error = %v", err)
		}
	}
	if err := d.Close(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(ok.views) != 3 || len(failing.views) != 3 {
		t.Fatalf("delivered %d/%d views, want 3/3", len(ok.views), len(failing.views))
	}
	for i, pv := range ok.views {
		if pv.Page != i+1 {
			t.Errorf("view %d page = %d", i, pv.Page)
		}
		if ok.traces[i] != "trace-7" {
			t.Errorf("trace = %q", ok.traces[i])
		}
	}
	if got := d.Metrics()["failed_tasks"]; got != 3 {
		t.Errorf("failed_tasks = %d", got)
	}
}

type blockingSink struct{ release chan struct{} }

func (blockingSink) Name() string { return "blocking" }
func (s blockingSink) Send(ctx context.Context, _ PageView) error {
	select {
	case <-s.release:
	case <-ctx.Done():
	}
	return nil
}

func TestDispatcherNeverBlocks(t *testing.T) {
	sink := blockingSink{release: make(chan struct{})}
	d, err := NewDispatcher(&worker.Config{MaxWorkers: 1, QueueSize: 1}, logger.Discard(), sink)
	if err != nil {
		t.Fatal(err)
	}

	var dropped int
	for i := 0; i < 10; i++ {
		if errors.Is(d.Notify(context.Background(), PageView{Page: i}), worker.ErrQueueFull) {
			dropped++
		}
	}
	if dropped == 0 {
		t.Error("expected some page views to be dropped")
	}
	close(sink.release)
	_ = d.Close(context.Background())
}

func TestNewDispatcherValidatesConfig(t *testing.T) {
	if _, err := NewDispatcher(&worker.Config{}, nil); err == nil {
		t.Error("expected config error")
	}
}

func TestLogSink(t *testing.T) {
	l := logger.NewLogger()
	var buf bytes.Buffer
	l.SetOutput(&buf)

	pv := PageView{ListID: "courses", ListName: "Corsi", Page: 1, Items: []Item{{ID: "x"}}}
	if err := (LogSink{Logger: l}).Send(context.Background(), pv); err != nil {
		t.Fatal(err)
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["msg"] != EventName || entry["list_id"] != "courses" {
		t.Errorf("entry = %v", entry)
	}
}

func TestStreamValues(t *testing.T) {
	v := streamValues(PageView{ListID: "l", Page: 3, Items: []Item{{ID: "a"}, {ID: "b"}}})
	if v["item_ids"] != "a,b" || v["item_count"] != 2 || v["page"] != 3 {
		t.Errorf("streamValues = %v", v)
	}
}

type fakeWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaSink(t *testing.T) {
	w := &fakeWriter{}
	s := NewKafkaSink(w)
	pv := PageView{ListID: "courses", ListName: "Corsi | roma", Page: 2, Items: []Item{{ID: "c1"}}}
	if err := s.Send(context.Background(), pv); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil || !w.closed {
		t.Fatal("writer not closed")
	}
	if len(w.msgs) != 1 || string(w.msgs[0].Key) != "courses" {
		t.Fatalf("msgs = %+v", w.msgs)
	}
	if !strings.Contains(string(w.msgs[0].Value), `"item_ids":["c1"]`) {
		t.Errorf("value = %s", w.msgs[0].Value)
	}
}
