package journal

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-dream/internal/events"
	"github.com/pixil98/go-testutil"
)

type fakeSource struct {
	mu         sync.Mutex
	handler    events.Handler
	subscribed chan struct{}
}

func (f *fakeSource) SubscribeAll(h events.Handler) func() {
	f.mu.Lock()
	f.handler = h
	f.mu.Unlock()
	close(f.subscribed)
	return func() {}
}

func (f *fakeSource) emit(e events.Event) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	h(e)
}

func TestWriteAndReadFile(t *testing.T) {
	path := Path(t.TempDir(), "abc")
	evs := []events.Event{
		{Topic: events.SessionNew, Session: "abc", Time: time.Unix(10, 0).UTC(), Data: map[string]float64{"max_duration": 60}},
		{Topic: events.SessionEnd, Session: "abc", Time: time.Unix(70, 0).UTC(), Data: map[string]string{"type": "timeout"}},
	}

	if err := WriteFile(path, evs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "count", len(got), 2)
	testutil.AssertEqual(t, "topic", got[1].Topic, events.SessionEnd)
	testutil.AssertEqual(t, "time", got[0].Time.Equal(time.Unix(10, 0)), true)

	var data map[string]string
	if err := json.Unmarshal(got[1].Data, &data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "payload", data["type"], "timeout")
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(Path(t.TempDir(), "missing"))
	testutil.AssertErrorContains(t, err, "opening")
}

func TestJournal_SplitsSessions(t *testing.T) {
	dir := t.TempDir()
	src := &fakeSource{subscribed: make(chan struct{})}
	j := NewJournal(dir, src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- j.Start(ctx)
	}()
	<-src.subscribed

	src.emit(events.Event{Topic: events.SessionNew, Session: "one"})
	src.emit(events.Event{Topic: events.SessionEnd, Session: "one"})
	src.emit(events.Event{Topic: events.MoodFinal, Session: "one"})
	src.emit(events.Event{Topic: events.SessionNew, Session: "two"})
	src.emit(events.Event{Topic: events.MoodChanged, Session: "two"})

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids, err := Sessions(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "sessions", len(ids), 2)
	testutil.AssertEqual(t, "first", ids[0], "one")

	one, err := ReadFile(Path(dir, "one"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "one events", len(one), 3)
	testutil.AssertEqual(t, "one last", one[2].Topic, events.MoodFinal)

	two, err := ReadFile(Path(dir, "two"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "two events", len(two), 2)
}
