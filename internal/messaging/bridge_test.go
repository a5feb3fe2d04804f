package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/pixil98/go-dream/internal/dream"
	"github.com/pixil98/go-dream/internal/events"
	"github.com/pixil98/go-testutil"
)

type fakeSource struct {
	mu       sync.Mutex
	handlers []events.Handler
}

func (f *fakeSource) SubscribeAll(h events.Handler) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers = append(f.handlers, h)
	return func() {}
}

func (f *fakeSource) emit(e events.Event) {
	f.mu.Lock()
	hs := append([]events.Handler(nil), f.handlers...)
	f.mu.Unlock()
	for _, h := range hs {
		h(e)
	}
}

type chanSink chan dream.Input

func (c chanSink) Submit(in dream.Input) {
	select {
	case c <- in:
	default:
	}
}

func startServer(t *testing.T, opts ...NatsServerOpt) (*NatsServer, context.CancelFunc) {
	t.Helper()
	s, err := NewNatsServer(append([]NatsServerOpt{WithListen("", server.RANDOM_PORT)}, opts...)...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := s.Start(ctx); err != nil {
			t.Errorf("server: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	select {
	case <-s.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("nats server never became ready")
	}
	return s, cancel
}

func startBridge(t *testing.T, s *NatsServer, src EventSource, sink Submitter) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	b := NewBridge(s, src, sink)
	go func() {
		_ = b.Start(ctx)
	}()
}

func TestBridge_Inbound(t *testing.T) {
	s, _ := startServer(t)
	sink := make(chanSink, 4)
	startBridge(t, s, &fakeSource{}, sink)

	nc, err := nats.Connect(s.ClientURL())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer nc.Close()

	// The bridge subscribes asynchronously, so keep publishing until the
	// message lands.
	deadline := time.After(5 * time.Second)
	for {
		if err := nc.Publish("dream.in.player.died", []byte(`{"cause":"falling piano"}`)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		select {
		case in := <-sink:
			testutil.AssertEqual(t, "topic", in.Topic, events.PlayerDied)
			testutil.AssertEqual(t, "payload", in.Payload, any(dream.PlayerDied{Cause: "falling piano"}))
			return
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatal("inbound message never arrived")
		}
	}
}

func TestBridge_Outbound(t *testing.T) {
	s, _ := startServer(t)
	src := &fakeSource{}
	startBridge(t, s, src, make(chanSink, 1))

	nc, err := nats.Connect(s.ClientURL())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer nc.Close()

	msgs := make(chan *nats.Msg, 16)
	sub, err := nc.ChanSubscribe("dream.out.>", msgs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer sub.Unsubscribe()
	if err := nc.Flush(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		src.emit(events.Event{Topic: events.SessionNew, Session: "abc", Data: map[string]float64{"max_duration": 60}})
		select {
		case msg := <-msgs:
			testutil.AssertEqual(t, "subject", msg.Subject, "dream.out.session.new")
			var got events.Event
			if err := json.Unmarshal(msg.Data, &got); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "session", got.Session, "abc")
			return
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatal("outbound message never arrived")
		}
	}
}

func TestBridge_RejectsUnknownTopic(t *testing.T) {
	sink := make(chanSink, 1)
	b := NewBridge(nil, &fakeSource{}, sink)

	b.receive("dream.in.mood.changed", []byte(`{}`))

	select {
	case in := <-sink:
		t.Fatalf("unexpected input %v", in.Topic)
	default:
	}
}

func TestNatsServer_Options(t *testing.T) {
	s, _ := startServer(t, WithClientName("dream-test"), WithMaxPayload(1024))
	testutil.AssertEqual(t, "client name", s.conn.Opts.Name, "dream-test")

	nc, err := nats.Connect(s.ClientURL())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer nc.Close()

	testutil.AssertEqual(t, "max payload", nc.MaxPayload(), int64(1024))
	if err := nc.Publish("dream.in.too_big", make([]byte, 2048)); !errors.Is(err, nats.ErrMaxPayload) {
		t.Errorf("oversized publish error = %v, want %v", err, nats.ErrMaxPayload)
	}
}
