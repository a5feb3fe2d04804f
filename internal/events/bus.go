// Package events carries notifications between the dream subsystems and
// out to external collaborators.
package events

import (
	"sync"
	"time"
)

// Event is a single notification. Data holds a topic-specific payload.
type Event struct {
	Topic   Topic     `json:"topic"`
	Session string    `json:"session,omitempty"`
	Time    time.Time `json:"time"`
	Data    any       `json:"data,omitempty"`
}

type Handler func(Event)

// Publisher is implemented by anything events can be emitted into.
type Publisher interface {
	Publish(Topic, any)
}

type subscription struct {
	id      uint64
	topic   Topic
	all     bool
	handler Handler
}

// Bus delivers events synchronously to subscribers in registration order.
// Events published while a handler is running are queued and delivered
// after the current event, so every subscriber sees the emission order.
type Bus struct {
	mu       sync.Mutex
	subs     []subscription
	nextId   uint64
	queue    []Event
	draining bool
	session  string
	now      func() time.Time
}

type BusOpt func(*Bus)

// WithClock overrides the wall clock used to stamp events.
func WithClock(now func() time.Time) BusOpt {
	return func(b *Bus) {
		b.now = now
	}
}

func NewBus(opts ...BusOpt) *Bus {
	b := &Bus{now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetSession sets the session id stamped onto subsequent events.
func (b *Bus) SetSession(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session = id
}

// Subscribe registers h for topic. The returned func removes it.
func (b *Bus) Subscribe(topic Topic, h Handler) func() {
	return b.add(subscription{topic: topic, handler: h})
}

// SubscribeAll registers h for every topic.
func (b *Bus) SubscribeAll(h Handler) func() {
	return b.add(subscription{all: true, handler: h})
}

func (b *Bus) add(s subscription) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextId++
	s.id = b.nextId
	b.subs = append(b.subs, s)

	id := s.id
	return func() { b.remove(id) }
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish stamps and delivers an event.
func (b *Bus) Publish(topic Topic, data any) {
	b.mu.Lock()
	b.queue = append(b.queue, Event{
		Topic:   topic,
		Session: b.session,
		Time:    b.now(),
		Data:    data,
	})
	if b.draining {
		b.mu.Unlock()
		return
	}
	b.draining = true
	b.mu.Unlock()

	b.drain()
}

func (b *Bus) drain() {
	for {
		b.mu.Lock()
		if len(b.queue) == 0 {
			b.draining = false
			b.mu.Unlock()
			return
		}
		ev := b.queue[0]
		b.queue = b.queue[1:]
		subs := make([]subscription, len(b.subs))
		copy(subs, b.subs)
		b.mu.Unlock()

		for _, s := range subs {
			if s.all || s.topic == ev.Topic {
				s.handler(ev)
			}
		}
	}
}
