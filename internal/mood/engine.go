package mood

import (
	"time"

	"github.com/pixil98/go-dream/internal/events"
)

// ChangedEvent is published on events.MoodChanged.
type ChangedEvent struct {
	Old       Vector   `json:"old"`
	New       Vector   `json:"new"`
	Delta     Vector   `json:"delta"`
	Reason    string   `json:"reason"`
	Quadrant  Quadrant `json:"quadrant"`
	Magnitude float64  `json:"magnitude"`
}

// FinalEvent is published on events.MoodFinal when a session ends.
type FinalEvent struct {
	Mood      Vector   `json:"mood"`
	Quadrant  Quadrant `json:"quadrant"`
	Magnitude float64  `json:"magnitude"`
}

// Engine owns the live mood vector and its per-second drift.
type Engine struct {
	current Vector
	drift   Vector

	// anchor is the mood last published; pending is the movement nudged in
	// since then.
	anchor  Vector
	pending Vector

	history *History
	pub     events.Publisher
	now     func() time.Time
}

type EngineOpt func(*Engine)

func WithHistoryLength(n int) EngineOpt {
	return func(e *Engine) {
		e.history = NewHistory(n)
	}
}

func WithClock(now func() time.Time) EngineOpt {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(pub events.Publisher, opts ...EngineOpt) *Engine {
	e := &Engine{
		history: NewHistory(DefaultHistoryLength),
		pub:     pub,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Current() Vector {
	return e.current
}

func (e *Engine) Drift() Vector {
	return e.drift
}

func (e *Engine) History() []HistoryEntry {
	return e.history.Entries()
}

// ApplyDelta moves the mood by d. Movements above SignificantChange on either
// axis are recorded and published.
func (e *Engine) ApplyDelta(d Vector, reason string) {
	old := e.current
	e.current = old.Add(d)

	if !significant(old, e.current) {
		return
	}

	e.publish(old, d, reason)
}

// Nudge moves the mood by d and publishes once the movement since the last
// published mood exceeds SignificantChange on either axis. Small per-frame
// inputs use it so that they add up instead of being dropped.
func (e *Engine) Nudge(d Vector, reason string) {
	if d == (Vector{}) {
		return
	}
	e.current = e.current.Add(d)
	e.pending = Vector{X: e.pending.X + d.X, Y: e.pending.Y + d.Y}

	if !significant(e.anchor, e.current) {
		return
	}
	e.publish(e.anchor, e.pending, reason)
}

// ApplyDrift advances the mood by the current drift over dt.
func (e *Engine) ApplyDrift(dt time.Duration) {
	if e.drift == (Vector{}) || dt <= 0 {
		return
	}
	e.Nudge(e.drift.Scale(dt.Seconds()), "drift")
}

// SetDrift replaces the drift rate. Drift never accumulates across calls.
func (e *Engine) SetDrift(d Vector) {
	e.drift = d
}

func (e *Engine) ClearDrift() {
	e.drift = Vector{}
}

// Set forces the mood to v.
func (e *Engine) Set(v Vector, reason string) {
	target := Vector{X: Wrap(v.X), Y: Wrap(v.Y)}
	e.ApplyDelta(Vector{X: target.X - e.current.X, Y: target.Y - e.current.Y}, reason)
}

// Reset returns the mood and drift to zero.
func (e *Engine) Reset() {
	e.current = Vector{}
	e.drift = Vector{}
	e.anchor = Vector{}
	e.pending = Vector{}
	e.record("reset")
}

func (e *Engine) BeginSession() {
	e.record("session_start")
}

// EndSession records the closing mood, publishes it and returns its
// classification.
func (e *Engine) EndSession() Classified {
	e.record("session_end")

	c := Classify(e.current)
	e.pub.Publish(events.MoodFinal, FinalEvent{
		Mood:      e.current,
		Quadrant:  c.Quadrant,
		Magnitude: c.Magnitude,
	})
	return c
}

func (e *Engine) publish(old, delta Vector, reason string) {
	e.anchor = e.current
	e.pending = Vector{}

	e.record(reason)
	e.pub.Publish(events.MoodChanged, ChangedEvent{
		Old:       old,
		New:       e.current,
		Delta:     delta,
		Reason:    reason,
		Quadrant:  e.current.Quadrant(),
		Magnitude: e.current.Magnitude(),
	})
}

func (e *Engine) record(reason string) {
	e.history.Add(HistoryEntry{
		Mood:   e.current,
		Reason: reason,
		Time:   e.now(),
	})
}
