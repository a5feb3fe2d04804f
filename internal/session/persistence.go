package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/pixil98/go-dream/internal/mood"
	"github.com/pixil98/go-dream/internal/rng"
	"github.com/pixil98/go-dream/internal/storage"
)

const (
	DefaultKeyPrefix    = "dream_"
	DefaultHistoryLimit = 10

	// RareEventSessions is how many sessions unlock rare dream events.
	RareEventSessions = 10
	// DistortionUnlockSessions is how many sessions lift the mood gate on
	// reality distortions.
	DistortionUnlockSessions = 20

	keySessionCount   = "session_count"
	keyLastMood       = "last_mood"
	keySessionHistory = "session_history"
	keyLastSeed       = "last_seed"
)

// Summary is one finished session.
type Summary struct {
	Session   int             `json:"session"`
	Mood      mood.Classified `json:"mood"`
	Timestamp time.Time       `json:"timestamp"`
	Duration  float64         `json:"duration"`
}

// Record is everything remembered between sessions.
type Record struct {
	SessionCount int              `json:"session_count"`
	LastMood     *mood.Classified `json:"last_mood"`
	History      []Summary        `json:"history"`
	LastSeed     int64            `json:"last_seed"`
}

func (r Record) RareEventsEnabled() bool {
	return r.SessionCount >= RareEventSessions
}

func (r Record) DistortionsUnlocked() bool {
	return r.SessionCount >= DistortionUnlockSessions
}

// Persistence reads and writes the Record through a key/value store. Reads
// never fail: a missing or unreadable key falls back to its zero value.
type Persistence struct {
	kv           storage.KeyValue
	prefix       string
	historyLimit int
	now          func() time.Time
	entropy      func() float64

	record Record
}

type PersistenceOpt func(*Persistence)

func WithKeyPrefix(prefix string) PersistenceOpt {
	return func(p *Persistence) {
		p.prefix = prefix
	}
}

func WithHistoryLimit(n int) PersistenceOpt {
	return func(p *Persistence) {
		p.historyLimit = n
	}
}

func WithClock(now func() time.Time) PersistenceOpt {
	return func(p *Persistence) {
		p.now = now
	}
}

// WithEntropy replaces the source of the single random sample folded into
// each seed.
func WithEntropy(f func() float64) PersistenceOpt {
	return func(p *Persistence) {
		p.entropy = f
	}
}

func NewPersistence(kv storage.KeyValue, opts ...PersistenceOpt) *Persistence {
	p := &Persistence{
		kv:           kv,
		prefix:       DefaultKeyPrefix,
		historyLimit: DefaultHistoryLimit,
		now:          time.Now,
		entropy:      rand.Float64,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.Load()
	return p
}

// Load refreshes the cached Record from the store.
func (p *Persistence) Load() Record {
	var r Record

	if !p.read(keySessionCount, &r.SessionCount) || r.SessionCount < 0 {
		r.SessionCount = 0
	}
	var last mood.Classified
	if p.read(keyLastMood, &last) {
		c := mood.Classify(last.Vector())
		r.LastMood = &c
	}
	if !p.read(keySessionHistory, &r.History) {
		r.History = nil
	}
	if !p.read(keyLastSeed, &r.LastSeed) {
		r.LastSeed = 0
	}

	p.record = r
	return p.Record()
}

// Record returns a copy of the cached Record.
func (p *Persistence) Record() Record {
	r := p.record
	r.History = append([]Summary(nil), p.record.History...)
	if p.record.LastMood != nil {
		m := *p.record.LastMood
		r.LastMood = &m
	}
	return r
}

// BeginSession counts a new session and derives its seed from the clock,
// the count, the previous mood and one entropy sample.
func (p *Persistence) BeginSession() (int, int64) {
	p.record.SessionCount++

	in := rng.SeedInputs{
		Now:          p.now(),
		SessionCount: p.record.SessionCount,
		Entropy:      p.entropy(),
	}
	if m := p.record.LastMood; m != nil {
		in.HasPrevMood = true
		in.PrevX, in.PrevY = m.X, m.Y
	}
	p.record.LastSeed = rng.DeriveSeed(in)

	p.write(keySessionCount, p.record.SessionCount)
	p.write(keyLastSeed, p.record.LastSeed)

	return p.record.SessionCount, p.record.LastSeed
}

// EndSession stores the final mood and appends the session to the bounded
// history.
func (p *Persistence) EndSession(final mood.Classified, duration time.Duration) error {
	p.record.LastMood = &final
	p.record.History = append(p.record.History, Summary{
		Session:   p.record.SessionCount,
		Mood:      final,
		Timestamp: p.now(),
		Duration:  duration.Seconds(),
	})
	if over := len(p.record.History) - p.historyLimit; over > 0 {
		p.record.History = p.record.History[over:]
	}

	if err := p.write(keyLastMood, final); err != nil {
		return err
	}
	return p.write(keySessionHistory, p.record.History)
}

func (p *Persistence) key(name string) string {
	return p.prefix + name
}

func (p *Persistence) read(name string, out any) bool {
	raw, found, err := p.kv.Get(p.key(name))
	if err != nil {
		slog.Warn("reading session record", "key", p.key(name), "error", err)
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		slog.Warn("discarding unreadable session record", "key", p.key(name), "error", err)
		return false
	}
	return true
}

func (p *Persistence) write(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", name, err)
	}
	if err := p.kv.Set(p.key(name), data); err != nil {
		slog.Warn("writing session record", "key", p.key(name), "error", err)
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
