package distortion

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-dream/internal/clock"
	"github.com/pixil98/go-dream/internal/events"
	"github.com/pixil98/go-dream/internal/game"
	"github.com/pixil98/go-dream/internal/mood"
	"github.com/pixil98/go-dream/internal/rng"
)

const (
	TypeRealityDistortion = "reality_distortion"

	PhaseStart = "start"
	PhaseEnd   = "end"
)

// Config bounds how often and how many distortions run. The cap and
// cooldown shift with the mood: upper moods allow more concurrent effects,
// dynamic moods shorten the cooldown.
type Config struct {
	MaxConcurrent       int
	UpperMaxConcurrent  int
	DownerMaxConcurrent int

	Cooldown        time.Duration
	DynamicCooldown time.Duration
	StaticCooldown  time.Duration

	// MinMagnitude gates admission on mood strength.
	MinMagnitude float64
	// NeutralMagnitude is the strength below which the mood does not scale
	// the cap or cooldown.
	NeutralMagnitude float64

	// Attempts run every BaseInterval*(1-intensity), never more often than
	// MinInterval.
	BaseInterval time.Duration
	MinInterval  time.Duration

	HistoryLimit int
}

func DefaultConfig() Config {
	return Config{
		MaxConcurrent:       3,
		UpperMaxConcurrent:  4,
		DownerMaxConcurrent: 2,
		Cooldown:            5 * time.Second,
		DynamicCooldown:     3 * time.Second,
		StaticCooldown:      8 * time.Second,
		MinMagnitude:        1.0,
		NeutralMagnitude:    2.0,
		BaseInterval:        10 * time.Second,
		MinInterval:         2 * time.Second,
		HistoryLimit:        20,
	}
}

// DreamEvent is published on events.DreamEvent.
type DreamEvent struct {
	Type       string        `json:"type"`
	Id         string        `json:"id,omitempty"`
	Distortion Kind          `json:"distortion,omitempty"`
	Phase      string        `json:"phase,omitempty"`
	Intensity  float64       `json:"intensity"`
	Mood       mood.Quadrant `json:"mood"`
	DurationMs int64         `json:"duration_ms,omitempty"`
}

// Instance is a running distortion.
type Instance struct {
	Id        string        `json:"id"`
	Kind      Kind          `json:"kind"`
	StartedAt time.Duration `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Intensity float64       `json:"intensity"`

	effect  effect
	expiry  clock.Handle
	elapsed time.Duration
}

type HistoryEntry struct {
	Kind      Kind          `json:"kind"`
	At        time.Duration `json:"at"`
	Intensity float64       `json:"intensity"`
	Mood      mood.Quadrant `json:"mood"`
}

// Scheduler admits distortions into a bounded pool and ends each one when
// it expires or when the pool is flushed.
type Scheduler struct {
	cfg    Config
	world  *game.World
	rnd    *rng.Source
	timers *clock.Timers
	pub    events.Publisher

	active  map[Kind]*Instance
	history []HistoryEntry

	mood      mood.Vector
	intensity float64
	unlocked  bool

	running    bool
	epoch      uint64
	started    bool
	lastStart  time.Duration
	attempt    clock.Handle
	hasAttempt bool
}

func NewScheduler(cfg Config, w *game.World, rnd *rng.Source, timers *clock.Timers, pub events.Publisher) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		world:  w,
		rnd:    rnd,
		timers: timers,
		pub:    pub,
		active: map[Kind]*Instance{},
	}
}

func (s *Scheduler) SetMood(v mood.Vector) {
	s.mood = v
}

// SetIntensity sets the dream intensity in [0, 1].
func (s *Scheduler) SetIntensity(f float64) {
	s.intensity = clamp01(f)
}

// SetUnlocked lifts the MinMagnitude gate, so a seasoned dreamer sees
// distortions even in a neutral mood.
func (s *Scheduler) SetUnlocked(unlocked bool) {
	s.unlocked = unlocked
}

func (s *Scheduler) Unlocked() bool {
	return s.unlocked
}

func (s *Scheduler) Running() bool {
	return s.running
}

// Start begins periodic admission attempts.
func (s *Scheduler) Start() {
	if s.running {
		return
	}
	s.running = true
	s.scheduleAttempt()
}

// Limits returns the concurrency cap and cooldown for the current mood.
func (s *Scheduler) Limits() (int, time.Duration) {
	if s.mood.Magnitude() < s.cfg.NeutralMagnitude {
		return s.cfg.MaxConcurrent, s.cfg.Cooldown
	}

	q := s.mood.Quadrant()
	max := s.cfg.DownerMaxConcurrent
	if q.Upper() {
		max = s.cfg.UpperMaxConcurrent
	}
	cooldown := s.cfg.StaticCooldown
	if q.Dynamic() {
		cooldown = s.cfg.DynamicCooldown
	}
	return max, cooldown
}

// TryAdmit starts one distortion if the pool has room, the cooldown has
// passed and the mood is strong enough or the gate is unlocked. Kinds
// already active are skipped.
func (s *Scheduler) TryAdmit() (Kind, bool) {
	if !s.running {
		return "", false
	}
	if !s.unlocked && s.mood.Magnitude() < s.cfg.MinMagnitude {
		return "", false
	}

	max, cooldown := s.Limits()
	if len(s.active) >= max {
		return "", false
	}
	now := s.timers.Now()
	if s.started && now-s.lastStart < cooldown {
		return "", false
	}

	var free []Kind
	for _, k := range Kinds {
		if _, ok := s.active[k]; !ok {
			free = append(free, k)
		}
	}
	if len(free) == 0 {
		return "", false
	}

	k := free[s.rnd.Int(0, len(free)-1)]
	s.start(k)
	return k, true
}

func (s *Scheduler) start(k Kind) {
	e := catalogue[k]
	now := s.timers.Now()
	duration := e.min + time.Duration(s.rnd.Float(0, 1)*float64(e.spread))

	inst := &Instance{
		Id:        uuid.NewString(),
		Kind:      k,
		StartedAt: now,
		Duration:  duration,
		Intensity: s.intensity,
	}
	inst.effect = e.start(env{world: s.world, rnd: s.rnd, intensity: s.intensity})

	epoch := s.epoch
	inst.expiry = s.timers.After(duration, func() {
		if epoch != s.epoch || s.active[k] != inst {
			return
		}
		s.end(inst)
	})

	s.active[k] = inst
	s.started = true
	s.lastStart = now

	q := s.mood.Quadrant()
	s.history = append(s.history, HistoryEntry{Kind: k, At: now, Intensity: s.intensity, Mood: q})
	if over := len(s.history) - s.cfg.HistoryLimit; over > 0 {
		s.history = s.history[over:]
	}

	s.pub.Publish(events.DreamEvent, DreamEvent{
		Type:       TypeRealityDistortion,
		Id:         inst.Id,
		Distortion: k,
		Phase:      PhaseStart,
		Intensity:  s.intensity,
		Mood:       q,
		DurationMs: duration.Milliseconds(),
	})
}

func (s *Scheduler) end(inst *Instance) {
	delete(s.active, inst.Kind)
	inst.effect.end(s.world)

	s.pub.Publish(events.DreamEvent, DreamEvent{
		Type:       TypeRealityDistortion,
		Id:         inst.Id,
		Distortion: inst.Kind,
		Phase:      PhaseEnd,
		Intensity:  inst.Intensity,
		Mood:       s.mood.Quadrant(),
	})
}

// Update animates every active distortion.
func (s *Scheduler) Update(dt time.Duration) {
	for _, k := range Kinds {
		inst, ok := s.active[k]
		if !ok {
			continue
		}
		inst.elapsed += dt
		inst.effect.update(s.world, inst.elapsed)
	}
}

// Flush ends every active distortion immediately and stops admission.
// Expiry callbacks already queued are ignored.
func (s *Scheduler) Flush() {
	s.epoch++
	s.running = false
	if s.hasAttempt {
		s.timers.Cancel(s.attempt)
		s.hasAttempt = false
	}

	for _, k := range Kinds {
		inst, ok := s.active[k]
		if !ok {
			continue
		}
		s.timers.Cancel(inst.expiry)
		s.end(inst)
	}
}

// Reset flushes the pool and forgets history and cooldown.
func (s *Scheduler) Reset() {
	s.Flush()
	s.history = nil
	s.started = false
	s.lastStart = 0
	s.intensity = 0
}

// Active returns the running distortions ordered by start time.
func (s *Scheduler) Active() []Instance {
	out := make([]Instance, 0, len(s.active))
	for _, inst := range s.active {
		out = append(out, *inst)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt == out[j].StartedAt {
			return out[i].Kind < out[j].Kind
		}
		return out[i].StartedAt < out[j].StartedAt
	})
	return out
}

func (s *Scheduler) History() []HistoryEntry {
	out := make([]HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Scheduler) interval() time.Duration {
	d := time.Duration(float64(s.cfg.BaseInterval) * (1 - s.intensity))
	if d < s.cfg.MinInterval {
		d = s.cfg.MinInterval
	}
	if d <= 0 {
		d = DefaultConfig().MinInterval
	}
	return d
}

func (s *Scheduler) scheduleAttempt() {
	epoch := s.epoch
	s.attempt = s.timers.After(s.interval(), func() {
		s.hasAttempt = false
		if epoch != s.epoch || !s.running {
			return
		}
		s.TryAdmit()
		s.scheduleAttempt()
	})
	s.hasAttempt = true
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
