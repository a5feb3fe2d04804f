package distortion

import (
	"time"

	"github.com/pixil98/go-dream/internal/clock"
	"github.com/pixil98/go-dream/internal/events"
	"github.com/pixil98/go-dream/internal/mood"
	"github.com/pixil98/go-dream/internal/rng"
)

// Ambient dream event types. They carry no world state of their own; the
// presentation layer decides how to show them.
const (
	TypeTextureSwap        = "texture_swap"
	TypeObjectScaling      = "object_scaling"
	TypeLightingChange     = "lighting_change"
	TypeFloatingObjects    = "floating_objects"
	TypeGravityWarp        = "gravity_warp"
	TypeNonEuclideanPortal = "non_euclidean_portal"
	TypeTimeWarp           = "time_warp"
)

const (
	DefaultAmbientInterval = 8 * time.Second

	rareEventChance  = 0.05
	gravityWarpFloor = 0.6
)

// Ambient emits low-stakes dream events whose flavour follows the mood and
// whose frequency follows the dream intensity.
type Ambient struct {
	rnd      *rng.Source
	timers   *clock.Timers
	pub      events.Publisher
	interval time.Duration

	mood      mood.Vector
	intensity float64
	rare      bool

	running   bool
	epoch     uint64
	handle    clock.Handle
	hasHandle bool
}

func NewAmbient(rnd *rng.Source, timers *clock.Timers, pub events.Publisher, interval time.Duration) *Ambient {
	if interval <= 0 {
		interval = DefaultAmbientInterval
	}
	return &Ambient{rnd: rnd, timers: timers, pub: pub, interval: interval}
}

func (a *Ambient) SetMood(v mood.Vector) {
	a.mood = v
}

func (a *Ambient) SetIntensity(f float64) {
	a.intensity = clamp01(f)
}

// SetRareEvents unlocks portal and time warp events.
func (a *Ambient) SetRareEvents(enabled bool) {
	a.rare = enabled
}

func (a *Ambient) Start() {
	if a.running {
		return
	}
	a.running = true
	a.schedule()
}

func (a *Ambient) Stop() {
	a.epoch++
	a.running = false
	if a.hasHandle {
		a.timers.Cancel(a.handle)
		a.hasHandle = false
	}
}

// Fire rolls for one ambient event and publishes it. It reports the type
// emitted, if any.
func (a *Ambient) Fire() (string, bool) {
	if !a.rnd.Chance(0.3 + 0.5*a.intensity) {
		return "", false
	}

	typ := a.pick()
	a.pub.Publish(events.DreamEvent, DreamEvent{
		Type:      typ,
		Intensity: a.intensity,
		Mood:      a.mood.Quadrant(),
	})
	return typ, true
}

func (a *Ambient) pick() string {
	if a.rare && a.rnd.Chance(rareEventChance) {
		if a.rnd.Chance(0.5) {
			return TypeNonEuclideanPortal
		}
		return TypeTimeWarp
	}
	if a.intensity >= gravityWarpFloor && a.rnd.Chance(0.25) {
		return TypeGravityWarp
	}

	q := a.mood.Quadrant()
	if a.rnd.Chance(0.5) {
		if q.Upper() {
			return TypeFloatingObjects
		}
		return TypeLightingChange
	}
	if q.Dynamic() {
		return TypeObjectScaling
	}
	return TypeTextureSwap
}

func (a *Ambient) schedule() {
	epoch := a.epoch
	a.handle = a.timers.After(a.interval, func() {
		a.hasHandle = false
		if epoch != a.epoch || !a.running {
			return
		}
		a.Fire()
		a.schedule()
	})
	a.hasHandle = true
}
