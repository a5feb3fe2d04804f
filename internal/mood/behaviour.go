package mood

import "time"

// BehaviourConfig sets how the dreamer's own conduct pushes the mood.
type BehaviourConfig struct {
	// MoveThreshold is the distance per tick above which the player counts
	// as moving. Moving adds MoveFactor per unit travelled to the dynamic
	// axis; standing still drains StillRate per second from it.
	MoveThreshold float64
	MoveFactor    float64
	StillRate     float64

	// A single reported move longer than StrideDistance adds StrideBonus.
	StrideDistance float64
	StrideBonus    float64

	ZoneChange float64
	DeathPush  float64

	// Long sessions wear the dreamer down towards downer.
	FatigueAfter    time.Duration
	FatigueRate     float64
	ExhaustionAfter time.Duration
	ExhaustionRate  float64
}

func DefaultBehaviourConfig() BehaviourConfig {
	return BehaviourConfig{
		MoveThreshold:   0.1,
		MoveFactor:      0.1,
		StillRate:       0.05,
		StrideDistance:  0.5,
		StrideBonus:     0.1,
		ZoneChange:      0.1,
		DeathPush:       1.0,
		FatigueAfter:    300 * time.Second,
		FatigueRate:     0.01,
		ExhaustionAfter: 480 * time.Second,
		ExhaustionRate:  0.02,
	}
}

// Behaviour turns movement, zone changes, deaths and session length into
// mood pushes on an Engine.
type Behaviour struct {
	cfg    BehaviourConfig
	engine *Engine
}

func NewBehaviour(e *Engine, cfg BehaviourConfig) *Behaviour {
	return &Behaviour{cfg: cfg, engine: e}
}

// Track accounts for one tick in which the player travelled moved units and
// the session has run for elapsed.
func (b *Behaviour) Track(moved float64, dt, elapsed time.Duration) {
	if dt <= 0 {
		return
	}
	secs := dt.Seconds()

	var d Vector
	if moved > b.cfg.MoveThreshold {
		d.Y = moved * b.cfg.MoveFactor
	} else {
		d.Y = -b.cfg.StillRate * secs
	}

	if elapsed > b.cfg.FatigueAfter {
		d.X -= b.cfg.FatigueRate * secs
	}
	if elapsed > b.cfg.ExhaustionAfter {
		d.X -= b.cfg.ExhaustionRate * secs
	}

	if d.Y > 0 {
		b.engine.Nudge(d, "movement")
	} else {
		b.engine.Nudge(d, "stillness")
	}
}

// Stride handles one reported move of the given distance.
func (b *Behaviour) Stride(distance float64) {
	if distance <= b.cfg.StrideDistance {
		return
	}
	b.engine.Nudge(Vector{Y: b.cfg.StrideBonus}, "stride")
}

func (b *Behaviour) ZoneChanged(zone string) {
	b.engine.Nudge(Vector{Y: b.cfg.ZoneChange}, "zone_"+zone)
}

func (b *Behaviour) Died() {
	b.engine.ApplyDelta(Vector{X: -b.cfg.DeathPush}, "death")
}
