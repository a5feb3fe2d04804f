// Package tuning holds the numbers a designer adjusts between builds:
// session length, link pacing and distortion limits.
package tuning

import (
	"fmt"
	"os"
	"time"

	"github.com/pixil98/go-dream/internal/distortion"
	"github.com/pixil98/go-dream/internal/mood"
	"github.com/pixil98/go-dream/internal/session"
	"github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"
)

type Tuning struct {
	Session    Session    `yaml:"session"`
	Links      Links      `yaml:"links"`
	Mood       Mood       `yaml:"mood"`
	Distortion Distortion `yaml:"distortion"`
	Ambient    Ambient    `yaml:"ambient"`
	Behaviour  Behaviour  `yaml:"behaviour"`
	Health     Health     `yaml:"health"`
}

type Session struct {
	MaxDurationSec    float64 `yaml:"max_duration_sec"`
	DeathThreshold    float64 `yaml:"death_threshold"`
	RestartDelayMs    int     `yaml:"restart_delay_ms"`
	DeathFadeMs       int     `yaml:"death_fade_ms"`
	EndFadeMs         int     `yaml:"end_fade_ms"`
	FadeInMs          int     `yaml:"fade_in_ms"`
	HistoryLimit      int     `yaml:"history_limit"`
	PersistencePrefix string  `yaml:"persistence_prefix"`
}

type Links struct {
	CooldownMs   int `yaml:"cooldown_ms"`
	FadeMs       int `yaml:"fade_ms"`
	HistoryLimit int `yaml:"history_limit"`
}

type Mood struct {
	NeutralMagnitude float64 `yaml:"neutral_magnitude"`
	SpawnMagnitude   float64 `yaml:"spawn_magnitude"`
	HistoryLength    int     `yaml:"history_length"`
}

type Distortion struct {
	MaxConcurrent       int     `yaml:"max_concurrent"`
	UpperMaxConcurrent  int     `yaml:"upper_max_concurrent"`
	DownerMaxConcurrent int     `yaml:"downer_max_concurrent"`
	CooldownMs          int     `yaml:"cooldown_ms"`
	DynamicCooldownMs   int     `yaml:"dynamic_cooldown_ms"`
	StaticCooldownMs    int     `yaml:"static_cooldown_ms"`
	MinMagnitude        float64 `yaml:"min_magnitude"`
	BaseIntervalMs      int     `yaml:"base_interval_ms"`
	MinIntervalMs       int     `yaml:"min_interval_ms"`
	HistoryLimit        int     `yaml:"history_limit"`
}

type Ambient struct {
	IntervalMs int `yaml:"interval_ms"`
}

type Behaviour struct {
	MoveThreshold   float64 `yaml:"move_threshold"`
	MoveFactor      float64 `yaml:"move_factor"`
	StillRate       float64 `yaml:"still_rate"`
	StrideDistance  float64 `yaml:"stride_distance"`
	StrideBonus     float64 `yaml:"stride_bonus"`
	ZoneChange      float64 `yaml:"zone_change"`
	DeathPush       float64 `yaml:"death_push"`
	FatigueAfterSec float64 `yaml:"fatigue_after_sec"`
	FatigueRate     float64 `yaml:"fatigue_rate"`
	ExhaustAfterSec float64 `yaml:"exhaust_after_sec"`
	ExhaustRate     float64 `yaml:"exhaust_rate"`
}

type Health struct {
	Max       int `yaml:"max"`
	HitDamage int `yaml:"hit_damage"`
}

// Default returns the shipped tuning.
func Default() Tuning {
	sc := session.DefaultConfig()
	dc := distortion.DefaultConfig()
	bc := mood.DefaultBehaviourConfig()
	return Tuning{
		Session: Session{
			MaxDurationSec:    sc.MaxDuration.Seconds(),
			DeathThreshold:    sc.DeathThreshold,
			RestartDelayMs:    int(sc.RestartDelay.Milliseconds()),
			DeathFadeMs:       int(sc.DeathFade.Milliseconds()),
			EndFadeMs:         int(sc.EndFade.Milliseconds()),
			FadeInMs:          int(sc.FadeIn.Milliseconds()),
			HistoryLimit:      session.DefaultHistoryLimit,
			PersistencePrefix: session.DefaultKeyPrefix,
		},
		Links: Links{
			CooldownMs:   1000,
			FadeMs:       500,
			HistoryLimit: 20,
		},
		Mood: Mood{
			NeutralMagnitude: 2,
			SpawnMagnitude:   6,
			HistoryLength:    100,
		},
		Distortion: Distortion{
			MaxConcurrent:       dc.MaxConcurrent,
			UpperMaxConcurrent:  dc.UpperMaxConcurrent,
			DownerMaxConcurrent: dc.DownerMaxConcurrent,
			CooldownMs:          int(dc.Cooldown.Milliseconds()),
			DynamicCooldownMs:   int(dc.DynamicCooldown.Milliseconds()),
			StaticCooldownMs:    int(dc.StaticCooldown.Milliseconds()),
			MinMagnitude:        dc.MinMagnitude,
			BaseIntervalMs:      int(dc.BaseInterval.Milliseconds()),
			MinIntervalMs:       int(dc.MinInterval.Milliseconds()),
			HistoryLimit:        dc.HistoryLimit,
		},
		Ambient: Ambient{
			IntervalMs: 8000,
		},
		Behaviour: Behaviour{
			MoveThreshold:   bc.MoveThreshold,
			MoveFactor:      bc.MoveFactor,
			StillRate:       bc.StillRate,
			StrideDistance:  bc.StrideDistance,
			StrideBonus:     bc.StrideBonus,
			ZoneChange:      bc.ZoneChange,
			DeathPush:       bc.DeathPush,
			FatigueAfterSec: bc.FatigueAfter.Seconds(),
			FatigueRate:     bc.FatigueRate,
			ExhaustAfterSec: bc.ExhaustionAfter.Seconds(),
			ExhaustRate:     bc.ExhaustionRate,
		},
		Health: Health{
			Max:       session.DefaultMaxHealth,
			HitDamage: session.DefaultHitDamage,
		},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default value.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("reading tuning: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("parsing tuning %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("validating tuning %s: %w", path, err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	el := errors.NewErrorList()

	if t.Session.MaxDurationSec <= 0 {
		el.Add(fmt.Errorf("session.max_duration_sec must be positive"))
	}
	if t.Session.RestartDelayMs < 0 || t.Session.DeathFadeMs < 0 || t.Session.EndFadeMs < 0 || t.Session.FadeInMs < 0 {
		el.Add(fmt.Errorf("session fade and delay times must not be negative"))
	}
	if t.Session.HistoryLimit < 1 {
		el.Add(fmt.Errorf("session.history_limit must be at least 1"))
	}

	if t.Links.CooldownMs < 0 {
		el.Add(fmt.Errorf("links.cooldown_ms must not be negative"))
	}
	if t.Links.FadeMs <= 0 {
		el.Add(fmt.Errorf("links.fade_ms must be positive"))
	}

	if t.Mood.NeutralMagnitude < 0 {
		el.Add(fmt.Errorf("mood.neutral_magnitude must not be negative"))
	}
	if t.Mood.SpawnMagnitude < t.Mood.NeutralMagnitude {
		el.Add(fmt.Errorf("mood.spawn_magnitude must not be below mood.neutral_magnitude"))
	}
	if t.Mood.HistoryLength < 1 {
		el.Add(fmt.Errorf("mood.history_length must be at least 1"))
	}

	d := t.Distortion
	if d.MaxConcurrent < 1 || d.UpperMaxConcurrent < 1 || d.DownerMaxConcurrent < 1 {
		el.Add(fmt.Errorf("distortion concurrency caps must be at least 1"))
	}
	if d.MinIntervalMs <= 0 {
		el.Add(fmt.Errorf("distortion.min_interval_ms must be positive"))
	}
	if d.BaseIntervalMs < d.MinIntervalMs {
		el.Add(fmt.Errorf("distortion.base_interval_ms must not be below distortion.min_interval_ms"))
	}

	if t.Ambient.IntervalMs <= 0 {
		el.Add(fmt.Errorf("ambient.interval_ms must be positive"))
	}

	b := t.Behaviour
	if b.MoveThreshold < 0 || b.StrideDistance < 0 || b.FatigueAfterSec < 0 || b.ExhaustAfterSec < 0 {
		el.Add(fmt.Errorf("behaviour thresholds must not be negative"))
	}

	if t.Health.Max < 1 || t.Health.HitDamage < 1 {
		el.Add(fmt.Errorf("health.max and health.hit_damage must be at least 1"))
	}

	return el.Err()
}

func (t Tuning) SessionConfig() session.Config {
	return session.Config{
		MaxDuration:    time.Duration(t.Session.MaxDurationSec * float64(time.Second)),
		DeathThreshold: t.Session.DeathThreshold,
		RestartDelay:   ms(t.Session.RestartDelayMs),
		DeathFade:      ms(t.Session.DeathFadeMs),
		EndFade:        ms(t.Session.EndFadeMs),
		FadeIn:         ms(t.Session.FadeInMs),
	}
}

func (t Tuning) DistortionConfig() distortion.Config {
	d := t.Distortion
	return distortion.Config{
		MaxConcurrent:       d.MaxConcurrent,
		UpperMaxConcurrent:  d.UpperMaxConcurrent,
		DownerMaxConcurrent: d.DownerMaxConcurrent,
		Cooldown:            ms(d.CooldownMs),
		DynamicCooldown:     ms(d.DynamicCooldownMs),
		StaticCooldown:      ms(d.StaticCooldownMs),
		MinMagnitude:        d.MinMagnitude,
		NeutralMagnitude:    t.Mood.NeutralMagnitude,
		BaseInterval:        ms(d.BaseIntervalMs),
		MinInterval:         ms(d.MinIntervalMs),
		HistoryLimit:        d.HistoryLimit,
	}
}

func (t Tuning) BehaviourConfig() mood.BehaviourConfig {
	b := t.Behaviour
	return mood.BehaviourConfig{
		MoveThreshold:   b.MoveThreshold,
		MoveFactor:      b.MoveFactor,
		StillRate:       b.StillRate,
		StrideDistance:  b.StrideDistance,
		StrideBonus:     b.StrideBonus,
		ZoneChange:      b.ZoneChange,
		DeathPush:       b.DeathPush,
		FatigueAfter:    secs(b.FatigueAfterSec),
		FatigueRate:     b.FatigueRate,
		ExhaustionAfter: secs(b.ExhaustAfterSec),
		ExhaustionRate:  b.ExhaustRate,
	}
}

func (t Tuning) LinkCooldown() time.Duration    { return ms(t.Links.CooldownMs) }
func (t Tuning) LinkFade() time.Duration        { return ms(t.Links.FadeMs) }
func (t Tuning) AmbientInterval() time.Duration { return ms(t.Ambient.IntervalMs) }

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func secs(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}
