// Package session supervises a single timed dream and remembers what
// happened across dreams.
package session

import (
	"time"

	"github.com/pixil98/go-dream/internal/clock"
	"github.com/pixil98/go-dream/internal/events"
)

type State int

const (
	StateActive State = iota
	StateEnding
)

func (s State) String() string {
	if s == StateEnding {
		return "ending"
	}
	return "active"
}

type EndType string

const (
	EndTimeout EndType = "timeout"
	EndDeath   EndType = "death"
	EndFatal   EndType = "fatal"
)

const (
	ReasonTimeout = "Session time expired"
	ReasonVoid    = "Fell into the void"
)

// EndEvent is published on events.SessionEnd.
type EndEvent struct {
	Type          EndType `json:"type"`
	Reason        string  `json:"reason"`
	TimeRemaining float64 `json:"time_remaining"`
	TimeElapsed   float64 `json:"time_elapsed"`
}

// NewEvent is published on events.SessionNew.
type NewEvent struct {
	MaxDuration float64 `json:"max_duration"`
}

type Config struct {
	MaxDuration    time.Duration
	DeathThreshold float64

	// RestartDelay separates the fade-out acknowledgment from the restart.
	RestartDelay time.Duration
	DeathFade    time.Duration
	EndFade      time.Duration
	FadeIn       time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxDuration:    60 * time.Second,
		DeathThreshold: -10,
		RestartDelay:   500 * time.Millisecond,
		DeathFade:      300 * time.Millisecond,
		EndFade:        1500 * time.Millisecond,
		FadeIn:         time.Second,
	}
}

const (
	fadeOutSpeed = 0.5
	fadeInSpeed  = 1.0
)

// Lifecycle counts a session down and ends it on timeout, death or a fatal
// error. The first ending wins; restarts wait for the presentation layer to
// report that its fade-out finished.
type Lifecycle struct {
	cfg    Config
	timers *clock.Timers
	pub    events.Publisher

	state     State
	remaining time.Duration
	end       EndEvent

	restart        clock.Handle
	restartPending bool

	onBegin func()
}

func NewLifecycle(cfg Config, timers *clock.Timers, pub events.Publisher) *Lifecycle {
	return &Lifecycle{
		cfg:       cfg,
		timers:    timers,
		pub:       pub,
		remaining: cfg.MaxDuration,
	}
}

func (l *Lifecycle) State() State {
	return l.state
}

func (l *Lifecycle) Ended() bool {
	return l.state == StateEnding
}

func (l *Lifecycle) Remaining() time.Duration {
	return l.remaining
}

func (l *Lifecycle) Elapsed() time.Duration {
	return l.cfg.MaxDuration - l.remaining
}

// Progress is the fraction of the session that has elapsed, in [0, 1].
func (l *Lifecycle) Progress() float64 {
	if l.cfg.MaxDuration <= 0 {
		return 1
	}
	p := float64(l.Elapsed()) / float64(l.cfg.MaxDuration)
	if p > 1 {
		return 1
	}
	return p
}

// LastEnd describes how the current or most recent session ended.
func (l *Lifecycle) LastEnd() EndEvent {
	return l.end
}

// OnBegin registers fn to run at the start of every Begin, before
// SessionNew is published.
func (l *Lifecycle) OnBegin(fn func()) {
	l.onBegin = fn
}

// Begin starts a fresh session.
func (l *Lifecycle) Begin() {
	if l.restartPending {
		l.timers.Cancel(l.restart)
		l.restartPending = false
	}
	l.state = StateActive
	l.remaining = l.cfg.MaxDuration
	if l.onBegin != nil {
		l.onBegin()
	}

	l.pub.Publish(events.SessionNew, NewEvent{MaxDuration: l.cfg.MaxDuration.Seconds()})
	l.pub.Publish(events.FadeIn, events.NewFadeCommand(fadeInSpeed, l.cfg.FadeIn, "session_new"))
}

// Tick counts down dt and checks the player's height against the void.
func (l *Lifecycle) Tick(dt time.Duration, playerY float64) {
	if l.state != StateActive {
		return
	}

	l.remaining -= dt
	if l.remaining < 0 {
		l.remaining = 0
	}

	if playerY < l.cfg.DeathThreshold {
		l.finish(EndDeath, ReasonVoid)
		return
	}
	if l.remaining <= 0 {
		l.finish(EndTimeout, ReasonTimeout)
	}
}

// Death ends the session because the player died.
func (l *Lifecycle) Death(cause string) bool {
	return l.finish(EndDeath, "Player died from "+cause)
}

// Fatal ends the session because something unrecoverable happened.
func (l *Lifecycle) Fatal(reason string) bool {
	return l.finish(EndFatal, reason)
}

// FadeComplete handles the presentation layer's fade acknowledgment. Only a
// completed fade-out while ending schedules a restart.
func (l *Lifecycle) FadeComplete(direction string) bool {
	if l.state != StateEnding || direction != events.FadeDirectionOut || l.restartPending {
		return false
	}

	l.restartPending = true
	l.restart = l.timers.After(l.cfg.RestartDelay, func() {
		l.restartPending = false
		l.Begin()
	})
	return true
}

func (l *Lifecycle) finish(t EndType, reason string) bool {
	if l.state != StateActive {
		return false
	}
	l.state = StateEnding
	l.end = EndEvent{
		Type:          t,
		Reason:        reason,
		TimeRemaining: l.remaining.Seconds(),
		TimeElapsed:   l.Elapsed().Seconds(),
	}

	fade := l.cfg.EndFade
	if t == EndDeath {
		fade = l.cfg.DeathFade
	}

	l.pub.Publish(events.SessionEnd, l.end)
	l.pub.Publish(events.FadeOut, events.NewFadeCommand(fadeOutSpeed, fade, string(t)))
	return true
}
