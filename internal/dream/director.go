// Package dream composes the mood, scene, session and distortion
// subsystems into one simulation that advances a tick at a time.
package dream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-dream/internal/clock"
	"github.com/pixil98/go-dream/internal/distortion"
	"github.com/pixil98/go-dream/internal/events"
	"github.com/pixil98/go-dream/internal/game"
	"github.com/pixil98/go-dream/internal/mood"
	"github.com/pixil98/go-dream/internal/rng"
	"github.com/pixil98/go-dream/internal/scene"
	"github.com/pixil98/go-dream/internal/session"
	"github.com/pixil98/go-dream/internal/storage"
	"github.com/pixil98/go-dream/internal/tuning"
)

const DefaultMaxStep = 250 * time.Millisecond

// Director owns every piece of dream state. Tick is the only place that
// state changes; other goroutines hand work over through Submit.
type Director struct {
	tuning    tuning.Tuning
	catalogue *scene.Catalogue
	kv        storage.KeyValue
	now       func() time.Time
	entropy   func() float64
	autoFade  bool
	maxStep   time.Duration

	bus         *events.Bus
	timers      *clock.Timers
	world       *game.World
	rnd         *rng.Source
	mood        *mood.Engine
	behaviour   *mood.Behaviour
	health      *session.Health
	linker      *scene.Linker
	scheduler   *distortion.Scheduler
	ambient     *distortion.Ambient
	lifecycle   *session.Lifecycle
	persistence *session.Persistence

	mu        sync.Mutex
	last      time.Time
	begun     bool
	sessionId string
	area      string
	lastPos   game.Vec3

	// spawnPending swallows the scene change of the session's spawn load,
	// which the bus delivers after onSessionNew returns.
	spawnPending bool

	inboxMu sync.Mutex
	inbox   []func()
}

type DirectorOpt func(*Director)

func WithTuning(t tuning.Tuning) DirectorOpt {
	return func(d *Director) {
		d.tuning = t
	}
}

func WithCatalogue(c *scene.Catalogue) DirectorOpt {
	return func(d *Director) {
		d.catalogue = c
	}
}

// WithKeyValue sets the store that remembers sessions. Without it nothing
// survives the process.
func WithKeyValue(kv storage.KeyValue) DirectorOpt {
	return func(d *Director) {
		d.kv = kv
	}
}

func WithClock(now func() time.Time) DirectorOpt {
	return func(d *Director) {
		d.now = now
	}
}

func WithEntropy(f func() float64) DirectorOpt {
	return func(d *Director) {
		d.entropy = f
	}
}

// WithAutoFade acknowledges end-of-session fades without a presentation
// layer, so sessions restart on their own.
func WithAutoFade(enabled bool) DirectorOpt {
	return func(d *Director) {
		d.autoFade = enabled
	}
}

// WithMaxStep caps how much virtual time one tick may advance.
func WithMaxStep(step time.Duration) DirectorOpt {
	return func(d *Director) {
		d.maxStep = step
	}
}

func NewDirector(opts ...DirectorOpt) (*Director, error) {
	d := &Director{
		tuning:  tuning.Default(),
		now:     time.Now,
		maxStep: DefaultMaxStep,
	}
	for _, opt := range opts {
		opt(d)
	}

	if err := d.tuning.Validate(); err != nil {
		return nil, fmt.Errorf("validating tuning: %w", err)
	}
	if d.catalogue == nil {
		c, err := scene.DefaultCatalogue(scene.WithThresholds(d.tuning.Mood.NeutralMagnitude, d.tuning.Mood.SpawnMagnitude))
		if err != nil {
			return nil, fmt.Errorf("building scene catalogue: %w", err)
		}
		d.catalogue = c
	}
	if d.kv == nil {
		d.kv = storage.NewMemoryKV()
	}

	d.bus = events.NewBus(events.WithClock(d.now))
	d.timers = clock.New()
	d.world = game.NewWorld()
	d.rnd = rng.New(0)
	d.mood = mood.NewEngine(d.bus, mood.WithHistoryLength(d.tuning.Mood.HistoryLength), mood.WithClock(d.now))
	d.behaviour = mood.NewBehaviour(d.mood, d.tuning.BehaviourConfig())
	d.health = session.NewHealth(d.tuning.Health.Max, d.tuning.Health.HitDamage)
	d.linker = scene.NewLinker(d.catalogue, d.world, d.mood, d.rnd, d.timers, d.bus,
		scene.WithLinkCooldown(d.tuning.LinkCooldown()),
		scene.WithFadeDuration(d.tuning.LinkFade()),
		scene.WithHistoryLimit(d.tuning.Links.HistoryLimit),
	)
	d.scheduler = distortion.NewScheduler(d.tuning.DistortionConfig(), d.world, d.rnd, d.timers, d.bus)
	d.ambient = distortion.NewAmbient(d.rnd, d.timers, d.bus, d.tuning.AmbientInterval())
	d.lifecycle = session.NewLifecycle(d.tuning.SessionConfig(), d.timers, d.bus)

	popts := []session.PersistenceOpt{
		session.WithKeyPrefix(d.tuning.Session.PersistencePrefix),
		session.WithHistoryLimit(d.tuning.Session.HistoryLimit),
		session.WithClock(d.now),
	}
	if d.entropy != nil {
		popts = append(popts, session.WithEntropy(d.entropy))
	}
	d.persistence = session.NewPersistence(d.kv, popts...)

	d.lifecycle.OnBegin(d.newSessionId)
	d.bus.Subscribe(events.SessionNew, d.onSessionNew)
	d.bus.Subscribe(events.SessionEnd, d.onSessionEnd)
	d.bus.Subscribe(events.MoodChanged, d.onMoodChanged)
	d.bus.Subscribe(events.SceneChanged, d.onSceneChanged)
	if d.autoFade {
		d.bus.Subscribe(events.FadeOut, d.onFadeOut)
	}

	return d, nil
}

// Bus is where outbound events are published. Subscribers run on the tick
// goroutine and must not block.
func (d *Director) Bus() *events.Bus {
	return d.bus
}

// Start queues the first session. It begins on the first tick after the
// world is ready.
func (d *Director) Start() {
	d.world.WhenReady(func() {
		d.enqueue(d.begin)
	})
}

// Submit queues an input for the next tick. Safe for concurrent use.
func (d *Director) Submit(in Input) {
	d.enqueue(func() {
		d.handle(in)
	})
}

// SetMood queues an operator override of the mood.
func (d *Director) SetMood(v mood.Vector) {
	d.enqueue(func() {
		d.mood.Set(v, "operator")
	})
}

// Tick advances the simulation by the wall time since the previous tick.
func (d *Director) Tick(ctx context.Context) error {
	now := d.now()

	d.mu.Lock()
	var dt time.Duration
	if !d.last.IsZero() {
		dt = now.Sub(d.last)
	}
	d.last = now
	d.mu.Unlock()

	if dt < 0 {
		dt = 0
	}
	if dt > d.maxStep {
		slog.DebugContext(ctx, "clamping tick", "dt", dt, "max", d.maxStep)
		dt = d.maxStep
	}

	d.Step(dt)
	return nil
}

// Step drains the inbox and advances the simulation by exactly dt.
func (d *Director) Step(dt time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.world.MarkReady()
	for _, fn := range d.drain() {
		fn()
	}

	d.timers.Advance(dt)
	if !d.begun {
		return
	}

	d.lifecycle.Tick(dt, d.world.PlayerPosition().Y)
	if d.lifecycle.Ended() {
		return
	}

	pos := d.world.PlayerPosition()
	d.behaviour.Track(pos.Distance(d.lastPos), dt, d.lifecycle.Elapsed())
	d.lastPos = pos
	d.mood.ApplyDrift(dt)

	cur := d.mood.Current()
	d.scheduler.SetMood(cur)
	d.ambient.SetMood(cur)
	d.scheduler.Update(dt)

	p := d.lifecycle.Progress()
	d.scheduler.SetIntensity(p)
	d.ambient.SetIntensity(p)
}

func (d *Director) begin() {
	if d.begun {
		return
	}
	d.begun = true
	d.lifecycle.Begin()
}

func (d *Director) enqueue(fn func()) {
	d.inboxMu.Lock()
	defer d.inboxMu.Unlock()
	d.inbox = append(d.inbox, fn)
}

func (d *Director) drain() []func() {
	d.inboxMu.Lock()
	defer d.inboxMu.Unlock()
	out := d.inbox
	d.inbox = nil
	return out
}

func (d *Director) handle(in Input) {
	ended := !d.begun || d.lifecycle.Ended()

	switch p := in.Payload.(type) {
	case Collision:
		if ended {
			return
		}
		d.logLink(d.linker.HandleCollision(p.Handle))

	case NPCTouch:
		if ended {
			return
		}
		if p.MoodDelta != nil {
			d.mood.ApplyDelta(*p.MoodDelta, "npc_"+p.NPCType)
		}
		d.logLink(d.linker.HandleNPCTouch(p.NPCType))

	case AreaEnter:
		if ended {
			return
		}
		d.area = p.Area
		d.mood.SetDrift(p.MoodDrift)
		d.behaviour.ZoneChanged(p.Area)

	case AreaExit:
		if ended || (p.Area != "" && p.Area != d.area) {
			return
		}
		d.area = ""
		if cur := d.linker.Current(); cur != nil {
			d.mood.SetDrift(cur.Drift)
		} else {
			d.mood.ClearDrift()
		}

	case EventTrigger:
		if ended {
			return
		}
		d.mood.ApplyDelta(p.MoodDelta, "event_"+p.EventType)

	case PlayerDied:
		cause := p.Cause
		if cause == "" {
			cause = "unknown causes"
		}
		d.lifecycle.Death(cause)

	case Fatal:
		reason := p.Reason
		if reason == "" {
			reason = "fatal dream error"
		}
		d.lifecycle.Fatal(reason)

	case FadeComplete:
		d.lifecycle.FadeComplete(p.Type)

	case PlayerMoved:
		if !ended {
			d.behaviour.Stride(p.Position.Distance(d.world.PlayerPosition()))
		}
		d.world.SetPlayerPosition(p.Position)

	case Hit:
		if ended {
			return
		}
		died := d.health.Hit(p.Damage)
		d.bus.Publish(events.PlayerHealth, d.health.Event())
		if died {
			d.lifecycle.Death(session.CauseHealth)
		}

	default:
		slog.Warn("ignoring input", "topic", in.Topic, "payload", fmt.Sprintf("%T", in.Payload))
	}
}

func (d *Director) logLink(err error) {
	switch {
	case err == nil:
	case errors.Is(err, scene.ErrLinkBusy),
		errors.Is(err, scene.ErrNotLinking),
		errors.Is(err, scene.ErrNoScene),
		errors.Is(err, game.ErrObjectNotFound):
		slog.Debug("scene link ignored", "reason", err)
	default:
		slog.Error("scene link aborted", "error", err)
	}
}

func (d *Director) newSessionId() {
	d.sessionId = uuid.NewString()
	d.bus.SetSession(d.sessionId)
}

func (d *Director) onSessionNew(events.Event) {
	d.area = ""
	d.mood.Reset()
	d.mood.BeginSession()

	count, seed := d.persistence.BeginSession()
	d.rnd.Reseed(seed)
	rec := d.persistence.Record()

	d.linker.Reset()
	d.spawnPending = false
	if err := d.linker.LoadSpawn(rec.LastMood); err != nil {
		slog.Error("loading spawn scene", "error", err)
	} else {
		d.spawnPending = true
	}
	if cur := d.linker.Current(); cur != nil && len(cur.SpawnPoints) > 0 {
		d.world.SetPlayerPosition(cur.SpawnPoints[0])
	}
	d.lastPos = d.world.PlayerPosition()

	d.health.Reset()
	d.bus.Publish(events.PlayerHealth, d.health.Event())

	d.scheduler.Reset()
	d.scheduler.SetMood(d.mood.Current())
	d.scheduler.SetUnlocked(rec.DistortionsUnlocked())
	d.scheduler.Start()

	d.ambient.Stop()
	d.ambient.SetMood(d.mood.Current())
	d.ambient.SetIntensity(0)
	d.ambient.SetRareEvents(rec.RareEventsEnabled())
	d.ambient.Start()

	slog.Info("dream session started", "session", d.sessionId, "count", count, "seed", seed, "scene", d.sceneId())
}

func (d *Director) onSessionEnd(e events.Event) {
	end, _ := e.Data.(session.EndEvent)
	if end.Type == session.EndDeath {
		d.behaviour.Died()
	}

	final := d.mood.EndSession()
	d.bus.Publish(events.MoodClassified, final)

	if err := d.persistence.EndSession(final, d.lifecycle.Elapsed()); err != nil {
		slog.Warn("saving session", "session", d.sessionId, "error", err)
	}

	d.scheduler.Flush()
	d.ambient.Stop()
	d.linker.Abort()
	d.mood.ClearDrift()

	slog.Info("dream session ended",
		"session", d.sessionId,
		"type", end.Type,
		"reason", end.Reason,
		"quadrant", final.Quadrant,
		"magnitude", final.Magnitude,
	)
}

func (d *Director) onMoodChanged(e events.Event) {
	ev, ok := e.Data.(mood.ChangedEvent)
	if !ok {
		return
	}
	d.scheduler.SetMood(ev.New)
	d.ambient.SetMood(ev.New)
}

// onSceneChanged counts a completed link as a zone change. The spawn scene
// loaded at session start does not count.
func (d *Director) onSceneChanged(e events.Event) {
	if d.spawnPending {
		d.spawnPending = false
		return
	}
	ev, ok := e.Data.(scene.ChangedEvent)
	if !ok {
		return
	}
	d.behaviour.ZoneChanged(ev.Area)
}

func (d *Director) onFadeOut(e events.Event) {
	if !d.lifecycle.Ended() {
		return
	}
	cmd, _ := e.Data.(events.FadeCommand)
	d.timers.After(time.Duration(cmd.DurationMs)*time.Millisecond, func() {
		d.lifecycle.FadeComplete(events.FadeDirectionOut)
	})
}

func (d *Director) sceneId() string {
	if cur := d.linker.Current(); cur != nil {
		return cur.Id
	}
	return ""
}
