package scene

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/go-dream/internal/clock"
	"github.com/pixil98/go-dream/internal/events"
	"github.com/pixil98/go-dream/internal/game"
	"github.com/pixil98/go-dream/internal/mood"
	"github.com/pixil98/go-dream/internal/rng"
)

const (
	DefaultLinkCooldown = time.Second
	DefaultFadeDuration = 500 * time.Millisecond
	DefaultHistoryLimit = 20

	fadeOutSpeed = 0.5
	fadeInSpeed  = 1.0
)

// State is the phase of a scene transition.
type State int

const (
	StateIdle State = iota
	StateFadeOut
	StateSceneSwap
	StateFadeIn
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFadeOut:
		return "fade_out"
	case StateSceneSwap:
		return "scene_swap"
	case StateFadeIn:
		return "fade_in"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MoodSource is the part of the mood engine the linker reads and steers.
type MoodSource interface {
	Current() mood.Vector
	SetDrift(mood.Vector)
}

type HistoryEntry struct {
	SceneId string        `json:"scene_id"`
	At      time.Duration `json:"at"`
	Mood    mood.Vector   `json:"mood"`
}

// ChangedEvent is published on events.SceneChanged.
type ChangedEvent struct {
	SceneId     string             `json:"scene_id"`
	From        string             `json:"from,omitempty"`
	Area        string             `json:"area"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Drift       mood.Vector        `json:"drift"`
	Aesthetics  map[string]float64 `json:"aesthetics"`
	Lighting    game.Lighting      `json:"lighting"`
	Objects     int                `json:"objects"`
}

// AudioChangeEvent is published on events.AudioSceneChange.
type AudioChangeEvent struct {
	SceneId    string             `json:"scene_id"`
	Area       string             `json:"area"`
	Profile    string             `json:"profile"`
	Aesthetics map[string]float64 `json:"aesthetics"`
}

// Linker runs the collision → fade → teleport state machine. It is driven
// from a single goroutine; delayed steps run on the shared timer queue.
type Linker struct {
	catalogue *Catalogue
	world     *game.World
	mood      MoodSource
	rnd       *rng.Source
	timers    *clock.Timers
	pub       events.Publisher

	cooldown     time.Duration
	fadeDuration time.Duration
	historyLimit int

	state    State
	current  *Definition
	history  []HistoryEntry
	linking  bool
	linked   bool
	lastLink time.Duration
	pending  clock.Handle
	hasSwap  bool
}

type LinkerOpt func(*Linker)

func WithLinkCooldown(d time.Duration) LinkerOpt {
	return func(l *Linker) {
		l.cooldown = d
	}
}

func WithFadeDuration(d time.Duration) LinkerOpt {
	return func(l *Linker) {
		l.fadeDuration = d
	}
}

func WithHistoryLimit(n int) LinkerOpt {
	return func(l *Linker) {
		l.historyLimit = n
	}
}

func NewLinker(c *Catalogue, w *game.World, m MoodSource, rnd *rng.Source, timers *clock.Timers, pub events.Publisher, opts ...LinkerOpt) *Linker {
	l := &Linker{
		catalogue:    c,
		world:        w,
		mood:         m,
		rnd:          rnd,
		timers:       timers,
		pub:          pub,
		cooldown:     DefaultLinkCooldown,
		fadeDuration: DefaultFadeDuration,
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Linker) State() State {
	return l.state
}

func (l *Linker) Linking() bool {
	return l.linking
}

// Current returns the loaded scene, or nil before the first load.
func (l *Linker) Current() *Definition {
	return l.current
}

func (l *Linker) History() []HistoryEntry {
	out := make([]HistoryEntry, len(l.history))
	copy(out, l.history)
	return out
}

// Load swaps directly to the scene with the given id, without a fade.
func (l *Linker) Load(id string) error {
	d, err := l.catalogue.Get(id)
	if err != nil {
		return err
	}
	l.swap(d)
	return nil
}

// LoadSpawn loads the scene a new session should start in.
func (l *Linker) LoadSpawn(prev *mood.Classified) error {
	return l.Load(l.catalogue.SpawnFor(prev))
}

// HandleCollision links away from the current scene if the touched object
// triggers links.
func (l *Linker) HandleCollision(h game.Handle) error {
	o, ok := l.world.Object(h)
	if !ok {
		return fmt.Errorf("collision with handle %d: %w", h, game.ErrObjectNotFound)
	}
	if !o.Linkable {
		return ErrNotLinking
	}

	dest, err := l.Resolve(o)
	if err != nil {
		return err
	}
	return l.TriggerLink(dest, fmt.Sprintf("collision_%s", o.Kind))
}

// HandleNPCTouch links away as if the player touched an NPC of this type.
func (l *Linker) HandleNPCTouch(npcType string) error {
	dest, err := l.Resolve(game.Object{Kind: game.KindNPC, NPCType: npcType})
	if err != nil {
		return err
	}
	return l.TriggerLink(dest, "npc_"+npcType)
}

// Resolve picks the destination for a touch on o: its explicit link target,
// then the NPC route table, then the current scene's exit policy.
func (l *Linker) Resolve(o game.Object) (string, error) {
	if o.LinkTarget != "" {
		return o.LinkTarget, nil
	}
	if o.NPCType != "" {
		if dest, ok := l.catalogue.Route(o.NPCType); ok {
			return dest, nil
		}
	}
	if l.current == nil {
		return "", ErrNoScene
	}

	trigger := TriggerAny
	if o.NPCType != "" {
		trigger = o.NPCType
	}
	exit, ok := l.current.ExitFor(trigger)
	if !ok {
		return "", fmt.Errorf("scene %s has no exit for %q", l.current.Id, trigger)
	}
	return l.catalogue.Choose(exit, l.mood.Current(), l.rnd), nil
}

// TriggerLink starts a fade to dest. Requests during a transition or inside
// the cooldown return ErrLinkBusy. An unknown dest leaves the linker idle.
func (l *Linker) TriggerLink(dest, reason string) error {
	now := l.timers.Now()
	if l.linking || (l.linked && now-l.lastLink < l.cooldown) {
		return ErrLinkBusy
	}

	d, err := l.catalogue.Get(dest)
	if err != nil {
		return err
	}

	l.linking = true
	l.linked = true
	l.lastLink = now
	l.setState(StateFadeOut)
	l.remember(d.Id, now)

	l.pub.Publish(events.FadeOut, events.NewFadeCommand(fadeOutSpeed, l.fadeDuration, reason))

	l.pending = l.timers.After(l.fadeDuration, func() {
		l.hasSwap = false
		l.setState(StateSceneSwap)
		l.swap(d)
		l.setState(StateFadeIn)
		l.pub.Publish(events.FadeIn, events.NewFadeCommand(fadeInSpeed, l.fadeDuration, reason))
		l.linking = false
		l.setState(StateIdle)
	})
	l.hasSwap = true
	return nil
}

// Abort cancels an in-flight transition.
func (l *Linker) Abort() {
	if l.hasSwap {
		l.timers.Cancel(l.pending)
		l.hasSwap = false
	}
	l.linking = false
	l.setState(StateIdle)
}

// Reset aborts any transition and forgets the link history and cooldown.
func (l *Linker) Reset() {
	l.Abort()
	l.history = nil
	l.linked = false
	l.lastLink = 0
}

func (l *Linker) swap(d *Definition) {
	from := ""
	if l.current != nil {
		from = l.current.Id
	}

	l.world.ClearSceneOwned()
	l.catalogue.populate(l.world, d, l.rnd)
	l.mood.SetDrift(d.Drift)
	l.current = d

	aesthetics := make(map[string]float64, len(d.Aesthetics))
	for k, v := range d.Aesthetics {
		aesthetics[k] = v
	}

	l.pub.Publish(events.AudioSceneChange, AudioChangeEvent{
		SceneId:    d.Id,
		Area:       d.Area,
		Profile:    l.world.AudioProfile(),
		Aesthetics: aesthetics,
	})

	desc, err := d.Describe(l.mood.Current())
	if err != nil {
		slog.Warn("rendering scene description", "scene", d.Id, "error", err)
		desc = d.Description
	}

	l.pub.Publish(events.SceneChanged, ChangedEvent{
		SceneId:     d.Id,
		From:        from,
		Area:        d.Area,
		Name:        d.Name,
		Description: desc,
		Drift:       d.Drift,
		Aesthetics:  aesthetics,
		Lighting:    l.world.Lighting(),
		Objects:     l.world.Count(),
	})
}

func (l *Linker) remember(id string, at time.Duration) {
	l.history = append(l.history, HistoryEntry{SceneId: id, At: at, Mood: l.mood.Current()})
	if over := len(l.history) - l.historyLimit; over > 0 {
		l.history = l.history[over:]
	}
}

func (l *Linker) setState(s State) {
	if l.state == s {
		return
	}
	slog.Debug("scene link state", "from", l.state, "to", s)
	l.state = s
}
