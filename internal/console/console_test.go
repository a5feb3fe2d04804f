package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/pixil98/go-dream/internal/distortion"
	"github.com/pixil98/go-dream/internal/dream"
	"github.com/pixil98/go-dream/internal/events"
	"github.com/pixil98/go-dream/internal/game"
	"github.com/pixil98/go-dream/internal/mood"
	"github.com/pixil98/go-dream/internal/scene"
	"github.com/pixil98/go-dream/internal/session"
	"github.com/pixil98/go-testutil"
)

type fakeController struct {
	mu     sync.Mutex
	inputs []dream.Input
	moods  []mood.Vector
	snap   dream.Snapshot
	objs   []game.Object
}

func (f *fakeController) Submit(in dream.Input) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
}

func (f *fakeController) SetMood(v mood.Vector) {
	f.moods = append(f.moods, v)
}

func (f *fakeController) Snapshot() dream.Snapshot { return f.snap }

func (f *fakeController) Objects(kind game.ObjectKind) []game.Object {
	var out []game.Object
	for _, o := range f.objs {
		if kind == "" || o.Kind == kind {
			out = append(out, o)
		}
	}
	return out
}

func (f *fakeController) MoodHistory() []mood.HistoryEntry   { return nil }
func (f *fakeController) SceneHistory() []scene.HistoryEntry { return nil }
func (f *fakeController) SessionHistory() []session.Summary  { return nil }

func TestConsole_Commands(t *testing.T) {
	tests := map[string]struct {
		line       string
		expInput   any
		expTopic   events.Topic
		expOut     string
		expUserErr string
	}{
		"touch": {
			line:     "touch 17",
			expTopic: events.PlayerCollision,
			expInput: dream.Collision{Handle: 17},
			expOut:   "You reach out.",
		},
		"touch bad handle": {
			line:       "touch rock",
			expUserErr: "is not an object handle",
		},
		"event": {
			line:     "event bell 1.5 -2",
			expTopic: events.EventTrigger,
			expInput: dream.EventTrigger{EventType: "bell", MoodDelta: mood.Vector{X: 1.5, Y: -2}},
			expOut:   "Something happens.",
		},
		"event missing args": {
			line:       "event bell",
			expUserErr: "Usage: event",
		},
		"enter": {
			line:     "enter pond 0.5 0",
			expTopic: events.AreaEnter,
			expInput: dream.AreaEnter{Area: "pond", MoodDrift: mood.Vector{X: 0.5}},
			expOut:   "You wander into pond.",
		},
		"exit": {
			line:     "exit",
			expTopic: events.AreaExit,
			expInput: dream.AreaExit{},
			expOut:   "You wander out.",
		},
		"move": {
			line:     "move 1 -20 3",
			expTopic: events.PlayerMoved,
			expInput: dream.PlayerMoved{Position: game.Vec3{X: 1, Y: -20, Z: 3}},
			expOut:   "You move.",
		},
		"hit": {
			line:     "hit 25",
			expTopic: events.PlayerHit,
			expInput: dream.Hit{Damage: 25},
			expOut:   "Ouch.",
		},
		"hit default": {
			line:     "hit",
			expTopic: events.PlayerHit,
			expInput: dream.Hit{},
			expOut:   "Ouch.",
		},
		"hit bad damage": {
			line:       "hit -3",
			expUserErr: "is not an amount of damage",
		},
		"die joins cause": {
			line:     "die falling piano",
			expTopic: events.PlayerDied,
			expInput: dream.PlayerDied{Cause: "falling piano"},
		},
		"faded out": {
			line:     "faded out",
			expTopic: events.FadeComplete,
			expInput: dream.FadeComplete{Type: "out"},
		},
		"faded sideways": {
			line:       "faded sideways",
			expUserErr: "Usage: faded",
		},
		"unknown": {
			line:       "dance",
			expUserErr: "Unknown command",
		},
		"case insensitive": {
			line:     "FATAL oops",
			expTopic: events.DreamFatal,
			expInput: dream.Fatal{Reason: "oops"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ctrl := &fakeController{}
			c := NewConsole(ctrl, nil)

			out, err := c.exec(tt.line, &operator{w: io.Discard})
			if tt.expUserErr != "" {
				testutil.AssertErrorContains(t, err, tt.expUserErr)
				testutil.AssertEqual(t, "inputs", len(ctrl.inputs), 0)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			testutil.AssertEqual(t, "output", out, tt.expOut)
			testutil.AssertEqual(t, "inputs", len(ctrl.inputs), 1)
			testutil.AssertEqual(t, "topic", ctrl.inputs[0].Topic, tt.expTopic)
			testutil.AssertEqual(t, "payload", ctrl.inputs[0].Payload, tt.expInput)
		})
	}
}

func TestConsole_NPCWithDelta(t *testing.T) {
	ctrl := &fakeController{}
	c := NewConsole(ctrl, nil)

	if _, err := c.exec("npc PinkRat -1 2", &operator{w: io.Discard}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	touch := ctrl.inputs[0].Payload.(dream.NPCTouch)
	testutil.AssertEqual(t, "npc", touch.NPCType, "PinkRat")
	testutil.AssertEqual(t, "delta", *touch.MoodDelta, mood.Vector{X: -1, Y: 2})
}

func TestConsole_Mood(t *testing.T) {
	ctrl := &fakeController{snap: dream.Snapshot{Mood: mood.Classify(mood.Vector{X: -3, Y: 4})}}
	c := NewConsole(ctrl, nil)
	s := &operator{w: io.Discard}

	out, err := c.exec("mood", s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "show", out, "Mood (-3.00, 4.00) Downer/Dynamic, magnitude 5.00")

	if _, err := c.exec("mood 2 2", s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "set", ctrl.moods[0], mood.Vector{X: 2, Y: 2})
}

func TestConsole_Objects(t *testing.T) {
	ctrl := &fakeController{objs: []game.Object{
		{Handle: 1, Kind: game.KindGround, Name: "ground"},
		{Handle: 2, Kind: game.KindStructure, Name: "star", Linkable: true, LinkTarget: scene.BureauTower},
	}}
	c := NewConsole(ctrl, nil)

	out, err := c.exec("objects structure", &operator{w: io.Discard})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "one line", strings.Count(out, "\n"), 0)
	testutil.AssertEqual(t, "target", strings.Contains(out, "-> BureauTower"), true)
}

func TestConsole_Narrate(t *testing.T) {
	tests := map[string]struct {
		event events.Event
		exp   string
		expOk bool
	}{
		"session end": {
			event: events.Event{Topic: events.SessionEnd, Data: session.EndEvent{Reason: session.ReasonTimeout}},
			exp:   "The dream ends. Session time expired.",
			expOk: true,
		},
		"distortion start": {
			event: events.Event{Topic: events.DreamEvent, Data: distortion.DreamEvent{Type: distortion.TypeRealityDistortion, Distortion: distortion.GravityInversion, Phase: distortion.PhaseStart}},
			exp:   "Reality bends: gravity inversion.",
			expOk: true,
		},
		"ambient event": {
			event: events.Event{Topic: events.DreamEvent, Data: distortion.DreamEvent{Type: distortion.TypeTextureSwap}},
			exp:   "A texture swap ripples through the dream.",
			expOk: true,
		},
		"mood change": {
			event: events.Event{Topic: events.MoodChanged, Data: mood.ChangedEvent{Quadrant: mood.UpperStatic, Magnitude: 2.3}},
			exp:   "Your mood slides upper/static (2.3).",
			expOk: true,
		},
		"health": {
			event: events.Event{Topic: events.PlayerHealth, Data: session.HealthEvent{Health: 70, Max: 100}},
			exp:   "Health 70/100.",
			expOk: true,
		},
		"fades are silent": {
			event: events.Event{Topic: events.FadeIn, Data: events.FadeCommand{}},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := NewConsole(&fakeController{}, nil)
			got, ok := c.narrate(tt.event)
			testutil.AssertEqual(t, "ok", ok, tt.expOk)
			testutil.AssertEqual(t, "text", got, tt.exp)
		})
	}
}

type pipe struct {
	in  io.Reader
	out *bytes.Buffer
}

func (p *pipe) Read(b []byte) (int, error)  { return p.in.Read(b) }
func (p *pipe) Write(b []byte) (int, error) { return p.out.Write(b) }

func TestConsole_RunSession(t *testing.T) {
	ctrl := &fakeController{}
	c := NewConsole(ctrl, nil)
	p := &pipe{in: strings.NewReader("help\nfatal done\nquit\ndie never\n"), out: &bytes.Buffer{}}

	if err := c.RunSession(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := p.out.String()
	testutil.AssertEqual(t, "help listed", strings.Contains(out, "STEER:"), true)
	testutil.AssertEqual(t, "farewell", strings.Contains(out, "You let go of the dream."), true)
	testutil.AssertEqual(t, "stopped at quit", len(ctrl.inputs), 1)
}
