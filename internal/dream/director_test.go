package dream

import (
	"math"
	"testing"
	"time"

	"github.com/pixil98/go-dream/internal/distortion"
	"github.com/pixil98/go-dream/internal/events"
	"github.com/pixil98/go-dream/internal/game"
	"github.com/pixil98/go-dream/internal/mood"
	"github.com/pixil98/go-dream/internal/scene"
	"github.com/pixil98/go-dream/internal/session"
	"github.com/pixil98/go-dream/internal/storage"
	"github.com/pixil98/go-testutil"
)

type tape struct {
	events []events.Event
}

func (t *tape) record(e events.Event) {
	t.events = append(t.events, e)
}

func (t *tape) count(topic events.Topic) int {
	n := 0
	for _, e := range t.events {
		if e.Topic == topic {
			n++
		}
	}
	return n
}

func (t *tape) last(topic events.Topic) (events.Event, bool) {
	for i := len(t.events) - 1; i >= 0; i-- {
		if t.events[i].Topic == topic {
			return t.events[i], true
		}
	}
	return events.Event{}, false
}

func (t *tape) distortionStarts() int {
	n := 0
	for _, e := range t.events {
		de, ok := e.Data.(distortion.DreamEvent)
		if ok && de.Type == distortion.TypeRealityDistortion && de.Phase == distortion.PhaseStart {
			n++
		}
	}
	return n
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func newDirector(t *testing.T, opts ...DirectorOpt) (*Director, *tape) {
	t.Helper()
	base := []DirectorOpt{
		WithClock(func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }),
		WithEntropy(func() float64 { return 0.25 }),
	}
	d, err := NewDirector(append(base, opts...)...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tp := &tape{}
	d.Bus().SubscribeAll(tp.record)
	return d, tp
}

func started(t *testing.T, opts ...DirectorOpt) (*Director, *tape) {
	t.Helper()
	d, tp := newDirector(t, opts...)
	d.Start()
	d.Step(0)
	return d, tp
}

func TestDirector_StartsInHub(t *testing.T) {
	d, tp := started(t)

	snap := d.Snapshot()
	testutil.AssertEqual(t, "started", snap.Started, true)
	testutil.AssertEqual(t, "state", snap.State, "active")
	testutil.AssertEqual(t, "scene", snap.SceneId, scene.SquishyFieldHub)
	testutil.AssertEqual(t, "session count", snap.SessionCount, 1)
	testutil.AssertEqual(t, "session id set", snap.SessionId != "", true)

	testutil.AssertEqual(t, "first event", tp.events[0].Topic, events.SessionNew)
	testutil.AssertEqual(t, "scene changes", tp.count(events.SceneChanged), 1)
	testutil.AssertEqual(t, "audio changes", tp.count(events.AudioSceneChange), 1)

	ev, _ := tp.last(events.FadeIn)
	testutil.AssertEqual(t, "fade in last", tp.events[len(tp.events)-1].Topic, events.FadeIn)
	testutil.AssertEqual(t, "session stamped", ev.Session, snap.SessionId)
}

func TestDirector_IgnoresInputBeforeStart(t *testing.T) {
	d, tp := newDirector(t)
	d.Submit(Input{Topic: events.EventTrigger, Payload: EventTrigger{EventType: "x", MoodDelta: mood.Vector{X: 3}}})
	d.Step(time.Second)

	testutil.AssertEqual(t, "events", len(tp.events), 0)
	testutil.AssertEqual(t, "mood", d.Snapshot().Mood.Magnitude, 0.0)
}

func TestDirector_SessionEnds(t *testing.T) {
	tests := map[string]struct {
		inputs    []Input
		step      time.Duration
		expType   session.EndType
		expReason string
	}{
		"timeout": {
			step:      61 * time.Second,
			expType:   session.EndTimeout,
			expReason: session.ReasonTimeout,
		},
		"explicit death": {
			inputs:    []Input{{Topic: events.PlayerDied, Payload: PlayerDied{Cause: "lava"}}},
			expType:   session.EndDeath,
			expReason: "Player died from lava",
		},
		"fell into the void": {
			inputs:    []Input{{Topic: events.PlayerMoved, Payload: PlayerMoved{Position: game.Vec3{Y: -30}}}},
			step:      50 * time.Millisecond,
			expType:   session.EndDeath,
			expReason: session.ReasonVoid,
		},
		"fatal": {
			inputs:    []Input{{Topic: events.DreamFatal, Payload: Fatal{Reason: "lost the thread"}}},
			expType:   session.EndFatal,
			expReason: "lost the thread",
		},
		"second ending ignored": {
			inputs: []Input{
				{Topic: events.DreamFatal, Payload: Fatal{Reason: "first"}},
				{Topic: events.PlayerDied, Payload: PlayerDied{Cause: "second"}},
			},
			expType:   session.EndFatal,
			expReason: "first",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			d, tp := started(t)
			for _, in := range tt.inputs {
				d.Submit(in)
			}
			d.Step(tt.step)

			testutil.AssertEqual(t, "ends", tp.count(events.SessionEnd), 1)
			testutil.AssertEqual(t, "final", tp.count(events.MoodFinal), 1)
			testutil.AssertEqual(t, "classified", tp.count(events.MoodClassified), 1)

			ev, _ := tp.last(events.SessionEnd)
			end := ev.Data.(session.EndEvent)
			testutil.AssertEqual(t, "type", end.Type, tt.expType)
			testutil.AssertEqual(t, "reason", end.Reason, tt.expReason)
			testutil.AssertEqual(t, "state", d.Snapshot().State, "ending")
			testutil.AssertEqual(t, "history", len(d.SessionHistory()), 1)
		})
	}
}

func TestDirector_AutoFadeRestarts(t *testing.T) {
	d, tp := started(t, WithAutoFade(true))
	first := d.Snapshot().SessionId

	d.Submit(Input{Topic: events.DreamFatal, Payload: Fatal{Reason: "stop"}})
	d.Step(0)
	d.Step(3 * time.Second)

	snap := d.Snapshot()
	testutil.AssertEqual(t, "new sessions", tp.count(events.SessionNew), 2)
	testutil.AssertEqual(t, "state", snap.State, "active")
	testutil.AssertEqual(t, "count", snap.SessionCount, 2)
	testutil.AssertEqual(t, "new id", snap.SessionId != first, true)
}

func TestDirector_ManualFadeRestarts(t *testing.T) {
	d, tp := started(t)

	d.Submit(Input{Topic: events.DreamFatal, Payload: Fatal{Reason: "stop"}})
	d.Step(0)
	d.Step(5 * time.Second)
	testutil.AssertEqual(t, "waits for fade", tp.count(events.SessionNew), 1)

	d.Submit(Input{Topic: events.FadeComplete, Payload: FadeComplete{Type: events.FadeDirectionIn}})
	d.Step(time.Second)
	testutil.AssertEqual(t, "fade in ignored", tp.count(events.SessionNew), 1)

	d.Submit(Input{Topic: events.FadeComplete, Payload: FadeComplete{Type: events.FadeDirectionOut}})
	d.Step(0)
	d.Step(time.Second)
	testutil.AssertEqual(t, "restarted", tp.count(events.SessionNew), 2)
}

func TestDirector_NPCTouchLinks(t *testing.T) {
	d, tp := started(t)

	d.Submit(Input{Topic: events.NPCTouch, Payload: NPCTouch{NPCType: "BusinessFrog"}})
	d.Step(0)
	testutil.AssertEqual(t, "linking", d.Snapshot().LinkState, "fade_out")
	testutil.AssertEqual(t, "fade out", tp.count(events.FadeOut), 1)

	d.Step(600 * time.Millisecond)
	snap := d.Snapshot()
	testutil.AssertEqual(t, "scene", snap.SceneId, scene.BureauTower)
	testutil.AssertEqual(t, "idle", snap.LinkState, "idle")
	testutil.AssertEqual(t, "drift", snap.Drift, mood.Vector{X: 0, Y: -0.2})
	testutil.AssertEqual(t, "history", len(d.SceneHistory()), 1)
}

func TestDirector_CollisionWithGroundIgnored(t *testing.T) {
	d, tp := started(t)

	ground := d.Objects(game.KindGround)
	if len(ground) != 1 {
		t.Fatalf("expected one ground object, got %d", len(ground))
	}
	before := len(tp.events)

	d.Submit(Input{Topic: events.PlayerCollision, Payload: Collision{Handle: ground[0].Handle}})
	d.Submit(Input{Topic: events.PlayerCollision, Payload: Collision{Handle: 99999}})
	d.Step(0)

	testutil.AssertEqual(t, "no events", len(tp.events), before)
	testutil.AssertEqual(t, "idle", d.Snapshot().LinkState, "idle")
}

func TestDirector_AreaDrift(t *testing.T) {
	d, _ := started(t)

	d.Submit(Input{Topic: events.AreaEnter, Payload: AreaEnter{Area: "pond", MoodDrift: mood.Vector{X: 1}}})
	d.Step(0)
	d.Step(2 * time.Second)
	testutil.AssertEqual(t, "drifted", d.Snapshot().Mood.X, 2.0)

	d.Submit(Input{Topic: events.AreaExit, Payload: AreaExit{Area: "elsewhere"}})
	d.Step(0)
	testutil.AssertEqual(t, "other area ignored", d.Snapshot().Drift, mood.Vector{X: 1})

	d.Submit(Input{Topic: events.AreaExit, Payload: AreaExit{Area: "pond"}})
	d.Step(0)
	testutil.AssertEqual(t, "scene drift restored", d.Snapshot().Drift, mood.Vector{})
}

func TestDirector_EndFlushesDistortions(t *testing.T) {
	d, tp := started(t)

	d.SetMood(mood.Vector{X: 5, Y: 5})
	for i := 0; i < 30; i++ {
		d.Step(time.Second)
	}
	d.Submit(Input{Topic: events.DreamFatal, Payload: Fatal{Reason: "stop"}})
	d.Step(0)

	starts, ends := 0, 0
	for _, e := range tp.events {
		de, ok := e.Data.(distortion.DreamEvent)
		if !ok || de.Type != distortion.TypeRealityDistortion {
			continue
		}
		switch de.Phase {
		case distortion.PhaseStart:
			starts++
		case distortion.PhaseEnd:
			ends++
		}
	}

	testutil.AssertEqual(t, "some started", starts > 0, true)
	testutil.AssertEqual(t, "balanced", ends, starts)
	testutil.AssertEqual(t, "none active", len(d.Snapshot().Distortions), 0)
}

func TestDirector_RemembersMoodAcrossRuns(t *testing.T) {
	kv := storage.NewMemoryKV()

	d, _ := started(t, WithKeyValue(kv))
	d.Submit(Input{Topic: events.EventTrigger, Payload: EventTrigger{EventType: "song", MoodDelta: mood.Vector{X: 7, Y: 1}}})
	d.Submit(Input{Topic: events.DreamFatal, Payload: Fatal{Reason: "wake"}})
	d.Step(0)

	again, _ := started(t, WithKeyValue(kv))
	snap := again.Snapshot()
	testutil.AssertEqual(t, "count", snap.SessionCount, 2)
	testutil.AssertEqual(t, "spawn follows mood", snap.SceneId, scene.KaraokeStarship)
}

func TestDirector_DriftAloneStartsDistortions(t *testing.T) {
	d, tp := started(t)

	d.Submit(Input{Topic: events.NPCTouch, Payload: NPCTouch{NPCType: "BusinessFrog"}})
	d.Step(0)
	d.Step(600 * time.Millisecond)
	testutil.AssertEqual(t, "scene", d.Snapshot().SceneId, scene.BureauTower)

	for i := 0; i < 200; i++ {
		d.Step(100 * time.Millisecond)
	}

	testutil.AssertEqual(t, "mood published", tp.count(events.MoodChanged) > 0, true)
	testutil.AssertEqual(t, "strong mood", d.Snapshot().Mood.Magnitude > 1, true)

	var drifted bool
	for _, h := range d.MoodHistory() {
		if h.Reason == "drift" {
			drifted = true
		}
	}
	testutil.AssertEqual(t, "drift in history", drifted, true)
	testutil.AssertEqual(t, "distortions started", tp.distortionStarts() > 0, true)
}

func TestDirector_MovementMovesMood(t *testing.T) {
	d, _ := started(t)

	spawn := d.Snapshot().Player
	d.Submit(Input{Topic: events.PlayerMoved, Payload: PlayerMoved{Position: spawn.Add(game.Vec3{X: 3})}})
	d.Step(100 * time.Millisecond)

	// One stride bonus plus three units travelled this tick.
	if got := d.Snapshot().Mood.Y; !approx(got, 0.4) {
		t.Errorf("mood Y after moving = %v, want 0.4", got)
	}

	d.Step(2 * time.Second)
	if got := d.Snapshot().Mood.Y; !approx(got, 0.3) {
		t.Errorf("mood Y after standing = %v, want 0.3", got)
	}
}

func TestDirector_HitsEndSession(t *testing.T) {
	d, tp := started(t, WithAutoFade(true))
	testutil.AssertEqual(t, "health at start", d.Snapshot().Health, 100)

	for i := 0; i < 11; i++ {
		d.Submit(Input{Topic: events.PlayerHit, Payload: Hit{}})
	}
	d.Step(0)

	snap := d.Snapshot()
	testutil.AssertEqual(t, "health", snap.Health, 0)
	testutil.AssertEqual(t, "health events", tp.count(events.PlayerHealth), 11)
	testutil.AssertEqual(t, "state", snap.State, "ending")
	testutil.AssertEqual(t, "end type", snap.LastEnd.Type, session.EndDeath)
	testutil.AssertEqual(t, "end reason", snap.LastEnd.Reason, "Player died from health")
	testutil.AssertEqual(t, "death push", snap.Mood.X, -1.0)

	d.Step(3 * time.Second)
	snap = d.Snapshot()
	testutil.AssertEqual(t, "restarted", snap.SessionCount, 2)
	testutil.AssertEqual(t, "health restored", snap.Health, 100)
	testutil.AssertEqual(t, "mood reset", snap.Mood.X, 0.0)
}

func TestDirector_VeteranUnlocksDistortions(t *testing.T) {
	tests := map[string]struct {
		previous    string
		expUnlocked bool
	}{
		"new dreamer": {
			previous: "0",
		},
		"twentieth session": {
			previous:    "19",
			expUnlocked: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			kv := storage.NewMemoryKV()
			if err := kv.Set(session.DefaultKeyPrefix+"session_count", []byte(tt.previous)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			d, tp := started(t, WithKeyValue(kv))
			testutil.AssertEqual(t, "unlocked", d.Snapshot().Unlocked, tt.expUnlocked)

			for i := 0; i < 11; i++ {
				d.Step(time.Second)
			}
			testutil.AssertEqual(t, "neutral mood", d.Snapshot().Mood.Magnitude < 1, true)
			testutil.AssertEqual(t, "distortions started", tp.distortionStarts() > 0, tt.expUnlocked)
		})
	}
}
