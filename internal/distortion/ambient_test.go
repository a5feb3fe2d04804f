package distortion

import (
	"testing"
	"time"

	"github.com/pixil98/go-dream/internal/clock"
	"github.com/pixil98/go-dream/internal/mood"
	"github.com/pixil98/go-dream/internal/rng"
	"github.com/pixil98/go-testutil"
)

func TestAmbient_TypesFollowMood(t *testing.T) {
	tests := map[string]struct {
		mood    mood.Vector
		allowed map[string]bool
	}{
		"upper dynamic": {
			mood:    mood.Vector{X: 3, Y: 3},
			allowed: map[string]bool{TypeFloatingObjects: true, TypeObjectScaling: true},
		},
		"downer static": {
			mood:    mood.Vector{X: -3, Y: -3},
			allowed: map[string]bool{TypeLightingChange: true, TypeTextureSwap: true},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rec := &recorder{}
			a := NewAmbient(rng.New(5), clock.New(), rec, 0)
			a.SetMood(tt.mood)
			a.SetIntensity(0.2)

			for i := 0; i < 300; i++ {
				a.Fire()
			}
			if len(rec.types) == 0 {
				t.Fatal("expected ambient events")
			}
			for _, typ := range rec.types {
				if !tt.allowed[typ] {
					t.Fatalf("unexpected type %q", typ)
				}
			}
		})
	}
}

func TestAmbient_RareEvents(t *testing.T) {
	rec := &recorder{}
	a := NewAmbient(rng.New(9), clock.New(), rec, 0)
	a.SetRareEvents(true)
	a.SetIntensity(1)

	for i := 0; i < 2000; i++ {
		a.Fire()
	}

	seen := map[string]bool{}
	for _, typ := range rec.types {
		seen[typ] = true
	}
	testutil.AssertEqual(t, "portal", seen[TypeNonEuclideanPortal], true)
	testutil.AssertEqual(t, "gravity warp", seen[TypeGravityWarp], true)
}

func TestAmbient_StartStop(t *testing.T) {
	rec := &recorder{}
	timers := clock.New()
	a := NewAmbient(rng.New(3), timers, rec, time.Second)
	a.SetIntensity(1)

	a.Start()
	timers.Advance(10 * time.Second)
	fired := len(rec.types)
	if fired == 0 {
		t.Fatal("expected events while running")
	}

	a.Stop()
	timers.Advance(10 * time.Second)
	testutil.AssertEqual(t, "stopped", len(rec.types), fired)
	testutil.AssertEqual(t, "pending", timers.Pending(), 0)
}
