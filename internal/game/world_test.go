package game

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestWorld_SpawnDefaults(t *testing.T) {
	w := NewWorld()

	h := w.Spawn(Object{Kind: KindProp, Name: "star"})
	o, ok := w.Object(h)
	if !ok {
		t.Fatal("expected spawned object")
	}

	testutil.AssertEqual(t, "handle", o.Handle, h)
	testutil.AssertEqual(t, "scale", o.Scale, 1.0)
	testutil.AssertEqual(t, "opacity", o.Opacity, 1.0)
}

func TestWorld_HandlesNotReused(t *testing.T) {
	w := NewWorld()

	a := w.Spawn(Object{Kind: KindProp})
	w.Remove(a)
	b := w.Spawn(Object{Kind: KindProp})

	if a == b {
		t.Errorf("handle %d reused", a)
	}
}

func TestWorld_ClearSceneOwned(t *testing.T) {
	w := NewWorld()

	w.Spawn(Object{Kind: KindGround, SceneOwned: true})
	w.Spawn(Object{Kind: KindProp, SceneOwned: true})
	keep := w.Spawn(Object{Kind: KindDistortion})

	testutil.AssertEqual(t, "removed", w.ClearSceneOwned(), 2)
	testutil.AssertEqual(t, "remaining", w.Count(), 1)

	_, ok := w.Object(keep)
	testutil.AssertEqual(t, "kept distortion", ok, true)
}

func TestWorld_Update(t *testing.T) {
	tests := map[string]struct {
		spawn  bool
		expErr string
	}{
		"existing": {spawn: true},
		"missing":  {spawn: false, expErr: "object not found"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w := NewWorld()
			h := Handle(42)
			if tt.spawn {
				h = w.Spawn(Object{Kind: KindProp})
			}

			err := w.Update(h, func(o *Object) { o.Opacity = 0.3 })
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			o, _ := w.Object(h)
			testutil.AssertEqual(t, "opacity", o.Opacity, 0.3)
		})
	}
}

func TestWorld_ObjectsOrderedAndFiltered(t *testing.T) {
	w := NewWorld()
	for i := 0; i < 5; i++ {
		w.Spawn(Object{Kind: KindProp})
	}
	w.Spawn(Object{Kind: KindNPC, NPCType: "PinkRat"})

	all := w.Objects(nil)
	testutil.AssertEqual(t, "all", len(all), 6)
	for i := 1; i < len(all); i++ {
		if all[i-1].Handle >= all[i].Handle {
			t.Fatalf("objects not ordered by handle")
		}
	}

	npcs := w.Objects(func(o Object) bool { return o.Kind == KindNPC })
	testutil.AssertEqual(t, "npcs", len(npcs), 1)
	testutil.AssertEqual(t, "npc type", npcs[0].NPCType, "PinkRat")
}

func TestWorld_WhenReady(t *testing.T) {
	w := NewWorld()

	var order []int
	w.WhenReady(func() { order = append(order, 1) })
	w.WhenReady(func() { order = append(order, 2) })
	testutil.AssertEqual(t, "queued", len(order), 0)

	w.MarkReady()
	testutil.AssertEqual(t, "ran", len(order), 2)
	testutil.AssertEqual(t, "first", order[0], 1)

	w.WhenReady(func() { order = append(order, 3) })
	testutil.AssertEqual(t, "immediate", len(order), 3)

	w.MarkReady()
	testutil.AssertEqual(t, "idempotent", len(order), 3)
}

func TestVec3_Distance(t *testing.T) {
	testutil.AssertEqual(t, "same point", Vec3{X: 1, Y: 2, Z: 3}.Distance(Vec3{X: 1, Y: 2, Z: 3}), 0.0)
	testutil.AssertEqual(t, "3-4-5", Vec3{X: 3, Z: 4}.Distance(Vec3{}), 5.0)
}
