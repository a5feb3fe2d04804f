package distortion

import (
	"math"
	"time"

	"github.com/pixil98/go-dream/internal/game"
	"github.com/pixil98/go-dream/internal/rng"
)

type env struct {
	world     *game.World
	rnd       *rng.Source
	intensity float64
}

// effect is the live half of a distortion: it animates while active and
// undoes its own changes on end.
type effect interface {
	update(w *game.World, elapsed time.Duration)
	end(w *game.World)
}

// affected reports whether an object takes part in world-wide effects.
func affected(o game.Object) bool {
	return o.Kind == game.KindStructure || o.Kind == game.KindProp
}

type perspectiveShift struct {
	orig game.Camera
}

func startPerspectiveShift(e env) effect {
	orig := e.world.Camera()
	shift := 0.3 + e.intensity*0.7

	sign := 1.0
	if e.rnd.Chance(0.5) {
		sign = -1
	}
	e.world.SetCamera(game.Camera{
		FOV:  orig.FOV + sign*20*shift,
		Roll: orig.Roll + e.rnd.Float(-0.3, 0.3)*shift,
	})
	return &perspectiveShift{orig: orig}
}

func (p *perspectiveShift) update(*game.World, time.Duration) {}

func (p *perspectiveShift) end(w *game.World) {
	w.SetCamera(p.orig)
}

// spawned covers every kind that only adds temporary objects.
type spawned struct {
	handles []game.Handle
	base    []game.Object
	animate func(o *game.Object, base game.Object, elapsed time.Duration)
}

func (s *spawned) update(w *game.World, elapsed time.Duration) {
	if s.animate == nil {
		return
	}
	for i, h := range s.handles {
		base := s.base[i]
		_ = w.Update(h, func(o *game.Object) { s.animate(o, base, elapsed) })
	}
}

func (s *spawned) end(w *game.World) {
	for _, h := range s.handles {
		w.Remove(h)
	}
}

func (s *spawned) spawn(w *game.World, o game.Object) game.Handle {
	o.Kind = game.KindDistortion
	h := w.Spawn(o)
	stored, _ := w.Object(h)
	s.handles = append(s.handles, h)
	s.base = append(s.base, stored)
	return h
}

func nearPlayer(e env, spread, height float64) game.Vec3 {
	return e.world.PlayerPosition().Add(game.Vec3{
		X: e.rnd.Float(-spread, spread),
		Y: height,
		Z: e.rnd.Float(-spread, spread),
	})
}

func startDimensionalFold(e env) effect {
	s := &spawned{}
	s.spawn(e.world, game.Object{
		Name:     "fold_plane",
		Position: nearPlayer(e, 10, 5),
		Rotation: game.Vec3{X: e.rnd.Float(0, math.Pi), Y: e.rnd.Float(0, math.Pi)},
		Scale:    10 * (0.5 + e.intensity),
		Opacity:  0.6,
		Color:    0x8844FF,
	})
	return s
}

func startRecursiveSpace(e env) effect {
	s := &spawned{}
	center := nearPlayer(e, 8, 3)

	var parent game.Handle
	for i := 0; i < 5; i++ {
		h := s.spawn(e.world, game.Object{
			Name:     "recursive_box",
			Position: center,
			Rotation: game.Vec3{Y: float64(i) * 0.3},
			Scale:    4 * math.Pow(0.7, float64(i)),
			Opacity:  0.3 + 0.1*float64(i),
			Color:    0x44FFFF,
			Parent:   parent,
		})
		if parent == 0 {
			parent = h
		}
	}
	s.animate = func(o *game.Object, base game.Object, elapsed time.Duration) {
		o.Rotation.Y = base.Rotation.Y + elapsed.Seconds()*0.5
	}
	return s
}

func startImpossibleGeometry(e env) effect {
	s := &spawned{}
	s.spawn(e.world, game.Object{
		Name:     "impossible_cone",
		Position: nearPlayer(e, 12, 4),
		Rotation: game.Vec3{Z: math.Pi},
		Scale:    2 + 3*e.intensity,
		Color:    0xFF8800,
	})
	s.animate = func(o *game.Object, base game.Object, elapsed time.Duration) {
		o.Rotation.X = base.Rotation.X + elapsed.Seconds()
		o.Rotation.Y = base.Rotation.Y - elapsed.Seconds()*0.7
	}
	return s
}

func startTemporalLoop(e env) effect {
	s := &spawned{}
	s.spawn(e.world, game.Object{
		Name:     "temporal_sphere",
		Position: nearPlayer(e, 6, 2),
		Scale:    1 + e.intensity,
		Opacity:  0.7,
		Color:    0xFFFFAA,
	})
	s.animate = func(o *game.Object, base game.Object, elapsed time.Duration) {
		// Loops back to its anchor every two seconds.
		phase := math.Mod(elapsed.Seconds(), 2) / 2
		o.Position = base.Position.Add(game.Vec3{X: 4 * math.Cos(2*math.Pi*phase), Z: 4 * math.Sin(2*math.Pi*phase)})
	}
	return s
}

func startScaleParadox(e env) effect {
	s := &spawned{}
	s.spawn(e.world, game.Object{
		Name:     "paradox_box",
		Position: nearPlayer(e, 10, 1),
		Scale:    0.5 + 4*e.intensity,
		Color:    0xFF44AA,
	})
	s.animate = func(o *game.Object, base game.Object, elapsed time.Duration) {
		o.Scale = base.Scale * (1 + 0.5*math.Sin(elapsed.Seconds()*3))
	}
	return s
}

type gravityInversion struct {
	orig map[game.Handle]game.Vec3
	rate float64
}

func startGravityInversion(e env) effect {
	g := &gravityInversion{orig: map[game.Handle]game.Vec3{}, rate: 0.5 + e.intensity}
	for _, o := range e.world.Objects(affected) {
		g.orig[o.Handle] = o.Position
	}
	return g
}

func (g *gravityInversion) update(w *game.World, elapsed time.Duration) {
	lift := g.rate * elapsed.Seconds()
	for h, pos := range g.orig {
		_ = w.Update(h, func(o *game.Object) {
			o.Position = pos.Add(game.Vec3{Y: lift})
		})
	}
}

func (g *gravityInversion) end(w *game.World) {
	for h, pos := range g.orig {
		_ = w.Update(h, func(o *game.Object) { o.Position = pos })
	}
}

type matterPhasing struct {
	orig map[game.Handle]float64
}

func startMatterPhasing(e env) effect {
	m := &matterPhasing{orig: map[game.Handle]float64{}}
	for _, o := range e.world.Objects(affected) {
		m.orig[o.Handle] = o.Opacity
	}
	return m
}

func (m *matterPhasing) update(w *game.World, elapsed time.Duration) {
	phase := 0.3 + 0.7*math.Abs(math.Sin(elapsed.Seconds()*2))
	for h, op := range m.orig {
		_ = w.Update(h, func(o *game.Object) { o.Opacity = op * phase })
	}
}

func (m *matterPhasing) end(w *game.World) {
	for h, op := range m.orig {
		_ = w.Update(h, func(o *game.Object) { o.Opacity = op })
	}
}
