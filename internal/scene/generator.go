package scene

import (
	"math"

	"github.com/pixil98/go-dream/internal/game"
	"github.com/pixil98/go-dream/internal/rng"
)

const (
	defaultAudioProfile = "Ambient"
	npcScatterRadius    = 15.0
	propScatterRadius   = 30.0
)

var defaultLighting = game.Lighting{Color: 0xFFFFFF, Intensity: 0.8}

var propNames = []string{"box", "sphere", "cone", "torus"}

// populate fills w with the content of d. Structures carry a pre-drawn link
// target; props defer to the scene's exit policy at collision time.
func (c *Catalogue) populate(w *game.World, d *Definition, rnd *rng.Source) {
	w.Spawn(game.Object{
		Kind:       game.KindGround,
		Name:       "ground",
		Scale:      d.Ground.Size,
		Color:      d.Ground.Color,
		SceneOwned: true,
	})

	exit, hasExit := d.ExitFor(TriggerAny)
	for _, s := range d.Structures {
		for i := 0; i < s.Count; i++ {
			angle := 2*math.Pi*float64(i)/float64(s.Count) + rnd.Float(-0.2, 0.2)
			var target string
			if hasExit {
				target = chooseWeighted(exit.Candidates, exit.Weights, rnd)
			}
			w.Spawn(game.Object{
				Kind: game.KindStructure,
				Name: s.Name,
				Position: game.Vec3{
					X: math.Cos(angle) * s.Radius,
					Y: s.Height / 2,
					Z: math.Sin(angle) * s.Radius,
				},
				Rotation:   game.Vec3{Y: rnd.Float(0, 2*math.Pi)},
				Color:      s.Color,
				LinkTarget: target,
				Linkable:   true,
				SceneOwned: true,
			})
		}
	}

	for _, npc := range d.NPCs {
		w.Spawn(game.Object{
			Kind:       game.KindNPC,
			Name:       npc,
			NPCType:    npc,
			Position:   scatter(rnd, npcScatterRadius, 1),
			Linkable:   true,
			SceneOwned: true,
		})
	}

	for i := 0; i < d.PropCount; i++ {
		w.Spawn(game.Object{
			Kind:       game.KindProp,
			Name:       propNames[rnd.Int(0, len(propNames)-1)],
			Position:   scatter(rnd, propScatterRadius, rnd.Float(0.5, 3)),
			Rotation:   game.Vec3{X: rnd.Float(0, math.Pi), Y: rnd.Float(0, math.Pi)},
			Scale:      rnd.Float(0.5, 2),
			Color:      uint32(rnd.Int(0, 0xFFFFFF)),
			Linkable:   true,
			SceneOwned: true,
		})
	}

	lighting := d.Lighting
	if lighting == (game.Lighting{}) {
		lighting = defaultLighting
	}
	w.SetLighting(lighting)
	profile := d.AudioProfile
	if profile == "" {
		profile = defaultAudioProfile
	}
	w.SetAudioProfile(profile)
}

func scatter(rnd *rng.Source, radius, y float64) game.Vec3 {
	return game.Vec3{
		X: rnd.Float(-radius, radius),
		Y: y,
		Z: rnd.Float(-radius, radius),
	}
}
