package scene

import (
	"github.com/pixil98/go-dream/internal/game"
	"github.com/pixil98/go-dream/internal/mood"
)

// Built-in scene ids.
const (
	SquishyFieldHub  = "SquishyFieldHub"
	BureauTower      = "BureauTower"
	KaraokeStarship  = "KaraokeStarship"
	ArchiveSpire     = "ArchiveSpire"
	GlitchGrotto     = "GlitchGrotto"
	InfiniteCorridor = "InfiniteCorridor"
)

// DefaultNPCRoutes sends a touch on these NPCs straight to their home scene.
var DefaultNPCRoutes = map[string]string{
	"BusinessFrog":     BureauTower,
	"YokiKaraokeRobot": KaraokeStarship,
	"PinkRat":          GlitchGrotto,
}

func spawnRing() []game.Vec3 {
	return []game.Vec3{
		{X: 0, Y: 2, Z: 0},
		{X: 5, Y: 2, Z: 5},
		{X: -5, Y: 2, Z: -5},
	}
}

func aesthetics(normal, scripture, downer, upper float64) map[string]float64 {
	return map[string]float64{
		"Normal":    normal,
		"Scripture": scripture,
		"Downer":    downer,
		"Upper":     upper,
	}
}

// Builtin returns fresh copies of the six stock scenes keyed by id.
func Builtin() map[string]*Definition {
	return map[string]*Definition{
		SquishyFieldHub: {
			Area:        "Hub",
			Name:        "Squishy Field",
			Description: `A soft field that gives under every step. The sky feels {{ if eq .Mood.Primary "upper" }}bright and wide{{ else }}low and heavy{{ end }}.`,
			Aesthetics:  aesthetics(0.6, 0.2, 0.1, 0.1),
			SpawnPoints: spawnRing(),
			NPCs:        []string{"Phetta", "TVMan"},
			Structures:  []Structure{{Name: "star", Count: 10, Radius: 40, Height: 20, Color: 0xFFFF88}},
			PropCount:   5,
			Ground:      Ground{Size: 100, Color: 0x88CC88},
			Lighting:    game.Lighting{Color: 0xFFFFFF, Intensity: 0.8},
			Exits: []LinkExit{{
				Trigger:    TriggerAny,
				Policy:     PolicyMoodBiased,
				Candidates: []string{BureauTower, KaraokeStarship, ArchiveSpire, GlitchGrotto, InfiniteCorridor},
			}},
		},
		BureauTower: {
			Area:        "Bureau",
			Name:        "Bureau Tower",
			Description: "Grey offices stack into the fog. Somewhere a form is being stamped {{ .Mood.Secondary | eq \"dynamic\" | ternary \"frantically\" \"forever\" }}.",
			Drift:       mood.Vector{X: 0, Y: -0.2},
			Affinity:    mood.DownerDynamic,
			Aesthetics:  aesthetics(0.3, 0.1, 0.5, 0.1),
			SpawnPoints: spawnRing(),
			NPCs:        []string{"BusinessFrog", "TVMan"},
			Structures:  []Structure{{Name: "building", Count: 5, Radius: 25, Height: 30, Color: 0x666677}},
			PropCount:   5,
			Ground:      Ground{Size: 100, Color: 0x555555},
			Lighting:    game.Lighting{Color: 0xFFFFFF, Intensity: 0.8},
			Exits: []LinkExit{{
				Trigger:    TriggerAny,
				Policy:     PolicyMoodBiased,
				Candidates: []string{SquishyFieldHub, GlitchGrotto, InfiniteCorridor},
			}},
		},
		KaraokeStarship: {
			Area:        "Karaoke",
			Name:        "Karaoke Starship",
			Description: "Speakers hum between the stars and the lyrics scroll on without you.",
			Drift:       mood.Vector{X: 0.2, Y: 0.3},
			Affinity:    mood.UpperDynamic,
			Aesthetics:  aesthetics(0.2, 0.1, 0.1, 0.6),
			SpawnPoints: spawnRing(),
			NPCs:        []string{"YokiKaraokeRobot", "TVMan"},
			Structures:  []Structure{{Name: "speaker", Count: 8, Radius: 20, Height: 4, Color: 0xFF44CC}},
			PropCount:   5,
			Ground:      Ground{Size: 100, Color: 0x221144},
			Lighting:    game.Lighting{Color: 0xFFFFFF, Intensity: 1.0},
			Exits: []LinkExit{{
				Trigger:    TriggerAny,
				Policy:     PolicyMoodBiased,
				Candidates: []string{SquishyFieldHub, ArchiveSpire, InfiniteCorridor},
			}},
		},
		ArchiveSpire: {
			Area:        "Archive",
			Name:        "Archive Spire",
			Description: "Shelves climb past the clouds, every page written in a script you almost read.",
			Drift:       mood.Vector{X: 0.3, Y: -0.1},
			Affinity:    mood.UpperStatic,
			Aesthetics:  aesthetics(0.2, 0.6, 0.1, 0.1),
			SpawnPoints: spawnRing(),
			NPCs:        []string{"TVMan", "Phetta"},
			Structures:  []Structure{{Name: "spire", Count: 3, Radius: 30, Height: 60, Color: 0xCCBB99}},
			PropCount:   5,
			Ground:      Ground{Size: 100, Color: 0xAA9977},
			Lighting:    game.Lighting{Color: 0xFFFFFF, Intensity: 0.8},
			Exits: []LinkExit{{
				Trigger:    TriggerAny,
				Policy:     PolicyMoodBiased,
				Candidates: []string{SquishyFieldHub, KaraokeStarship, InfiniteCorridor},
			}},
		},
		GlitchGrotto: {
			Area:        "Glitch",
			Name:        "Glitch Grotto",
			Description: "The cave walls stutter. Cubes hang where the floor forgot to render.",
			Drift:       mood.Vector{X: -0.2, Y: -0.3},
			Affinity:    mood.DownerStatic,
			Aesthetics:  aesthetics(0.1, 0.1, 0.7, 0.1),
			SpawnPoints: spawnRing(),
			NPCs:        []string{"PinkRat", "TVMan"},
			Structures:  []Structure{{Name: "cube", Count: 6, Radius: 15, Height: 3, Color: 0x00FF66}},
			PropCount:   5,
			Ground:      Ground{Size: 100, Color: 0x110011},
			Lighting:    game.Lighting{Color: 0x220022, Intensity: 0.3},
			Exits: []LinkExit{{
				Trigger:    TriggerAny,
				Policy:     PolicyMoodBiased,
				Candidates: []string{SquishyFieldHub, BureauTower, InfiniteCorridor},
			}},
		},
		InfiniteCorridor: {
			Area:        "Corridor",
			Name:        "Infinite Corridor",
			Description: "A hallway that keeps going. The doors on either side all open onto somewhere else.",
			Drift:       mood.Vector{X: 0, Y: 0.1},
			Aesthetics:  aesthetics(0.8, 0.1, 0.05, 0.05),
			SpawnPoints: spawnRing(),
			NPCs:        []string{"TVMan"},
			Structures:  []Structure{{Name: "wall", Count: 2, Radius: 6, Height: 10, Color: 0xDDDDDD}},
			PropCount:   5,
			Ground:      Ground{Size: 100, Color: 0xBBBBBB},
			Lighting:    game.Lighting{Color: 0xFFFFFF, Intensity: 0.8},
			Exits: []LinkExit{{
				Trigger:    TriggerAny,
				Policy:     PolicyRandomWeighted,
				Candidates: []string{SquishyFieldHub, BureauTower, KaraokeStarship, ArchiveSpire, GlitchGrotto},
			}},
		},
	}
}
