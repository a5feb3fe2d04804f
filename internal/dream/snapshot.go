package dream

import (
	"github.com/pixil98/go-dream/internal/distortion"
	"github.com/pixil98/go-dream/internal/game"
	"github.com/pixil98/go-dream/internal/mood"
	"github.com/pixil98/go-dream/internal/scene"
	"github.com/pixil98/go-dream/internal/session"
)

// Snapshot is a read-only view of the dream between ticks.
type Snapshot struct {
	SessionId    string            `json:"session_id"`
	SessionCount int               `json:"session_count"`
	Started      bool              `json:"started"`
	State        string            `json:"state"`
	Remaining    float64           `json:"remaining"`
	Progress     float64           `json:"progress"`
	Mood         mood.Classified   `json:"mood"`
	Drift        mood.Vector       `json:"drift"`
	SceneId      string            `json:"scene_id"`
	SceneName    string            `json:"scene_name"`
	Description  string            `json:"description"`
	LinkState    string            `json:"link_state"`
	Distortions  []distortion.Kind `json:"distortions"`
	Unlocked     bool              `json:"distortions_unlocked"`
	Health       int               `json:"health"`
	MaxHealth    int               `json:"max_health"`
	Objects      int               `json:"objects"`
	Player       game.Vec3         `json:"player"`
	LastEnd      session.EndEvent  `json:"last_end"`
}

func (d *Director) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := Snapshot{
		SessionId:    d.sessionId,
		SessionCount: d.persistence.Record().SessionCount,
		Started:      d.begun,
		State:        d.lifecycle.State().String(),
		Remaining:    d.lifecycle.Remaining().Seconds(),
		Progress:     d.lifecycle.Progress(),
		Mood:         mood.Classify(d.mood.Current()),
		Drift:        d.mood.Drift(),
		LinkState:    d.linker.State().String(),
		Unlocked:     d.scheduler.Unlocked(),
		Health:       d.health.Current(),
		MaxHealth:    d.health.Max(),
		Objects:      d.world.Count(),
		Player:       d.world.PlayerPosition(),
		LastEnd:      d.lifecycle.LastEnd(),
	}

	if cur := d.linker.Current(); cur != nil {
		s.SceneId = cur.Id
		s.SceneName = cur.Name
		s.Description = cur.Description
		if desc, err := cur.Describe(d.mood.Current()); err == nil {
			s.Description = desc
		}
	}
	for _, inst := range d.scheduler.Active() {
		s.Distortions = append(s.Distortions, inst.Kind)
	}
	return s
}

// Objects lists the world objects of the given kind, or all objects when
// kind is empty.
func (d *Director) Objects(kind game.ObjectKind) []game.Object {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.world.Objects(func(o game.Object) bool {
		return kind == "" || o.Kind == kind
	})
}

func (d *Director) MoodHistory() []mood.HistoryEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mood.History()
}

func (d *Director) SceneHistory() []scene.HistoryEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.linker.History()
}

func (d *Director) SessionHistory() []session.Summary {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.persistence.Record().History
}

func (d *Director) DistortionHistory() []distortion.HistoryEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.scheduler.History()
}
