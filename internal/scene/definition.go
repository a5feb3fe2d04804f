package scene

import (
	"fmt"

	"github.com/pixil98/go-dream/internal/display"
	"github.com/pixil98/go-dream/internal/game"
	"github.com/pixil98/go-dream/internal/mood"
	"github.com/pixil98/go-errors"
)

// TriggerAny matches every collision that no NPC-specific exit claims.
const TriggerAny = "Any"

// Policy decides how a LinkExit picks among its candidates.
type Policy string

const (
	// PolicyMoodBiased favours candidates whose affinity matches the
	// current mood and collapses to the hub when the mood is near neutral.
	PolicyMoodBiased Policy = "mood_biased"
	// PolicyRandomWeighted draws by the configured weights, ignoring mood.
	PolicyRandomWeighted Policy = "random_weighted"
)

func (p Policy) Valid() bool {
	return p == PolicyMoodBiased || p == PolicyRandomWeighted
}

type LinkExit struct {
	Trigger    string    `json:"trigger"`
	Policy     Policy    `json:"policy"`
	Candidates []string  `json:"candidates"`
	Weights    []float64 `json:"weights,omitempty"`
}

func (e *LinkExit) Validate() error {
	el := errors.NewErrorList()

	if e.Trigger == "" {
		el.Add(fmt.Errorf("trigger is required"))
	}
	if !e.Policy.Valid() {
		el.Add(fmt.Errorf("policy %q is invalid", e.Policy))
	}
	if len(e.Candidates) == 0 {
		el.Add(fmt.Errorf("at least one candidate is required"))
	}
	if len(e.Weights) > 0 && len(e.Weights) != len(e.Candidates) {
		el.Add(fmt.Errorf("weights must match candidates (%d != %d)", len(e.Weights), len(e.Candidates)))
	}

	return el.Err()
}

// Structure describes a ring of identical landmark objects.
type Structure struct {
	Name   string  `json:"name"`
	Count  int     `json:"count"`
	Radius float64 `json:"radius"`
	Height float64 `json:"height"`
	Color  uint32  `json:"color"`
}

type Ground struct {
	Size  float64 `json:"size"`
	Color uint32  `json:"color"`
}

// Definition is an immutable scene. Id is assigned by the Catalogue from the
// asset key.
type Definition struct {
	Id          string        `json:"-"`
	Area        string        `json:"area"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Drift       mood.Vector   `json:"drift"`
	Affinity    mood.Quadrant `json:"affinity,omitempty"`

	Aesthetics   map[string]float64 `json:"aesthetics"`
	SpawnPoints  []game.Vec3        `json:"spawn_points"`
	NPCs         []string           `json:"npcs"`
	Structures   []Structure        `json:"structures"`
	PropCount    int                `json:"prop_count"`
	Ground       Ground             `json:"ground"`
	Lighting     game.Lighting      `json:"lighting"`
	AudioProfile string             `json:"audio_profile"`

	Exits []LinkExit `json:"exits"`
}

// Validate satisfies storage.ValidatingSpec. Cross-scene references are
// checked by the Catalogue.
func (d *Definition) Validate() error {
	el := errors.NewErrorList()

	if d.Area == "" {
		el.Add(fmt.Errorf("area is required"))
	}
	if d.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}
	if d.Affinity != "" && !d.Affinity.Valid() {
		el.Add(fmt.Errorf("affinity %q is invalid", d.Affinity))
	}
	if len(d.SpawnPoints) == 0 {
		el.Add(fmt.Errorf("at least one spawn point is required"))
	}
	if d.PropCount < 0 {
		el.Add(fmt.Errorf("prop_count must not be negative"))
	}
	for i, s := range d.Structures {
		if s.Count < 0 {
			el.Add(fmt.Errorf("structure %d: count must not be negative", i))
		}
	}
	if len(d.Exits) == 0 {
		el.Add(fmt.Errorf("at least one link exit is required"))
	}
	for i := range d.Exits {
		if err := d.Exits[i].Validate(); err != nil {
			el.Add(fmt.Errorf("exit %d: %w", i, err))
		}
	}
	if err := display.ValidateTemplate(d.Description); err != nil {
		el.Add(fmt.Errorf("description: %w", err))
	}

	return el.Err()
}

// ExitFor returns the exit that handles a collision with the given trigger.
// NPC-specific exits win over TriggerAny.
func (d *Definition) ExitFor(trigger string) (LinkExit, bool) {
	if trigger != "" && trigger != TriggerAny {
		for _, e := range d.Exits {
			if e.Trigger == trigger {
				return e, true
			}
		}
	}
	for _, e := range d.Exits {
		if e.Trigger == TriggerAny {
			return e, true
		}
	}
	return LinkExit{}, false
}

type describeData struct {
	Scene *Definition
	Mood  mood.Classified
}

// Describe renders the description template against the current mood.
func (d *Definition) Describe(m mood.Vector) (string, error) {
	return display.ExpandTemplate(d.Description, describeData{Scene: d, Mood: mood.Classify(m)})
}
