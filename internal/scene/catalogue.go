package scene

import (
	"fmt"
	"sort"

	"github.com/pixil98/go-dream/internal/mood"
	"github.com/pixil98/go-dream/internal/storage"
	"github.com/pixil98/go-errors"
)

const (
	// DefaultNeutralThreshold is the mood magnitude below which the mood
	// counts as neutral.
	DefaultNeutralThreshold = 2.0
	// DefaultSpawnThreshold is the magnitude above which a session spawns
	// in the scene matching the previous mood.
	DefaultSpawnThreshold = 6.0
)

// Catalogue is the validated, immutable set of scenes a dream can visit.
type Catalogue struct {
	scenes map[string]*Definition
	hub    string
	routes map[string]string

	neutralThreshold float64
	spawnThreshold   float64
}

type CatalogueOpt func(*Catalogue)

// WithHub sets the neutral scene used for sessions and near-neutral links.
func WithHub(id string) CatalogueOpt {
	return func(c *Catalogue) {
		c.hub = id
	}
}

// WithNPCRoutes sets the NPC type to destination table.
func WithNPCRoutes(routes map[string]string) CatalogueOpt {
	return func(c *Catalogue) {
		c.routes = routes
	}
}

func WithThresholds(neutral, spawn float64) CatalogueOpt {
	return func(c *Catalogue) {
		c.neutralThreshold = neutral
		c.spawnThreshold = spawn
	}
}

// NewCatalogue validates defs and every cross-scene reference in them.
func NewCatalogue(defs map[string]*Definition, opts ...CatalogueOpt) (*Catalogue, error) {
	c := &Catalogue{
		scenes:           make(map[string]*Definition, len(defs)),
		hub:              SquishyFieldHub,
		routes:           map[string]string{},
		neutralThreshold: DefaultNeutralThreshold,
		spawnThreshold:   DefaultSpawnThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}

	for id, d := range defs {
		if d == nil {
			continue
		}
		d.Id = id
		c.scenes[id] = d
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultCatalogue is the built-in six-scene dream.
func DefaultCatalogue(opts ...CatalogueOpt) (*Catalogue, error) {
	base := []CatalogueOpt{WithHub(SquishyFieldHub), WithNPCRoutes(DefaultNPCRoutes)}
	return NewCatalogue(Builtin(), append(base, opts...)...)
}

// LoadCatalogue builds a catalogue from scene assets.
func LoadCatalogue(st storage.Storer[*Definition], opts ...CatalogueOpt) (*Catalogue, error) {
	defs := map[string]*Definition{}
	for id, d := range st.GetAll() {
		defs[string(id)] = d
	}
	return NewCatalogue(defs, opts...)
}

func (c *Catalogue) validate() error {
	el := errors.NewErrorList()

	if len(c.scenes) == 0 {
		el.Add(fmt.Errorf("catalogue has no scenes"))
	}
	if _, ok := c.scenes[c.hub]; !ok {
		el.Add(fmt.Errorf("hub scene %q: %w", c.hub, ErrUnknownScene))
	}

	for _, id := range c.Ids() {
		d := c.scenes[id]
		if err := d.Validate(); err != nil {
			el.Add(fmt.Errorf("scene %s: %w", id, err))
			continue
		}
		for i, e := range d.Exits {
			for _, cand := range e.Candidates {
				if _, ok := c.scenes[cand]; !ok {
					el.Add(fmt.Errorf("scene %s exit %d: candidate %q: %w", id, i, cand, ErrUnknownScene))
				}
			}
		}
	}

	for npc, dest := range c.routes {
		if _, ok := c.scenes[dest]; !ok {
			el.Add(fmt.Errorf("npc route %s: destination %q: %w", npc, dest, ErrUnknownScene))
		}
	}

	return el.Err()
}

// Get returns the scene with the given id.
func (c *Catalogue) Get(id string) (*Definition, error) {
	d, ok := c.scenes[id]
	if !ok {
		return nil, fmt.Errorf("scene %q: %w", id, ErrUnknownScene)
	}
	return d, nil
}

// Ids returns every scene id in sorted order.
func (c *Catalogue) Ids() []string {
	ids := make([]string, 0, len(c.scenes))
	for id := range c.scenes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (c *Catalogue) Hub() string {
	return c.hub
}

// Route returns the canonical destination for an NPC type.
func (c *Catalogue) Route(npcType string) (string, bool) {
	dest, ok := c.routes[npcType]
	return dest, ok
}

// Neutral reports whether v is too weak to bias scene choice.
func (c *Catalogue) Neutral(v mood.Vector) bool {
	return v.Magnitude() < c.neutralThreshold
}

// SpawnFor picks the scene a session starts in from the previous session's
// mood. Weak or moderate moods start in the hub; strong moods start in the
// scene whose affinity matches their quadrant.
func (c *Catalogue) SpawnFor(prev *mood.Classified) string {
	if prev == nil {
		return c.hub
	}
	v := prev.Vector()
	if v.Magnitude() <= c.spawnThreshold {
		return c.hub
	}

	q := v.Quadrant()
	for _, id := range c.Ids() {
		if c.scenes[id].Affinity == q {
			return id
		}
	}
	return c.hub
}
