package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-dream/internal/scene"
	"github.com/pixil98/go-dream/internal/storage"
	"github.com/pixil98/go-dream/internal/tuning"
	"github.com/pixil98/go-errors"
)

// ScenesConfig selects the scene catalogue. With no path the built-in
// scenes are used.
type ScenesConfig struct {
	Path      string            `json:"path" env:"DREAM_SCENES_PATH"`
	Hub       string            `json:"hub"`
	NPCRoutes map[string]string `json:"npc_routes"`
}

func (c *ScenesConfig) validate() error {
	el := errors.NewErrorList()

	if c.Path != "" {
		if _, err := os.Stat(c.Path); err != nil {
			el.Add(fmt.Errorf("scenes: invalid path %q: %w", c.Path, err))
		}
		if c.Hub == "" {
			el.Add(fmt.Errorf("scenes: hub is required with a custom path"))
		}
	}

	return el.Err()
}

func (c *ScenesConfig) buildCatalogue(t tuning.Tuning) (*scene.Catalogue, error) {
	opts := []scene.CatalogueOpt{scene.WithThresholds(t.Mood.NeutralMagnitude, t.Mood.SpawnMagnitude)}
	if c.Hub != "" {
		opts = append(opts, scene.WithHub(c.Hub))
	}
	if c.NPCRoutes != nil {
		opts = append(opts, scene.WithNPCRoutes(c.NPCRoutes))
	}

	if c.Path == "" {
		return scene.DefaultCatalogue(opts...)
	}

	st, err := storage.NewFileStore[*scene.Definition](c.Path)
	if err != nil {
		return nil, fmt.Errorf("loading scenes: %w", err)
	}
	if c.NPCRoutes == nil {
		opts = append(opts, scene.WithNPCRoutes(scene.DefaultNPCRoutes))
	}
	return scene.LoadCatalogue(st, opts...)
}
