package scene

import (
	"math"

	"github.com/pixil98/go-dream/internal/mood"
	"github.com/pixil98/go-dream/internal/rng"
)

const (
	quadrantBias = 4.0
	axisBias     = 2.0
)

// Choose resolves exit to one destination id.
func (c *Catalogue) Choose(exit LinkExit, m mood.Vector, rnd *rng.Source) string {
	switch exit.Policy {
	case PolicyMoodBiased:
		return c.chooseMoodBiased(exit, m, rnd)
	default:
		return chooseWeighted(exit.Candidates, exit.Weights, rnd)
	}
}

func (c *Catalogue) chooseMoodBiased(exit LinkExit, m mood.Vector, rnd *rng.Source) string {
	if c.Neutral(m) {
		return c.hub
	}

	q := m.Quadrant()
	byUpper := math.Abs(m.X) >= math.Abs(m.Y)

	weights := make([]float64, len(exit.Candidates))
	for i, id := range exit.Candidates {
		weights[i] = 1
		d, ok := c.scenes[id]
		if !ok || d.Affinity == "" {
			continue
		}
		switch {
		case d.Affinity == q:
			weights[i] *= quadrantBias
		case byUpper && d.Affinity.Upper() == q.Upper():
			weights[i] *= axisBias
		case !byUpper && d.Affinity.Dynamic() == q.Dynamic():
			weights[i] *= axisBias
		}
	}

	idx := rnd.Weighted(weights)
	if idx < 0 {
		return c.hub
	}
	return exit.Candidates[idx]
}

func chooseWeighted(candidates []string, weights []float64, rnd *rng.Source) string {
	if len(candidates) == 0 {
		return ""
	}
	if len(weights) != len(candidates) {
		return candidates[rnd.Int(0, len(candidates)-1)]
	}
	idx := rnd.Weighted(weights)
	if idx < 0 {
		return candidates[0]
	}
	return candidates[idx]
}
