// Package distortion runs short-lived effects that bend the dream world.
// Every effect that starts is ended exactly once, restoring what it changed.
package distortion

import "time"

type Kind string

const (
	PerspectiveShift   Kind = "perspective_shift"
	DimensionalFold    Kind = "dimensional_fold"
	RecursiveSpace     Kind = "recursive_space"
	ImpossibleGeometry Kind = "impossible_geometry"
	GravityInversion   Kind = "gravity_inversion"
	TemporalLoop       Kind = "temporal_loop"
	MatterPhasing      Kind = "matter_phasing"
	ScaleParadox       Kind = "scale_paradox"
)

// Kinds lists every distortion in catalogue order.
var Kinds = []Kind{
	PerspectiveShift, DimensionalFold, RecursiveSpace, ImpossibleGeometry,
	GravityInversion, TemporalLoop, MatterPhasing, ScaleParadox,
}

// entry describes how long a kind lasts and how it starts.
type entry struct {
	min    time.Duration
	spread time.Duration
	start  func(env env) effect
}

var catalogue = map[Kind]entry{
	PerspectiveShift:   {min: 3 * time.Second, spread: 4 * time.Second, start: startPerspectiveShift},
	DimensionalFold:    {min: 4 * time.Second, spread: 6 * time.Second, start: startDimensionalFold},
	RecursiveSpace:     {min: 5 * time.Second, spread: 7 * time.Second, start: startRecursiveSpace},
	ImpossibleGeometry: {min: 6 * time.Second, spread: 8 * time.Second, start: startImpossibleGeometry},
	GravityInversion:   {min: 4 * time.Second, spread: 6 * time.Second, start: startGravityInversion},
	TemporalLoop:       {min: 8 * time.Second, spread: 10 * time.Second, start: startTemporalLoop},
	MatterPhasing:      {min: 5 * time.Second, spread: 7 * time.Second, start: startMatterPhasing},
	ScaleParadox:       {min: 6 * time.Second, spread: 8 * time.Second, start: startScaleParadox},
}

// DurationRange returns the shortest and longest run of k.
func DurationRange(k Kind) (time.Duration, time.Duration, bool) {
	e, ok := catalogue[k]
	if !ok {
		return 0, 0, false
	}
	return e.min, e.min + e.spread, true
}
