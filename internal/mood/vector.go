// Package mood tracks the dreamer's affect as a point on a wrapping 2D plane.
// The X axis runs downer (negative) to upper (positive); the Y axis runs
// static (negative) to dynamic (positive).
package mood

import "math"

const (
	Min = -9.0
	Max = 9.0

	// ringWidth is the number of unit slots on each axis.
	ringWidth = Max - Min + 1

	// SignificantChange is the per-axis movement that counts as a change.
	SignificantChange = 0.1
)

type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v+d with each axis wrapped into range.
func (v Vector) Add(d Vector) Vector {
	return Vector{X: Wrap(v.X + d.X), Y: Wrap(v.Y + d.Y)}
}

// Scale returns v multiplied by f without wrapping.
func (v Vector) Scale(f float64) Vector {
	return Vector{X: v.X * f, Y: v.Y * f}
}

func (v Vector) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vector) Quadrant() Quadrant {
	return QuadrantOf(v)
}

// Wrap folds v back into [Min, Max]. An overflow of at least one unit walks
// the 19-slot ring, so adding 19 to any in-range value is the identity. A
// fractional overflow re-enters at the opposite bound plus the overflow.
func Wrap(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	for v > Max {
		o := v - Max
		if o >= 1 {
			v = Min + (o - 1)
		} else {
			v = Min + o
		}
	}
	for v < Min {
		o := Min - v
		if o >= 1 {
			v = Max - (o - 1)
		} else {
			v = Max - o
		}
	}
	return v
}

// significant reports whether a and b differ by more than SignificantChange
// on either axis.
func significant(a, b Vector) bool {
	return math.Abs(a.X-b.X) > SignificantChange || math.Abs(a.Y-b.Y) > SignificantChange
}
