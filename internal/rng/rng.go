// Package rng provides the deterministic per-session random source.
package rng

import "math"

const (
	multiplier = 1103515245
	increment  = 12345
	modMask    = 0x7fffffff
)

// Source is a linear congruential generator over a 31-bit state.
// Two sources built from the same seed produce identical sequences.
type Source struct {
	seed  int64
	state int64
}

func New(seed int64) *Source {
	s := &Source{}
	s.Reseed(seed)
	return s
}

// Reseed restarts the sequence from seed.
func (s *Source) Reseed(seed int64) {
	s.seed = seed
	s.state = seed & modMask
}

// Seed returns the seed the current sequence was started from.
func (s *Source) Seed() int64 {
	return s.seed
}

func (s *Source) next() float64 {
	s.state = (s.state*multiplier + increment) & modMask
	return float64(s.state) / modMask
}

// Float returns a value in [min, max].
func (s *Source) Float(min, max float64) float64 {
	return min + s.next()*(max-min)
}

// Int returns an integer in [min, max].
func (s *Source) Int(min, max int) int {
	n := int(math.Floor(s.Float(float64(min), float64(max+1))))
	if n > max {
		n = max
	}
	return n
}

// Chance reports whether a draw falls below p.
func (s *Source) Chance(p float64) bool {
	return s.next() < p
}

// Weighted returns an index into weights chosen proportionally to its weight.
// Non-positive weights are never chosen. It returns -1 when no weight is positive.
func (s *Source) Weighted(weights []float64) int {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}

	target := s.Float(0, total)
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		if target < w {
			return i
		}
		target -= w
	}
	return last
}
