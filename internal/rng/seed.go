package rng

import "time"

const sessionSalt = 31337

// SeedInputs are the values folded into a session seed.
type SeedInputs struct {
	Now          time.Time
	SessionCount int
	// HasPrevMood is set when PrevX and PrevY hold the previous session's
	// final mood.
	HasPrevMood  bool
	PrevX, PrevY float64
	// Entropy is a single sample in [0, 1).
	Entropy float64
}

// DeriveSeed mixes the wall clock, the session count, the previous mood and
// one entropy sample into a non-negative 32-bit seed.
func DeriveSeed(in SeedInputs) int64 {
	seed := in.Now.UnixMilli()
	seed ^= int64(in.SessionCount) * sessionSalt

	if in.HasPrevMood {
		seed ^= int64(in.PrevX*1000 + in.PrevY*100)
	}

	seed ^= int64(in.Entropy * 0xFFFFFF)

	v := int64(int32(seed))
	if v < 0 {
		v = -v
	}
	return v
}
