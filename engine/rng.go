package engine

import "math/rand"

// RNG wraps math/rand.Rand with deterministic position tracking.
// Position increments with every call, so a walkthrough replayed from the
// same seed sees the same numbers.
type RNG struct {
	seed int64
	src  *rand.Rand
	pos  int64
}

// NewRNG creates a new deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

// Between returns a random integer in [lo, hi]. Reversed bounds are
// swapped.
func (r *RNG) Between(lo, hi int) int {
	if lo > hi {
		lo, hi = hi, lo
	}
	r.pos++
	return lo + r.src.Intn(hi-lo+1)
}

// Seed returns the seed the generator started from.
func (r *RNG) Seed() int64 { return r.seed }

// Position returns the number of RNG calls made since creation.
func (r *RNG) Position() int64 {
	return r.pos
}
