package state

import (
	"math/rand"

	"github.com/nathoo/ruinscript/types"
)

// countingSource counts draws from the underlying source so a generator can
// be restored to the exact same position.
type countingSource struct {
	src rand.Source
	n   int64
}

func (c *countingSource) Int63() int64 {
	c.n++
	return c.src.Int63()
}

func (c *countingSource) Seed(seed int64) {
	c.src.Seed(seed)
	c.n = 0
}

// RNG wraps math/rand.Rand with deterministic position tracking.
type RNG struct {
	seed int64
	src  *countingSource
	rand *rand.Rand
}

// NewRNG creates a new deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	src := &countingSource{src: rand.NewSource(seed)}
	return &RNG{seed: seed, src: src, rand: rand.New(src)}
}

// Roll returns a random integer in [1, sides].
func (r *RNG) Roll(sides int) int {
	return r.rand.Intn(sides) + 1
}

// Range returns a random integer in [lo, hi]. The bounds may be given in
// either order.
func (r *RNG) Range(lo, hi int64) int64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo + r.rand.Int63n(hi-lo+1)
}

// Position returns the number of source draws made since creation.
func (r *RNG) Position() int64 {
	return r.src.n
}

// RestoreRNG creates an RNG and advances it to the given position.
func RestoreRNG(seed int64, position int64) *RNG {
	rng := NewRNG(seed)
	for rng.src.n < position {
		rng.src.Int63()
	}
	return rng
}

// RandInt draws an integer in [lo, hi] from the state's generator and
// records the new position on the state.
func RandInt(s *types.State, lo, hi int64) int64 {
	rng := RestoreRNG(s.RNGSeed, s.RNGPosition)
	n := rng.Range(lo, hi)
	s.RNGPosition = rng.Position()
	return n
}
