// Package rng provides the run-owned deterministic random stream.
// Every random decision in a run draws from one RNG, so the draw order is
// part of the determinism contract.
package rng

import (
	"math"
	"math/rand"
)

// source counts every value pulled from the underlying generator so the
// exact stream position can be saved and restored.
type source struct {
	src rand.Source64
	n   int64
}

func (s *source) Int63() int64 {
	s.n++
	return s.src.Int63()
}

func (s *source) Uint64() uint64 {
	s.n++
	return s.src.Uint64()
}

func (s *source) Seed(seed int64) {
	s.src.Seed(seed)
	s.n = 0
}

// RNG wraps math/rand.Rand with deterministic position tracking.
// It is not safe for concurrent use; each run owns its own RNG.
type RNG struct {
	seed int64
	src  *source
	r    *rand.Rand
}

// New creates a deterministic RNG from a seed.
func New(seed int64) *RNG {
	src := &source{src: rand.NewSource(seed).(rand.Source64)}
	return &RNG{seed: seed, src: src, r: rand.New(src)}
}

// Restore creates an RNG and advances it to the given position.
// The restored stream continues exactly where the saved one stopped.
func Restore(seed int64, position int64) *RNG {
	g := New(seed)
	for i := int64(0); i < position; i++ {
		g.src.src.Int63()
	}
	g.src.n = position
	return g
}

// Seed returns the seed the stream was created from.
func (g *RNG) Seed() int64 {
	return g.seed
}

// Position returns the number of values drawn since creation.
func (g *RNG) Position() int64 {
	return g.src.n
}

// Roll returns a random integer in [1, sides]. Non-positive sides return 0
// without drawing.
func (g *RNG) Roll(sides int) int {
	if sides <= 0 {
		return 0
	}
	return g.r.Intn(sides) + 1
}

// Chance reports true with probability 1/sides.
func (g *RNG) Chance(sides int) bool {
	return g.Roll(sides) == 1
}

// Intn returns a value in [0, n). Non-positive n returns 0 without drawing.
func (g *RNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return g.r.Intn(n)
}

// Range returns a uniform integer in [lo, hi]. Reversed bounds are swapped.
// Spans wider than int64 draw one Uint64 and reduce it modulo the span.
func (g *RNG) Range(lo, hi int64) int64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi {
		return lo
	}
	span := uint64(hi) - uint64(lo)
	if span < math.MaxInt64 {
		return lo + g.r.Int63n(int64(span)+1)
	}
	v := g.r.Uint64()
	if span != math.MaxUint64 {
		v %= span + 1
	}
	return int64(uint64(lo) + v)
}

// WeightedSelect returns an index chosen by weighted random selection.
// Non-positive weights are never chosen. Returns -1 without drawing when
// no weight is positive.
func (g *RNG) WeightedSelect(weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return -1
	}
	roll := g.r.Intn(total)
	cumulative := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cumulative += w
		if roll < cumulative {
			return i
		}
	}
	return len(weights) - 1
}

// Shuffle permutes n elements through swap.
func (g *RNG) Shuffle(n int, swap func(i, j int)) {
	g.r.Shuffle(n, swap)
}
