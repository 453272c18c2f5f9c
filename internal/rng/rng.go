// Package rng provides the simulation's only randomness source: a
// seedable xorshift generator whose sequence is fully reproducible from
// its seed, as save/replay correctness requires.
package rng

const defaultSeed = 2463534242

// Generator is a 32-bit xorshift PRNG. Not safe for concurrent use; the
// simulation owns exactly one and drives it from a single goroutine.
type Generator struct {
	state uint32
}

// New returns a generator seeded with seed.
func New(seed uint32) *Generator {
	g := &Generator{}
	g.Reseed(seed)
	return g
}

// Reseed resets the sequence. A zero seed is replaced, since xorshift is
// stuck at zero forever.
func (g *Generator) Reseed(seed uint32) {
	if seed == 0 {
		seed = defaultSeed
	}
	g.state = seed
}

// next advances the xorshift state (13, 17, 5 triplet).
func (g *Generator) next() uint32 {
	x := g.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	g.state = x
	return x
}

// NextInt returns a non-negative pseudo-random int.
func (g *Generator) NextInt() int {
	return int(g.next() >> 1)
}

// NextIntRange returns a value in [lo, hi). Panics if hi <= lo.
func (g *Generator) NextIntRange(lo, hi int) int {
	if hi <= lo {
		panic("rng: empty range")
	}
	return lo + int(g.next()%uint32(hi-lo))
}

// NextFloat returns a value in [0, 1).
func (g *Generator) NextFloat() float64 {
	return float64(g.next()) / (1 << 32)
}

// State exposes the raw state for persistence.
func (g *Generator) State() uint32 {
	return g.state
}

// Restore overwrites the raw state from a save. A zero state is replaced
// the same way Reseed replaces a zero seed.
func (g *Generator) Restore(state uint32) {
	if state == 0 {
		state = defaultSeed
	}
	g.state = state
}
