// Package prng supplies the engine's random draws: seedable uniform (0,1]
// samples for the Gillespie clock and the Shea-Ackers roulette sampler, and
// binomial deviates for cell-division partitioning.
//
// The original C engine (CellManager.c) hand-rolled a Numerical-Recipes
// ran1()/bnldev() pair seeded from a single long. We keep the same
// "one seed, one deterministic stream" contract but source the binomial
// deviate from gonum's stat/distuv package (seen wired into the sequencing
// tool in the retrieval pack's go.mod, gonum.org/v1/gonum) instead of
// reimplementing the rejection-sampling algorithm by hand.
package prng

import (
	"math"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Source is a seeded, non-global random stream. Each DNA/reaction engine
// instance should own exactly one Source — there is no package-level
// rand.Seed() call, so two simulations running in the same process never
// perturb each other's streams.
//
// It draws from golang.org/x/exp/rand rather than the standard math/rand:
// distuv.Binomial's Src field is typed against x/exp/rand.Source, which
// math/rand.Rand does not satisfy.
type Source struct {
	rnd *rand.Rand
}

// New returns a Source seeded deterministically from seed.
func New(seed int64) *Source {
	return &Source{rnd: rand.New(rand.NewSource(uint64(seed)))}
}

// Uniform01 returns a draw from (0,1], never 0. math/rand's Float64 is
// defined on [0,1); negating it onto (0,1] matches the original engine's
// "rndm = 1.0 - drand48()" convention used everywhere a roulette-wheel
// selection needs to never land exactly on zero.
func (s *Source) Uniform01() float64 {
	return 1.0 - s.rnd.Float64()
}

// Binomial draws a Binomial(n, p) deviate and rounds it to the nearest
// integer, mirroring bnldev()'s float-returning signature but handing back
// a count directly since every caller in this engine wants a molecule
// count.
func (s *Source) Binomial(n int, p float64) int {
	if n <= 0 {
		return 0
	}
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return n
	}
	b := distuv.Binomial{N: float64(n), P: p, Src: s.rnd}
	return int(math.Round(b.Rand()))
}
