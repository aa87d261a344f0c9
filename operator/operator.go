// Package operator implements the Shea-Ackers statistical-mechanics
// sampler for operator (transcription-factor binding site) configuration.
// Each tick, every operator in the table has its currently-bound species
// released back to the free pool, a fresh Boltzmann-weighted roulette
// draw taken over its configurations, and the winning configuration's
// species re-bound — modelling rapid equilibrium between ticks rather
// than explicit binding/unbinding kinetics.
package operator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/catalytic/simulac/prng"
	"github.com/catalytic/simulac/species"
)

// avogadro is Avogadro's number, used to convert a free molecule count
// into molarity against the cell's current volume (in litres) when
// weighting a configuration.
const avogadro = 6.02214076e23

// Bound is one (species, copies-bound) pair contributed by a
// configuration, e.g. "2 copies of RepressorA".
type Bound struct {
	Species int
	Count   int
}

// Config is one enumerated binding configuration of an operator: a
// precomputed Boltzmann weight exp(-ΔG/RT) and the species it binds.
type Config struct {
	Weight float64
	Bound  []Bound
}

// Operator is one Shea-Ackers binding site with NConfigs possible bound
// states, exactly one of which, CurrentState, is active at any time.
type Operator struct {
	Name       string
	NSites     int
	Configs    []Config
	CurrentState int
}

// New returns an Operator over the given configurations, starting in the
// unbound (index 0, by outline-file convention the empty configuration)
// state.
func New(name string, nSites int, configs []Config) *Operator {
	return &Operator{Name: name, NSites: nSites, Configs: configs}
}

func (op *Operator) release(reg *species.Registry) {
	for _, b := range op.Configs[op.CurrentState].Bound {
		reg.AddCount(b.Species, b.Count)
	}
}

func (op *Operator) bind(reg *species.Registry, c int) {
	for _, b := range op.Configs[c].Bound {
		reg.AddCount(b.Species, -b.Count)
	}
}

// Resample releases the operator's currently bound species, recomputes
// every configuration's weight against the current free-species counts
// and cell volume (litres), draws a new configuration by roulette, and
// binds it. u must be a draw from (0,1].
func (op *Operator) Resample(reg *species.Registry, volumeLitres float64, u float64) error {
	op.release(reg)

	weights := make([]float64, len(op.Configs))
	total := 0.0
	for i, c := range op.Configs {
		w := c.Weight
		for _, b := range c.Bound {
			n := reg.Count(b.Species)
			coef := binomialCoefficient(n, b.Count)
			if coef == 0 {
				w = 0
				break
			}
			w *= coef * math.Pow(1.0/(avogadro*volumeLitres), float64(b.Count))
		}
		weights[i] = w
		total += w
	}

	if total <= 0 {
		// No configuration can be occupied at all (e.g. every
		// species-bearing configuration requires more copies than are
		// free); fall back to the unbound configuration deterministically.
		op.CurrentState = 0
		op.bind(reg, 0)
		return nil
	}

	target := u * total
	sum := 0.0
	chosen := len(weights) - 1
	for i, w := range weights {
		sum += w
		if sum >= target {
			chosen = i
			break
		}
	}

	op.CurrentState = chosen
	op.bind(reg, chosen)
	return nil
}

// TransitionMinusOne rewrites the operator's current state to the unique
// configuration equal to the current one with one fewer copy of
// speciesIdx bound, releasing the old state and binding the new one. It
// is the bookkeeping step transcription initiation performs on a
// promoter's shared operator once an RNAP has been pulled out of the
// bound state and set loose on the DNA (spec.md §4.3 ChangePromoterState).
// Fatal (returns an error) if no configuration matches: that signals the
// configuration list was not built to include the post-initiation state.
func (op *Operator) TransitionMinusOne(reg *species.Registry, speciesIdx int) error {
	cur := op.Configs[op.CurrentState].Bound
	target := make(map[int]int, len(cur))
	for _, b := range cur {
		target[b.Species] = b.Count
	}
	if target[speciesIdx] <= 0 {
		return fmt.Errorf("operator %q: current state does not bind species index %d, cannot transition minus one", op.Name, speciesIdx)
	}
	target[speciesIdx]--
	if target[speciesIdx] == 0 {
		delete(target, speciesIdx)
	}

	for i, c := range op.Configs {
		if i == op.CurrentState {
			continue
		}
		if boundMatches(c.Bound, target) {
			op.release(reg)
			op.CurrentState = i
			op.bind(reg, i)
			return nil
		}
	}
	return fmt.Errorf("operator %q: no configuration matches current state minus one copy of species index %d", op.Name, speciesIdx)
}

func boundMatches(bound []Bound, target map[int]int) bool {
	if len(bound) != len(target) {
		return false
	}
	for _, b := range bound {
		if target[b.Species] != b.Count {
			return false
		}
	}
	return true
}

// binomialCoefficient returns C(n, k), or 0 if k > n or either is
// negative (meaning the configuration cannot be bound at the current
// free count). combin.Binomial panics outside that domain, so the guard
// stays in front of it.
func binomialCoefficient(n, k int) float64 {
	if k < 0 || n < 0 || k > n {
		return 0
	}
	return float64(combin.Binomial(n, k))
}

// Table is the ordered collection of every operator in the model.
type Table struct {
	operators []*Operator
}

// NewTable returns an empty Table.
func NewTable() *Table { return &Table{} }

// Add registers op and returns its index.
func (t *Table) Add(op *Operator) int {
	t.operators = append(t.operators, op)
	return len(t.operators) - 1
}

// Len reports how many operators are registered.
func (t *Table) Len() int { return len(t.operators) }

// At returns the operator at index i.
func (t *Table) At(i int) *Operator { return t.operators[i] }

// ResampleAll resamples every operator in a random cyclic rotation
// starting from a random index, per spec.md §4.2 ("random rotation, start
// index ~ uniform over operators"). rng supplies both the start-index
// draw and each operator's roulette draw.
func (t *Table) ResampleAll(reg *species.Registry, volumeLitres float64, rng *prng.Source) error {
	n := len(t.operators)
	if n == 0 {
		return nil
	}
	start := int(rng.Uniform01() * float64(n))
	if start >= n {
		start = n - 1
	}
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if err := t.operators[idx].Resample(reg, volumeLitres, rng.Uniform01()); err != nil {
			return fmt.Errorf("operator %q: %w", t.operators[idx].Name, err)
		}
	}
	return nil
}
