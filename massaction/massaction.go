// Package massaction submits and executes mass-action chemical
// reactions: for each registered reaction, compute a propensity from
// current species counts and the cell's volume ratio, then on firing
// apply the net stoichiometric change to every species.
package massaction

import (
	"math"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/catalytic/simulac/reaction"
	"github.com/catalytic/simulac/species"
)

// Term is one (species, stoichiometric coefficient) pair on either side
// of a reaction equation.
type Term struct {
	Species int
	Count   int
}

// Reaction is one registered mass-action reaction, e.g. "A + 2B --> C".
type Reaction struct {
	Name    string
	Left    []Term
	Right   []Term
	RateConstant float64
}

// order returns the reaction's kinetic order, the sum of its
// left-hand-side stoichiometric coefficients.
func (r *Reaction) order() int {
	n := 0
	for _, t := range r.Left {
		n += t.Count
	}
	return n
}

// minPropensity is the floor below which a propensity is treated as
// numerically zero and not submitted (spec.md §4.5).
const minPropensity = 1e-20

// Table is the ordered set of registered mass-action reactions.
type Table struct {
	Reactions []*Reaction
}

// NewTable returns an empty Table.
func NewTable() *Table { return &Table{} }

// Add registers r.
func (t *Table) Add(r *Reaction) { t.Reactions = append(t.Reactions, r) }

// Submit computes each registered reaction's propensity against reg's
// current counts and the volume ratio V0/V, submitting any reaction whose
// propensity clears the minimum threshold.
func (t *Table) Submit(q *reaction.Queue, reg *species.Registry, volumeRatio float64) {
	for _, r := range t.Reactions {
		a := r.RateConstant
		for _, term := range r.Left {
			n := reg.Count(term.Species)
			coef := binomialCoefficient(n, term.Count)
			if coef == 0 {
				a = 0
				break
			}
			a *= coef
		}
		if a == 0 {
			continue
		}
		a *= math.Pow(volumeRatio, float64(r.order()-1))
		if a <= minPropensity {
			continue
		}

		react := q.Alloc()
		react.Type = reaction.Kinetic
		react.Probability = a
		react.Payload = r
		react.Fire = func(any) error {
			for _, term := range r.Left {
				reg.AddCount(term.Species, -term.Count)
			}
			for _, term := range r.Right {
				reg.AddCount(term.Species, term.Count)
			}
			return nil
		}
		q.Submit(react)
	}
}

// binomialCoefficient returns C(n, k), the count of ways k molecules of
// a reactant can be drawn from n available copies; 0 outside its domain
// since combin.Binomial panics there.
func binomialCoefficient(n, k int) float64 {
	if k < 0 || n < 0 || k > n {
		return 0
	}
	return float64(combin.Binomial(n, k))
}
