// Package cellmodel implements cell volume growth and the binomial
// partitioning of species counts at division.
package cellmodel

import (
	"github.com/catalytic/simulac/prng"
	"github.com/catalytic/simulac/reaction"
	"github.com/catalytic/simulac/species"
)

// volumeStep is the fixed volume increment applied on every
// ChangeCellVolume reaction (spec.md §4.6), in litres.
const volumeStep = 1e-18

// Cell carries the volume state that modulates every volume-dependent
// reaction rate in the model.
type Cell struct {
	VI         float64 // initial volume, litres
	V0         float64 // reference (rate-normalization) volume, litres
	V          float64 // current volume, litres
	GrowthRate float64 // litres/sec, already scaled by 1e-18 at parse time

	// SingleCell disables division entirely when true (the
	// "single-cell, no-division" invocation flag from spec.md §6).
	SingleCell bool
}

// VolumeRatio returns V0/V, the factor spec.md uses to volume-correct
// bimolecular and higher-order propensities.
func (c *Cell) VolumeRatio() float64 { return c.V0 / c.V }

// ShouldDivide reports whether the cell has doubled in volume relative
// to its initial volume.
func (c *Cell) ShouldDivide() bool { return !c.SingleCell && c.V/c.VI >= 2 }

// Submit submits this tick's cell-volume-growth reaction, if the cell has
// a positive growth rate.
func Submit(q *reaction.Queue, cell *Cell, reg *species.Registry, rng *prng.Source) {
	if cell.GrowthRate <= 0 {
		return
	}
	r := q.Alloc()
	r.Type = reaction.ChangeCellVolume
	// Each firing adds volumeStep litres, so the event rate is the growth
	// rate measured in volumeSteps per second.
	r.Probability = cell.GrowthRate / volumeStep
	r.Fire = func(any) error {
		Execute(cell, reg, rng)
		return nil
	}
	q.Submit(r)
}

// Execute grows the cell by one fixed volume increment and, if that
// crosses the division threshold, halves V and replaces every species
// count with a binomial(n, 0.5) draw (spec.md §4.6, §3).
func Execute(cell *Cell, reg *species.Registry, rng *prng.Source) {
	cell.V += volumeStep
	if !cell.ShouldDivide() {
		return
	}
	cell.V /= 2
	for i := 0; i < reg.Len(); i++ {
		n := reg.Count(i)
		reg.SetCount(i, rng.Binomial(n, 0.5))
	}
}
