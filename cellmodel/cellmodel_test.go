package cellmodel

import (
	"testing"

	"github.com/catalytic/simulac/prng"
	"github.com/catalytic/simulac/reaction"
	"github.com/catalytic/simulac/species"
)

func TestSubmitNoGrowthSubmitsNothing(t *testing.T) {
	reg := species.NewRegistry()
	q := reaction.NewQueue(prng.New(1))
	cell := &Cell{VI: 1, V0: 1, V: 1, GrowthRate: 0}
	Submit(q, cell, reg, prng.New(1))
	if q.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 when GrowthRate is 0", q.Len())
	}
}

func TestExecuteGrowsWithoutDividingBelowThreshold(t *testing.T) {
	reg := species.NewRegistry()
	a := reg.Add("A", 50)
	cell := &Cell{VI: 1, V0: 1, V: 1}
	Execute(cell, reg, prng.New(1))
	if cell.V != 1+volumeStep {
		t.Fatalf("V = %v, want %v", cell.V, 1+volumeStep)
	}
	if reg.Count(a) != 50 {
		t.Fatalf("A count = %d, want unchanged 50 (no division yet)", reg.Count(a))
	}
}

func TestExecuteDividesAndHalvesVolume(t *testing.T) {
	reg := species.NewRegistry()
	reg.Add("A", 1000)
	cell := &Cell{VI: 1, V0: 1, V: 2 - volumeStep}
	Execute(cell, reg, prng.New(5))
	if cell.V != 1 {
		t.Fatalf("V = %v, want 1 after halving from 2", cell.V)
	}
	if cell.V/cell.VI < 1 {
		t.Fatalf("V/VI = %v, want >= 1 post-division", cell.V/cell.VI)
	}
}

func TestSingleCellNeverDivides(t *testing.T) {
	cell := &Cell{VI: 1, V0: 1, V: 10, SingleCell: true}
	if cell.ShouldDivide() {
		t.Fatal("ShouldDivide() = true, want false when SingleCell is set")
	}
}
