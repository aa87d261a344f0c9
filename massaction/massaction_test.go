package massaction

import (
	"testing"

	"github.com/catalytic/simulac/prng"
	"github.com/catalytic/simulac/reaction"
	"github.com/catalytic/simulac/species"
)

func TestSubmitFirstOrderDecay(t *testing.T) {
	reg := species.NewRegistry()
	a := reg.Add("A", 100)
	b := reg.Add("B", 0)

	table := NewTable()
	table.Add(&Reaction{
		Name:         "A->B",
		Left:         []Term{{Species: a, Count: 1}},
		Right:        []Term{{Species: b, Count: 1}},
		RateConstant: 1.0,
	})

	q := reaction.NewQueue(prng.New(1))
	table.Submit(q, reg, 1.0)
	if q.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", q.Len())
	}
	if q.TotalProbability != 100.0 {
		t.Fatalf("TotalProbability = %v, want 100 (first-order propensity = k * n)", q.TotalProbability)
	}

	r, _, err := q.Select()
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if err := q.Execute(r); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if reg.Count(a) != 99 || reg.Count(b) != 1 {
		t.Fatalf("counts = (A=%d, B=%d), want (99, 1)", reg.Count(a), reg.Count(b))
	}
}

func TestSubmitSkipsWhenReactantExhausted(t *testing.T) {
	reg := species.NewRegistry()
	a := reg.Add("A", 0)
	b := reg.Add("B", 0)
	table := NewTable()
	table.Add(&Reaction{
		Left:         []Term{{Species: a, Count: 1}},
		Right:        []Term{{Species: b, Count: 1}},
		RateConstant: 5.0,
	})
	q := reaction.NewQueue(prng.New(1))
	table.Submit(q, reg, 1.0)
	if q.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 when the sole reactant is exhausted", q.Len())
	}
}

func TestSubmitSecondOrderUsesVolumeRatio(t *testing.T) {
	reg := species.NewRegistry()
	a := reg.Add("A", 10)
	c := reg.Add("C", 0)
	table := NewTable()
	table.Add(&Reaction{
		Left:         []Term{{Species: a, Count: 2}},
		Right:        []Term{{Species: c, Count: 1}},
		RateConstant: 1.0,
	})
	q := reaction.NewQueue(prng.New(1))
	table.Submit(q, reg, 2.0)
	// order=2, volumeRatio^(order-1) = 2.0^1 = 2.0; C(10,2) = 45.
	want := 45.0 * 2.0
	if q.TotalProbability != want {
		t.Fatalf("TotalProbability = %v, want %v", q.TotalProbability, want)
	}
}
