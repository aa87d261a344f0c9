package translation

import (
	"testing"

	"github.com/catalytic/simulac/prng"
	"github.com/catalytic/simulac/reaction"
	"github.com/catalytic/simulac/species"
)

func newTestEngine() (*Engine, *reaction.Queue, *species.Registry) {
	reg := species.NewRegistry()
	q := reaction.NewQueue(prng.New(1))
	free := NewFreeList()
	eng := &Engine{Species: reg, Queue: q, Free: free, RateOfRibosomeMotion: 30}
	return eng, q, reg
}

func fireAll(t *testing.T, q *reaction.Queue) {
	t.Helper()
	for q.Len() > 0 {
		r, _, err := q.Select()
		if err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		if err := q.Execute(r); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		q.Drain()
	}
}

func TestSubmitBindRibosomeFiresWhenHeadClear(t *testing.T) {
	eng, q, reg := newTestEngine()
	reg.SetCount(species.Ribosome, 100)

	tr := &Transcript{GeneLength: 100, CurrentLength: 50, RibosomeBindingRate: 1.0}
	eng.Submit([]*Transcript{tr}, 1.0)

	if q.Len() == 0 {
		t.Fatal("expected a BindRibosome reaction to be submitted")
	}
	fireAll(t, q)

	if len(tr.Ribosomes) != 1 {
		t.Fatalf("Ribosomes = %d, want 1 after firing BindRibosome", len(tr.Ribosomes))
	}
	if reg.Count(species.Ribosome) != 99 {
		t.Fatalf("Ribosome count = %d, want 99", reg.Count(species.Ribosome))
	}
}

func TestSubmitSkipsShortTranscript(t *testing.T) {
	eng, q, reg := newTestEngine()
	reg.SetCount(species.Ribosome, 10)
	tr := &Transcript{GeneLength: 100, CurrentLength: 5, RibosomeBindingRate: 1.0}
	eng.Submit([]*Transcript{tr}, 1.0)
	if q.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 for a transcript shorter than the minimum translatable length", q.Len())
	}
}

func TestEatmRNAChewsRBS(t *testing.T) {
	eng, q, _ := newTestEngine()
	tr := &Transcript{GeneLength: 100, CurrentLength: 50, DegradationRate: 5.0}
	eng.Submit([]*Transcript{tr}, 1.0)
	fireAll(t, q)
	if tr.RBS != Chewed {
		t.Fatalf("RBS = %v, want Chewed", tr.RBS)
	}
}

func TestMoveRibosomeAdvancesPosition(t *testing.T) {
	eng, q, _ := newTestEngine()
	tr := &Transcript{GeneLength: 100, CurrentLength: 100, RBS: Chewed}
	rib := &Ribosome{Position: 5}
	tr.Ribosomes = []*Ribosome{rib}
	eng.Submit([]*Transcript{tr}, 1.0)
	fireAll(t, q)
	if rib.Position != 6 {
		t.Fatalf("Position = %d, want 6", rib.Position)
	}
}

func TestProduceNewProteinOnFreeTranscriptAtFullLength(t *testing.T) {
	eng, q, reg := newTestEngine()
	produced := reg.Add("Protein", 0)
	reg.SetCount(species.Ribosome, 0)

	tr := &Transcript{GeneLength: 30, CurrentLength: 30, RBS: Chewed, ProducedSpecies: produced}
	rib := &Ribosome{Position: 30}
	tr.Ribosomes = []*Ribosome{rib}
	eng.Submit([]*Transcript{tr}, 1.0)
	fireAll(t, q)

	if reg.Count(produced) != 1 {
		t.Fatalf("produced species count = %d, want 1", reg.Count(produced))
	}
	if reg.Count(species.Ribosome) != 1 {
		t.Fatalf("Ribosome count = %d, want 1 (returned by production)", reg.Count(species.Ribosome))
	}
	if len(tr.Ribosomes) != 0 {
		t.Fatalf("Ribosomes = %d, want 0 after production", len(tr.Ribosomes))
	}
}

func TestFreeListGarbageCollectsChewedEmptyTranscript(t *testing.T) {
	eng, q, _ := newTestEngine()
	free := eng.Free
	tr := &Transcript{GeneLength: 30, CurrentLength: 30, RBS: Chewed, Tethered: false}
	free.Add(tr)

	eng.Submit([]*Transcript{tr}, 1.0)
	if q.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 (a fully chewed, ribosome-free transcript submits nothing)", q.Len())
	}
	if free.Len() != 0 {
		t.Fatalf("free list length = %d, want 0 after garbage collection", free.Len())
	}
}
