package translation

import (
	"github.com/catalytic/simulac/reaction"
	"github.com/catalytic/simulac/species"
)

// Engine drives the per-tick ribosome sweep described in spec.md §4.4.
type Engine struct {
	Species *species.Registry
	Queue   *reaction.Queue
	Free    *FreeList

	RateOfRibosomeMotion float64
}

// Submit walks every transcript the caller considers live this tick —
// every RNAP-tethered coding transcript plus every transcript still on
// the free list — and submits this tick's translation reactions.
// volumeRatio is V0/V, used to volume-correct the bimolecular
// ribosome-binding propensity.
func (e *Engine) Submit(transcripts []*Transcript, volumeRatio float64) {
	for _, t := range transcripts {
		e.submitTranscript(t, volumeRatio)
	}
}

func (e *Engine) submitTranscript(t *Transcript, volumeRatio float64) {
	if t.Antisense {
		return
	}
	if t.CurrentLength < minTranslatableLength {
		return
	}

	if !t.Tethered {
		if t.RBS == Chewed && len(t.Ribosomes) == 0 {
			e.Free.Remove(t)
			return
		}
	}

	if t.RBS != Chewed {
		headClear := len(t.Ribosomes) == 0 || t.Ribosomes[0].Position > 14
		if headClear {
			e.submitBindRibosome(t, volumeRatio)
		}
		e.submitEatmRNA(t)
	}

	for i, r := range t.Ribosomes {
		if e.ribosomeBlocked(t, i) {
			continue
		}
		if t.Tethered {
			if r.Position >= t.CurrentLength-rnapAbutmentGap {
				continue
			}
			e.submitMoveRibosome(t, r)
			continue
		}
		if r.Position >= t.GeneLength {
			e.submitProduceNewProtein(t, r)
			continue
		}
		e.submitMoveRibosome(t, r)
	}
}

func (e *Engine) ribosomeBlocked(t *Transcript, i int) bool {
	if i+1 >= len(t.Ribosomes) {
		return false
	}
	return t.Ribosomes[i+1].Position-t.Ribosomes[i].Position < ribosomeFootprint
}

func (e *Engine) submitBindRibosome(t *Transcript, volumeRatio float64) {
	if t.RibosomeBindingRate <= 0 {
		return
	}
	rate := t.RibosomeBindingRate * float64(e.Species.Count(species.Ribosome)) * volumeRatio
	if rate <= 0 {
		return
	}
	r := e.Queue.Alloc()
	r.Type = reaction.BindRibosome
	r.Probability = rate
	r.Payload = t
	r.Fire = func(any) error {
		e.Species.AddCount(species.Ribosome, -1)
		rib := &Ribosome{Position: 1}
		insertRibosomeSorted(t, rib)
		return nil
	}
	e.Queue.Submit(r)
}

func (e *Engine) submitEatmRNA(t *Transcript) {
	if t.DegradationRate <= 0 {
		return
	}
	r := e.Queue.Alloc()
	r.Type = reaction.EatmRNA
	r.Probability = t.DegradationRate
	r.Payload = t
	r.Fire = func(any) error {
		t.RBS = Chewed
		return nil
	}
	e.Queue.Submit(r)
}

func (e *Engine) submitMoveRibosome(t *Transcript, rib *Ribosome) {
	if e.RateOfRibosomeMotion <= 0 {
		return
	}
	r := e.Queue.Alloc()
	r.Type = reaction.MoveRibosome
	r.Probability = e.RateOfRibosomeMotion
	r.Payload = rib
	r.Fire = func(any) error {
		rib.Position++
		return nil
	}
	e.Queue.Submit(r)
}

func (e *Engine) submitProduceNewProtein(t *Transcript, rib *Ribosome) {
	if e.RateOfRibosomeMotion <= 0 {
		return
	}
	r := e.Queue.Alloc()
	r.Type = reaction.ProduceNewProtein
	r.Probability = e.RateOfRibosomeMotion
	r.Payload = rib
	r.Fire = func(any) error {
		e.Species.AddCount(t.ProducedSpecies, 1)
		e.Species.AddCount(species.Ribosome, 1)
		removeRibosome(t, rib)
		for _, m := range rib.Bound {
			e.Species.AddCount(m, 1)
		}
		return nil
	}
	e.Queue.Submit(r)
}
