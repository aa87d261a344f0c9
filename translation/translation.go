// Package translation models messenger-RNA transcripts and the ribosome
// queues that translate them: ribosome binding, motion, blocking,
// protein production, RBS degradation, and free-transcript garbage
// collection.
package translation

// RBSState is a transcript's ribosome-binding-site state.
type RBSState int

const (
	Intact RBSState = iota
	Chewed
	AntiSensed
)

// ribosomeFootprint is the minimum nucleotide gap two queued ribosomes
// must maintain.
const ribosomeFootprint = 10

// rnapAbutmentGap is the minimum distance a ribosome must keep behind a
// still-elongating, tethered RNAP.
const rnapAbutmentGap = 5

// minTranslatableLength is the shortest transcript length the engine will
// act on at all (spec.md §4.4 step 2).
const minTranslatableLength = 20

// Ribosome is one ribosome queued on a transcript.
type Ribosome struct {
	Position int
	Bound    []int // reserved, currently unused by any mechanism
}

// Transcript is one messenger RNA, tethered to its producing RNAP while
// still being synthesized, then detached onto the free-transcript list.
type Transcript struct {
	GeneLength    int
	Antisense     bool
	Tethered      bool
	CurrentLength int
	RBS           RBSState

	// ProducedSpecies, DegradationRate and RibosomeBindingRate are
	// copied from the gene's coding payload at transcript-creation time,
	// since this package has no dependency on the dna package that owns
	// that payload.
	ProducedSpecies     int
	DegradationRate     float64
	RibosomeBindingRate float64

	// Ribosomes is this transcript's ribosome queue, kept sorted
	// ascending by Position (head = closest to the 5' end).
	Ribosomes []*Ribosome

	freeIndex int // index into FreeList.items while on the free list; Remove sets it to -1
}

func insertRibosomeSorted(t *Transcript, r *Ribosome) {
	i := 0
	for i < len(t.Ribosomes) && t.Ribosomes[i].Position < r.Position {
		i++
	}
	t.Ribosomes = append(t.Ribosomes, nil)
	copy(t.Ribosomes[i+1:], t.Ribosomes[i:])
	t.Ribosomes[i] = r
}

func removeRibosome(t *Transcript, r *Ribosome) {
	for i, cand := range t.Ribosomes {
		if cand == r {
			t.Ribosomes = append(t.Ribosomes[:i], t.Ribosomes[i+1:]...)
			return
		}
	}
}

// FreeList holds transcripts that have been detached from their
// producing RNAP, in no particular order; membership is what matters for
// the GC sweep, not sequence.
type FreeList struct {
	items []*Transcript
}

// NewFreeList returns an empty FreeList.
func NewFreeList() *FreeList { return &FreeList{} }

// Add places t on the free list.
func (f *FreeList) Add(t *Transcript) {
	t.freeIndex = len(f.items)
	f.items = append(f.items, t)
}

// Remove takes t off the free list (used when it is garbage collected).
func (f *FreeList) Remove(t *Transcript) {
	last := len(f.items) - 1
	idx := t.freeIndex
	f.items[idx] = f.items[last]
	f.items[idx].freeIndex = idx
	f.items = f.items[:last]
	t.freeIndex = -1
}

// Items returns a snapshot of every free transcript. Callers must not
// mutate the free list while iterating the returned slice and acting on
// it; Engine.Submit may remove transcripts from the list, so its caller
// (model.World) passes it a slice built from Items rather than the list
// itself.
func (f *FreeList) Items() []*Transcript {
	out := make([]*Transcript, len(f.items))
	copy(out, f.items)
	return out
}

// Len reports how many transcripts are on the free list.
func (f *FreeList) Len() int { return len(f.items) }
