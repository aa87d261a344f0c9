// Package dna models DNA topology as a forest of segment chains and
// implements the RNAP polymerization engine: per-segment RNAP queues,
// single-step motion, footprint blocking, convergent-collision handling,
// segment-to-segment hand-off, antitermination, and transcript creation.
package dna

import (
	"fmt"

	"github.com/catalytic/simulac/translation"
)

// Direction is the absolute direction an RNAP travels, or the sense a
// segment's gene reads in.
type Direction int

const (
	Right Direction = iota
	Left
)

func (d Direction) String() string {
	if d == Right {
		return "Right"
	}
	return "Left"
}

// SegmentType discriminates a segment's exit-function payload.
type SegmentType int

const (
	Promoter SegmentType = iota
	Coding
	NonCoding
	Terminator
	AntiTerminator
)

// rnapFootprint is the minimum nucleotide gap two same-direction RNAPs on
// one segment must maintain (spec.md §3 RNAP invariant).
const rnapFootprint = 17

// PromoterPayload is a promoter segment's type-specific data: its
// transcription direction, the index of the Shea-Ackers operator table
// entry it shares, and the per-configuration isomerization rate vector.
type PromoterPayload struct {
	Direction Direction
	Operator  int
	IsoRate   []float64
}

// TerminatorPayload is a terminator segment's type-specific data.
type TerminatorPayload struct {
	AntiSpecies         int
	BaseFallOffRate     float64
	BasePassRate        float64
	AntiFallOffRate     float64
	AntiPassRate        float64
}

// AntiTerminatorPayload is an antiterminator segment's type-specific data.
type AntiTerminatorPayload struct {
	ModifierSpecies int
	UnboundPassRate float64
	BindingRate     float64
	BoundPassRate   float64
	UnbindingRate   float64
}

// CodingPayload is a coding (gene) segment's type-specific data.
type CodingPayload struct {
	ProducedSpecies     int
	DegradationRate     float64
	RibosomeBindingRate float64
}

// Segment is one node of a DNA sequence's doubly-linked chain.
type Segment struct {
	Name      string
	Length    int
	Direction Direction
	Type      SegmentType

	Prev, Next *Segment

	// RNAPs is this segment's RNAP queue, kept sorted ascending by
	// Position. Two same-direction RNAPs can never cross, so insertion
	// order is preserved by in-place position updates alone.
	RNAPs []*RNAP

	Promoter       *PromoterPayload
	Terminator     *TerminatorPayload
	AntiTerminator *AntiTerminatorPayload
	Coding         *CodingPayload
}

// RNAP is one RNA polymerase queued on a segment.
type RNAP struct {
	Direction  Direction
	Position   int
	Bound      []int // modifier species indices, for antitermination
	Transcript *translation.Transcript
	Segment    *Segment
}

func insertSorted(seg *Segment, r *RNAP) {
	i := 0
	for i < len(seg.RNAPs) && seg.RNAPs[i].Position < r.Position {
		i++
	}
	seg.RNAPs = append(seg.RNAPs, nil)
	copy(seg.RNAPs[i+1:], seg.RNAPs[i:])
	seg.RNAPs[i] = r
	r.Segment = seg
}

func removeFromQueue(seg *Segment, r *RNAP) {
	for i, cand := range seg.RNAPs {
		if cand == r {
			seg.RNAPs = append(seg.RNAPs[:i], seg.RNAPs[i+1:]...)
			return
		}
	}
}

// downstream returns the segment an RNAP moving in its current direction
// will next enter.
func downstream(seg *Segment, dir Direction) *Segment {
	if dir == Right {
		return seg.Next
	}
	return seg.Prev
}

// atEdge reports whether r sits at the last nucleotide of seg in its
// direction of travel, meaning the next tick must submit an exit action
// rather than plain motion.
func atEdge(seg *Segment, r *RNAP) bool {
	if r.Direction == Right {
		return r.Position >= seg.Length
	}
	return r.Position <= 1
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// errf constructs a fatal engine-inconsistency error (spec.md §7).
func errf(format string, args ...any) error {
	return fmt.Errorf("dna: "+format, args...)
}
