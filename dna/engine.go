package dna

import (
	"github.com/catalytic/simulac/operator"
	"github.com/catalytic/simulac/reaction"
	"github.com/catalytic/simulac/species"
	"github.com/catalytic/simulac/translation"
)

// Engine owns the DNA forest and drives the per-tick RNAP sweep described
// in spec.md §4.3.
type Engine struct {
	Species   *species.Registry
	Operators *operator.Table
	Queue     *reaction.Queue
	Free      *translation.FreeList

	// Sequences holds the head segment of every top-level DNA chain
	// (one per parsed DNA mechanism copy).
	Sequences []*Segment

	RateOfPolymeraseMotion    float64
	RateOfRNAPCollisionFailure float64

	// AllowConvergentEscape toggles the "escape" path that the original
	// engine left permanently disabled (spec.md §9 open question 3):
	// when false (the default), two converging RNAPs within footprint
	// range always both fall off. No escape reaction is implemented:
	// when true, the collision reaction returns an error as soon as it
	// fires instead of releasing either polymerase.
	AllowConvergentEscape bool

	// promoterInitiations counts transcription-initiation events per
	// promoter segment, for the optional promoter-RNAP-counters trace
	// column (spec.md §6 invocation flag "promoter-RNAP counters flag").
	promoterInitiations map[*Segment]int
}

// PromoterInitiationCounts returns, for every promoter segment across
// every sequence, the number of TransInit reactions executed against it
// so far, in sequence/segment-chain order.
func (e *Engine) PromoterInitiationCounts() []int {
	var out []int
	for _, head := range e.Sequences {
		for seg := head; seg != nil; seg = seg.Next {
			if seg.Type == Promoter {
				out = append(out, e.promoterInitiations[seg])
			}
		}
	}
	return out
}

// TetheredTranscripts collects every transcript still attached to its
// producing RNAP, across every segment of every sequence. The model
// package merges this with the translation engine's free list to build
// the full set of transcripts the translation sweep considers live.
func (e *Engine) TetheredTranscripts() []*translation.Transcript {
	var out []*translation.Transcript
	for _, head := range e.Sequences {
		for seg := head; seg != nil; seg = seg.Next {
			if seg.Type != Coding {
				continue
			}
			for _, r := range seg.RNAPs {
				if r.Transcript != nil {
					out = append(out, r.Transcript)
				}
			}
		}
	}
	return out
}

// Submit walks every segment of every sequence and submits this tick's
// DNA/RNAP-driven reactions.
func (e *Engine) Submit() error {
	for _, head := range e.Sequences {
		for seg := head; seg != nil; seg = seg.Next {
			if seg.Type == Promoter {
				if err := e.submitTransInit(seg); err != nil {
					return err
				}
			}
			if err := e.submitSegment(seg); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) submitTransInit(seg *Segment) error {
	p := seg.Promoter
	op := e.Operators.At(p.Operator)
	rate := p.IsoRate[op.CurrentState]
	if rate <= 0 {
		return nil
	}
	next := downstream(seg, p.Direction)
	if next == nil {
		return nil
	}
	if blockedAtEntry(next, p.Direction) {
		return nil
	}

	r := e.Queue.Alloc()
	r.Type = reaction.TransInit
	r.Probability = rate
	r.Payload = seg
	r.Fire = func(any) error { return e.fireTransInit(seg) }
	e.Queue.Submit(r)
	return nil
}

// blockedAtEntry reports whether a new RNAP entering seg in dir would
// start within footprint range of an existing same-direction RNAP.
func blockedAtEntry(seg *Segment, dir Direction) bool {
	entry := 1
	if dir == Left {
		entry = seg.Length
	}
	for _, r := range seg.RNAPs {
		if r.Direction == dir && abs(r.Position-entry) < rnapFootprint {
			return true
		}
	}
	return false
}

func (e *Engine) fireTransInit(promoter *Segment) error {
	if e.promoterInitiations == nil {
		e.promoterInitiations = make(map[*Segment]int)
	}
	e.promoterInitiations[promoter]++

	p := promoter.Promoter
	next := downstream(promoter, p.Direction)
	if next == nil {
		return errf("transcription initiation on %q has no downstream segment", promoter.Name)
	}
	e.Species.AddCount(species.RNAP, -1)

	rnap := &RNAP{Direction: p.Direction}
	if p.Direction == Right {
		rnap.Position = 0
	} else {
		rnap.Position = next.Length + 1
	}
	insertSorted(next, rnap)
	e.executeMoveRNAP(rnap)

	op := e.Operators.At(p.Operator)
	return op.TransitionMinusOne(e.Species, species.RNAP)
}

func (e *Engine) submitSegment(seg *Segment) error {
	collided := make(map[*RNAP]bool, len(seg.RNAPs))
	for i := 0; i+1 < len(seg.RNAPs); i++ {
		a, b := seg.RNAPs[i], seg.RNAPs[i+1]
		if a.Direction == b.Direction {
			continue
		}
		if abs(b.Position-a.Position) >= rnapFootprint {
			continue
		}
		if err := e.submitCollision(seg, a, b); err != nil {
			return err
		}
		collided[a] = true
		collided[b] = true
	}

	for i, r := range seg.RNAPs {
		if collided[r] {
			continue
		}
		if atEdge(seg, r) {
			if err := e.submitExit(seg, r); err != nil {
				return err
			}
			continue
		}
		if blockedAhead(seg.RNAPs, i, r.Direction) {
			continue
		}
		e.submitMotion(seg, r)
	}
	return nil
}

func blockedAhead(rnaps []*RNAP, i int, dir Direction) bool {
	var neighbor *RNAP
	if dir == Right && i+1 < len(rnaps) {
		neighbor = rnaps[i+1]
	} else if dir == Left && i > 0 {
		neighbor = rnaps[i-1]
	}
	if neighbor == nil || neighbor.Direction != dir {
		return false
	}
	return abs(neighbor.Position-rnaps[i].Position) < rnapFootprint
}

func (e *Engine) submitMotion(seg *Segment, r *RNAP) {
	if e.RateOfPolymeraseMotion <= 0 {
		return
	}
	react := e.Queue.Alloc()
	react.Type = reaction.MoveRNAP
	react.Probability = e.RateOfPolymeraseMotion
	react.Payload = r
	react.Fire = func(any) error {
		e.executeMoveRNAP(r)
		return nil
	}
	e.Queue.Submit(react)
}

func (e *Engine) submitCollision(seg *Segment, a, b *RNAP) error {
	if e.RateOfRNAPCollisionFailure <= 0 {
		return nil
	}
	react := e.Queue.Alloc()
	react.Type = reaction.RNAPRNAP
	react.Probability = e.RateOfRNAPCollisionFailure
	react.Payload = [2]*RNAP{a, b}
	react.Fire = func(any) error {
		// The escape path is disabled by default (spec.md §9 open
		// question 3): both polymerases fall off on every convergent
		// close approach.
		if e.AllowConvergentEscape {
			return errf("convergent escape path requested but not implemented")
		}
		e.releaseRNAP(a)
		e.releaseRNAP(b)
		return nil
	}
	e.Queue.Submit(react)
	return nil
}

func (e *Engine) submitExit(seg *Segment, r *RNAP) error {
	switch seg.Type {
	case Coding:
		return e.submitCodingExit(seg, r)
	case NonCoding:
		e.submitNextSegment(seg, r)
		return nil
	case Terminator:
		return e.submitTerminatorExit(seg, r)
	case AntiTerminator:
		return e.submitAntiTerminatorExit(seg, r)
	default:
		return errf("segment %q of type %d has no exit behavior", seg.Name, seg.Type)
	}
}

func (e *Engine) submitCodingExit(seg *Segment, r *RNAP) error {
	react := e.Queue.Alloc()
	react.Type = reaction.NextSegment
	react.Probability = e.RateOfPolymeraseMotion
	react.Payload = r
	react.Fire = func(any) error {
		t := r.Transcript
		if t == nil {
			return errf("RNAP reached the end of coding segment %q with no tethered transcript", seg.Name)
		}
		t.Tethered = false
		r.Transcript = nil
		e.Free.Add(t)
		return e.executeNextSegment(seg, r)
	}
	e.Queue.Submit(react)
	return nil
}

func (e *Engine) submitNextSegment(seg *Segment, r *RNAP) {
	if e.RateOfPolymeraseMotion <= 0 {
		return
	}
	react := e.Queue.Alloc()
	react.Type = reaction.NextSegment
	react.Probability = e.RateOfPolymeraseMotion
	react.Payload = r
	react.Fire = func(any) error { return e.executeNextSegment(seg, r) }
	e.Queue.Submit(react)
}

func (e *Engine) submitTerminatorExit(seg *Segment, r *RNAP) error {
	term := seg.Terminator
	if r.Direction != seg.Direction {
		e.submitNextSegment(seg, r)
		return nil
	}
	antiterminated := hasModifier(r.Bound, term.AntiSpecies)

	fallOffRate, passRate := term.BaseFallOffRate, term.BasePassRate
	if antiterminated {
		fallOffRate, passRate = term.AntiFallOffRate, term.AntiPassRate
	}

	if fallOffRate > 0 {
		react := e.Queue.Alloc()
		react.Type = reaction.DNAAction
		react.Probability = fallOffRate
		react.Payload = r
		react.Fire = func(any) error {
			e.releaseRNAP(r)
			return nil
		}
		e.Queue.Submit(react)
	}
	if passRate > 0 {
		react := e.Queue.Alloc()
		react.Type = reaction.DNAAction
		react.Probability = passRate
		react.Payload = r
		react.Fire = func(any) error { return e.executeNextSegment(seg, r) }
		e.Queue.Submit(react)
	}
	return nil
}

func (e *Engine) submitAntiTerminatorExit(seg *Segment, r *RNAP) error {
	at := seg.AntiTerminator
	if r.Direction != seg.Direction {
		e.submitNextSegment(seg, r)
		return nil
	}
	bound := hasModifier(r.Bound, at.ModifierSpecies)

	if !bound {
		if at.UnboundPassRate > 0 {
			react := e.Queue.Alloc()
			react.Type = reaction.DNAAction
			react.Probability = at.UnboundPassRate
			react.Payload = r
			react.Fire = func(any) error { return e.executeNextSegment(seg, r) }
			e.Queue.Submit(react)
		}
		if at.BindingRate > 0 {
			react := e.Queue.Alloc()
			react.Type = reaction.DNAAction
			react.Probability = at.BindingRate
			react.Payload = r
			react.Fire = func(any) error { return e.bindModifier(r, at.ModifierSpecies) }
			e.Queue.Submit(react)
		}
		return nil
	}

	if at.BoundPassRate > 0 {
		react := e.Queue.Alloc()
		react.Type = reaction.DNAAction
		react.Probability = at.BoundPassRate
		react.Payload = r
		react.Fire = func(any) error { return e.executeNextSegment(seg, r) }
		e.Queue.Submit(react)
	}
	if at.UnbindingRate > 0 {
		react := e.Queue.Alloc()
		react.Type = reaction.DNAAction
		react.Probability = at.UnbindingRate
		react.Payload = r
		react.Fire = func(any) error { return e.unbindModifier(r, at.ModifierSpecies) }
		e.Queue.Submit(react)
	}
	return nil
}

func hasModifier(bound []int, species int) bool {
	for _, b := range bound {
		if b == species {
			return true
		}
	}
	return false
}

func (e *Engine) bindModifier(r *RNAP, modifier int) error {
	if hasModifier(r.Bound, modifier) {
		return errf("RNAP already bound to modifier species %d", modifier)
	}
	e.Species.AddCount(modifier, -1)
	r.Bound = append(r.Bound, modifier)
	return nil
}

func (e *Engine) unbindModifier(r *RNAP, modifier int) error {
	for i, b := range r.Bound {
		if b == modifier {
			r.Bound = append(r.Bound[:i], r.Bound[i+1:]...)
			e.Species.AddCount(modifier, 1)
			return nil
		}
	}
	return errf("RNAP is not bound to modifier species %d, cannot unbind", modifier)
}

// executeMoveRNAP advances r by one nucleotide and, on a coding segment,
// lazily creates or extends its tethered transcript (spec.md §4.3).
func (e *Engine) executeMoveRNAP(r *RNAP) {
	if r.Direction == Right {
		r.Position++
	} else {
		r.Position--
	}
	seg := r.Segment
	if seg.Type != Coding {
		return
	}
	if r.Transcript == nil {
		r.Transcript = &translation.Transcript{
			GeneLength:          seg.Length,
			Antisense:           r.Direction != seg.Direction,
			Tethered:            true,
			CurrentLength:       2,
			ProducedSpecies:     seg.Coding.ProducedSpecies,
			DegradationRate:     seg.Coding.DegradationRate,
			RibosomeBindingRate: seg.Coding.RibosomeBindingRate,
		}
		return
	}
	r.Transcript.CurrentLength++
}

// executeNextSegment splices r from seg's queue onto the next segment in
// its direction of travel, or releases it if the chain has ended.
func (e *Engine) executeNextSegment(seg *Segment, r *RNAP) error {
	removeFromQueue(seg, r)
	next := downstream(seg, r.Direction)
	if next == nil {
		if r.Transcript != nil {
			return errf("RNAP at end of chain past %q still carries a tethered transcript", seg.Name)
		}
		e.Species.AddCount(species.RNAP, 1)
		for _, m := range r.Bound {
			e.Species.AddCount(m, 1)
		}
		return nil
	}
	if r.Direction == Right {
		r.Position = 1
	} else {
		r.Position = next.Length
	}
	insertSorted(next, r)
	return nil
}

// releaseRNAP removes r from its segment queue and returns it, any bound
// modifiers, and any tethered transcript's resources to the free pools.
// Used for fall-off and convergent-collision cleanup.
func (e *Engine) releaseRNAP(r *RNAP) {
	removeFromQueue(r.Segment, r)
	e.Species.AddCount(species.RNAP, 1)
	for _, m := range r.Bound {
		e.Species.AddCount(m, 1)
	}
	if r.Transcript != nil {
		e.destroyTranscript(r.Transcript)
		r.Transcript = nil
	}
}

func (e *Engine) destroyTranscript(t *translation.Transcript) {
	for _, rib := range t.Ribosomes {
		e.Species.AddCount(species.Ribosome, 1)
		for _, m := range rib.Bound {
			e.Species.AddCount(m, 1)
		}
	}
	t.Ribosomes = nil
}
