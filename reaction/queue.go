// Package reaction implements the Gillespie direct-method reaction queue:
// a per-tick list of candidate reactions, each carrying a propensity
// weight, that gets built up by Submit calls from every other engine
// package, sampled once by Select, fired by the caller, and emptied by
// Drain.
package reaction

import (
	"errors"
	"fmt"
	"math"

	"github.com/catalytic/simulac/prng"
)

// Kind discriminates the payload carried by a Reaction. The set mirrors
// ReactionManager.c's reaction-type enum.
type Kind int

const (
	Kinetic Kind = iota
	TransInit
	MoveRNAP
	DNAAction
	NextSegment
	EatmRNA
	MoveRibosome
	ProduceProtein
	ProduceNewProtein
	RNAPRNAP
	BindRibosome
	ChangeCellVolume
)

func (k Kind) String() string {
	switch k {
	case Kinetic:
		return "Kinetic"
	case TransInit:
		return "TransInit"
	case MoveRNAP:
		return "MoveRNAP"
	case DNAAction:
		return "DNAAction"
	case NextSegment:
		return "NextSegment"
	case EatmRNA:
		return "EatmRNA"
	case MoveRibosome:
		return "MoveRibosome"
	case ProduceProtein:
		return "ProduceProtein"
	case ProduceNewProtein:
		return "ProduceNewProtein"
	case RNAPRNAP:
		return "RNAPRNAP"
	case BindRibosome:
		return "BindRibosome"
	case ChangeCellVolume:
		return "ChangeCellVolume"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Reaction is one queued, about-to-fire event: spec.md's Reaction (queued)
// type. Payload is opaque to the queue; the package that submitted the
// reaction is the only one that knows how to interpret it, fire it, and
// release it.
type Reaction struct {
	Type        Kind
	Probability float64
	Payload     any

	// Fire executes the reaction's effect on the world. Set by the
	// submitting package; invoked by the caller of Queue.Execute.
	Fire func(payload any) error

	// ReleasePayload returns Payload to whatever pool it came from. Left
	// nil when Payload is a borrowed reference the queue must not
	// recycle (e.g. TransInit's payload is the promoter segment itself).
	ReleasePayload func()
}

// ErrInconsistentWeights is returned by Select when the cumulative sum of
// submitted probabilities drifts past tolerance of TotalProbability,
// meaning some reaction's weight was computed inconsistently with what it
// reported at submission time.
var ErrInconsistentWeights = errors.New("reaction: inconsistent probability sum")

// tiny floors the log-argument draw away from exactly zero, matching
// ReactionManager.c's guard against log(0).
const tiny = 1e-16

// Queue accumulates Reactions for one Gillespie tick.
type Queue struct {
	items            []*Reaction
	TotalProbability float64

	pool *Pool[Reaction]
	rng  *prng.Source
}

// NewQueue returns an empty Queue drawing its clock from rng.
func NewQueue(rng *prng.Source) *Queue {
	return &Queue{
		pool: NewPool[Reaction](256),
		rng:  rng,
	}
}

// Alloc returns a zero-valued *Reaction for the caller to populate and
// pass to Submit.
func (q *Queue) Alloc() *Reaction {
	return q.pool.Get()
}

// Submit adds r to the queue. A reaction with zero probability can never
// be selected, so Submit releases its payload immediately and returns the
// Reaction to the pool rather than carrying dead weight into Select.
func (q *Queue) Submit(r *Reaction) {
	if r.Probability <= 0 {
		if r.ReleasePayload != nil {
			r.ReleasePayload()
		}
		q.pool.Put(r)
		return
	}
	q.items = append(q.items, r)
	q.TotalProbability += r.Probability
}

// Len reports how many reactions are currently queued.
func (q *Queue) Len() int { return len(q.items) }

// Select draws the next reaction and its waiting time tau via Gillespie's
// direct method: tau from an exponential with rate TotalProbability, and
// the fired reaction from a roulette-wheel scan weighted by Probability.
//
// The scan below translates ReactionManager.c's SelectReaction loop
// literally, tie-break included: it returns the last reaction scanned,
// which is the one whose weight carries the cumulative sum up to the
// threshold. When the sum runs off the end of the list within 1e-6 of
// TotalProbability (a rounding artifact, not a real inconsistency), the
// last reaction scanned is the final one in the list, and it is returned.
func (q *Queue) Select() (*Reaction, float64, error) {
	n := len(q.items)
	if n == 0 {
		return nil, 0, errors.New("reaction: select called on an empty queue")
	}

	r1 := q.rng.Uniform01()
	r2 := q.rng.Uniform01() * q.TotalProbability

	arg := r1
	if arg <= tiny {
		arg = tiny
	}
	tau := -math.Log(arg) / q.TotalProbability

	idx := 0
	last := q.items[0]
	sum := last.Probability
	for sum < r2 {
		idx++
		if idx == n {
			if q.TotalProbability-sum < 1e-6 {
				break
			}
			return nil, 0, fmt.Errorf("reaction: select ran off the end of the queue (sum=%e total=%e)", sum, q.TotalProbability)
		}
		cur := q.items[idx]
		sum += cur.Probability
		if sum-q.TotalProbability > 1e-5 {
			return nil, 0, fmt.Errorf("%w: sum=%e total=%e", ErrInconsistentWeights, sum, q.TotalProbability)
		}
		last = cur
	}
	return last, tau, nil
}

// Execute fires r's effect.
func (q *Queue) Execute(r *Reaction) error {
	if r.Fire == nil {
		return fmt.Errorf("reaction: %s reaction has no Fire func", r.Type)
	}
	return r.Fire(r.Payload)
}

// Drain releases every queued reaction's payload and returns each
// Reaction to the pool, then empties the queue. Called once per tick
// after Execute, mirroring FreeReactionQueue's "free the whole list,
// selected reaction included" behavior — the executed reaction's own
// payload is released here too, since Execute only fires its effect, it
// never frees it.
func (q *Queue) Drain() {
	for _, r := range q.items {
		if r.ReleasePayload != nil {
			r.ReleasePayload()
		}
		q.pool.Put(r)
	}
	q.items = q.items[:0]
	q.TotalProbability = 0
}
