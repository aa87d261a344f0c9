package reaction

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/catalytic/simulac/prng"
)

func TestSubmitRejectsZeroWeight(t *testing.T) {
	q := NewQueue(prng.New(1))
	released := false
	r := q.Alloc()
	r.Type = Kinetic
	r.Probability = 0
	r.ReleasePayload = func() { released = true }
	q.Submit(r)

	if q.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 after submitting a zero-weight reaction", q.Len())
	}
	if !released {
		t.Fatal("zero-weight reaction's payload was never released")
	}
}

func TestSelectPicksFromQueue(t *testing.T) {
	q := NewQueue(prng.New(42))
	var fired []string
	for _, name := range []string{"a", "b", "c"} {
		name := name
		r := q.Alloc()
		r.Type = Kinetic
		r.Probability = 1.0
		r.Fire = func(payload any) error {
			fired = append(fired, name)
			return nil
		}
		r.Payload = name
		q.Submit(r)
	}

	r, tau, err := q.Select()
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if tau <= 0 {
		t.Fatalf("Select() tau = %v, want > 0", tau)
	}
	if err := q.Execute(r); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(fired) != 1 {
		t.Fatalf("fired = %v, want exactly one reaction to fire", fired)
	}
	q.Drain()
	if q.Len() != 0 {
		t.Fatalf("Len() = %d after Drain, want 0", q.Len())
	}
}

func TestSelectEmptyQueueErrors(t *testing.T) {
	q := NewQueue(prng.New(1))
	if _, _, err := q.Select(); err == nil {
		t.Fatal("Select() on an empty queue returned no error")
	}
}

func TestDrainReleasesAllPayloads(t *testing.T) {
	q := NewQueue(prng.New(7))
	count := 0
	for i := 0; i < 5; i++ {
		r := q.Alloc()
		r.Type = MoveRNAP
		r.Probability = 2.5
		r.Fire = func(payload any) error { return nil }
		r.ReleasePayload = func() { count++ }
		q.Submit(r)
	}
	r, _, err := q.Select()
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if err := q.Execute(r); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	q.Drain()
	if count != 5 {
		t.Fatalf("released %d payloads, want 5 (the executed reaction's payload must be released by Drain too)", count)
	}
}

// TestTotalProbabilityTracksSubmittedWeights checks spec.md §8's
// queue-level invariant directly: TotalProbability must equal the sum
// of every currently-queued reaction's Probability, through several
// rounds of submit and drain.
func TestTotalProbabilityTracksSubmittedWeights(t *testing.T) {
	q := NewQueue(prng.New(3))
	weights := []float64{1.5, 2.25, 0.75, 4.0}
	var want float64
	for _, w := range weights {
		r := q.Alloc()
		r.Type = Kinetic
		r.Probability = w
		r.Fire = func(any) error { return nil }
		q.Submit(r)
		want += w
	}
	require.Equal(t, len(weights), q.Len())
	require.InDelta(t, want, q.TotalProbability, 1e-12)

	r, _, err := q.Select()
	require.NoError(t, err)
	require.NoError(t, q.Execute(r))
	q.Drain()
	require.Equal(t, 0, q.Len())
	require.Zero(t, q.TotalProbability)
}

// TestSelectSingleReactionAlwaysWins verifies that with exactly one
// reaction queued, Select always returns it regardless of the random
// draw: sum starts at that reaction's own probability, which can never
// be less than r2 since r2's maximum is TotalProbability itself.
func TestSelectSingleReactionAlwaysWins(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		q := NewQueue(prng.New(seed))
		r := q.Alloc()
		r.Type = Kinetic
		r.Probability = 3.0
		r.Fire = func(payload any) error { return nil }
		q.Submit(r)

		got, tau, err := q.Select()
		if err != nil {
			t.Fatalf("seed %d: Select() error = %v", seed, err)
		}
		if got != r {
			t.Fatalf("seed %d: Select() returned a different reaction", seed)
		}
		if tau <= 0 {
			t.Fatalf("seed %d: Select() tau = %v, want > 0", seed, tau)
		}
	}
}
