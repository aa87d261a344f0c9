// Package species holds the dynamic molecule-count registry shared by every
// other engine package: a name-indexed list of chemical species and their
// current integer counts.
//
// Indices 0 and 1 are reserved for RNAP and Ribosome, mirroring the two
// globals the original C engine always pre-declared before any mechanism
// file was parsed (NSpecies starts at 2, SpeciesName[0]="RNAP",
// SpeciesName[1]="Ribosome").
package species

import "fmt"

// Reserved indices for the two species every model starts with.
const (
	RNAP     = 0
	Ribosome = 1
)

// Registry is the append-only set of named species and their live counts.
type Registry struct {
	names  []string
	index  map[string]int
	counts []int
}

// NewRegistry returns a Registry pre-populated with RNAP and Ribosome.
func NewRegistry() *Registry {
	r := &Registry{
		names:  []string{"RNAP", "Ribosome"},
		index:  map[string]int{"RNAP": RNAP, "Ribosome": Ribosome},
		counts: []int{0, 0},
	}
	return r
}

// Add registers a new species with an initial count, returning its index.
// If the name already exists, its initial count is overwritten and the
// existing index is returned.
func (r *Registry) Add(name string, initial int) int {
	if i, ok := r.index[name]; ok {
		r.counts[i] = initial
		return i
	}
	i := len(r.names)
	r.names = append(r.names, name)
	r.index[name] = i
	r.counts = append(r.counts, initial)
	return i
}

// Index returns a species' index and whether it is registered.
func (r *Registry) Index(name string) (int, bool) {
	i, ok := r.index[name]
	return i, ok
}

// Name returns the name of species i.
func (r *Registry) Name(i int) string { return r.names[i] }

// Len returns the number of registered species.
func (r *Registry) Len() int { return len(r.names) }

// Count returns the current count of species i.
func (r *Registry) Count(i int) int { return r.counts[i] }

// Counts returns the live backing slice of every species count, in
// registry order. Callers that need a snapshot must copy it.
func (r *Registry) Counts() []int { return r.counts }

// Add delta to species i's count.
func (r *Registry) AddCount(i, delta int) { r.counts[i] += delta }

// Set species i's count outright (used by cell division's binomial
// partition).
func (r *Registry) SetCount(i, n int) { r.counts[i] = n }

// CheckNonNegative verifies the invariant that every species count is >= 0
// (spec.md §8 invariant 1). The engine does not call it itself; it is an
// on-demand check for callers.
func (r *Registry) CheckNonNegative() error {
	for i, n := range r.counts {
		if n < 0 {
			return fmt.Errorf("species %q (index %d) has negative count %d", r.names[i], i, n)
		}
	}
	return nil
}
