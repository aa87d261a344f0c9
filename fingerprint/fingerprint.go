// Package fingerprint computes a deterministic content hash of an
// assembled model, so two runs built from the same outline and
// parameters (regardless of map/slice iteration order) can be checked
// for identity without diffing trace output. It is run bookkeeping, not
// part of the simulation core.
package fingerprint

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"lukechampine.com/blake3"

	"github.com/catalytic/simulac/dna"
	"github.com/catalytic/simulac/operator"
	"github.com/catalytic/simulac/species"
)

// Model is the minimal read of an assembled world needed to fingerprint
// it: species table, DNA chains and operator table. cellmodel.Cell and
// the reaction queue are runtime state, not model identity, so they are
// deliberately excluded.
type Model struct {
	Species   *species.Registry
	DNA       *dna.Engine
	Operators *operator.Table
}

// Of returns the hex-encoded blake3 hash of m's content. Species are
// hashed in registry order and DNA chains in Sequences order, so the
// hash depends on the order they were declared in; only each operator's
// configuration weights are sorted before hashing.
func Of(m Model) string {
	h := blake3.New(32, nil)
	fmt.Fprint(h, speciesBlock(m.Species))
	fmt.Fprint(h, chainsBlock(m.DNA))
	fmt.Fprint(h, operatorsBlock(m.Operators))
	return hex.EncodeToString(h.Sum(nil))
}

func speciesBlock(reg *species.Registry) string {
	if reg == nil {
		return "species:\n"
	}
	var b strings.Builder
	b.WriteString("species:\n")
	for i := 0; i < reg.Len(); i++ {
		fmt.Fprintf(&b, "%s=%d\n", reg.Name(i), reg.Count(i))
	}
	return b.String()
}

// chainsBlock hashes every DNA chain's segment structure. Each chain is
// walked head to tail and rendered as a line per segment; the chain
// order itself is left as Sequences order since that reflects outline
// declaration order, not something that should be canonicalized away.
func chainsBlock(eng *dna.Engine) string {
	var b strings.Builder
	b.WriteString("chains:\n")
	if eng == nil {
		return b.String()
	}
	for i, head := range eng.Sequences {
		fmt.Fprintf(&b, "chain%d:\n", i)
		for seg := head; seg != nil; seg = seg.Next {
			fmt.Fprintf(&b, "  %s len=%d dir=%s type=%d\n", seg.Name, seg.Length, seg.Direction, seg.Type)
		}
	}
	return b.String()
}

func operatorsBlock(t *operator.Table) string {
	var b strings.Builder
	b.WriteString("operators:\n")
	if t == nil {
		return b.String()
	}
	for i := 0; i < t.Len(); i++ {
		op := t.At(i)
		fmt.Fprintf(&b, "op%d:%s sites=%d\n", i, op.Name, op.NSites)
		weights := make([]string, len(op.Configs))
		for j, c := range op.Configs {
			weights[j] = fmt.Sprintf("%g", c.Weight)
		}
		sort.Strings(weights)
		fmt.Fprintf(&b, "  weights=%s\n", strings.Join(weights, ","))
	}
	return b.String()
}
