// Package rbsrate estimates a ribosome binding site's binding rate from
// its nucleotide sequence. It is a lightweight, Shine-Dalgarno-strength
// stand-in for a full thermodynamic RBS calculator: a mechanism file
// author who only knows a candidate RBS sequence, not its measured
// binding rate, can get a plausible rate out of it instead of having to
// pick one by hand.
package rbsrate

import (
	"fmt"
	"math/rand"
	"strings"
)

// antiShineDalgarno is the 3' end of the E. coli 16S rRNA, the sequence
// an RBS must be complementary to for efficient ribosome recruitment.
const antiShineDalgarno = "ACCTCCTTA"

// baseRate is the binding rate (s^-1, volume-corrected like any other
// bimolecular rate in this engine) assigned to an RBS with zero
// complementary base pairs to the anti-Shine-Dalgarno sequence.
const baseRate = 0.01

// perMatchMultiplier scales the rate up for every additional
// complementary base found in the best alignment window.
const perMatchMultiplier = 1.8

// Estimate scores seq's best ungapped alignment against the
// anti-Shine-Dalgarno sequence and returns a binding rate that grows
// exponentially with the match count, the way real Shine-Dalgarno
// binding free energy scales with base-pairing.
func Estimate(seq string) (float64, error) {
	seq = strings.ToUpper(seq)
	if len(seq) == 0 {
		return 0, fmt.Errorf("rbsrate: empty sequence")
	}
	if !isACGT(seq) {
		return 0, fmt.Errorf("rbsrate: %q is not a DNA sequence", seq)
	}

	best := bestComplementaryRun(seq)
	return baseRate * pow(perMatchMultiplier, best), nil
}

// isACGT reports whether every base in seq is one of the four DNA
// letters; an RBS record carrying an IUPAC ambiguity code or an RNA
// base is rejected rather than guessed at.
func isACGT(seq string) bool {
	for _, base := range seq {
		switch base {
		case 'A', 'C', 'G', 'T':
		default:
			return false
		}
	}
	return true
}

// bestComplementaryRun slides the anti-Shine-Dalgarno sequence across
// seq and returns the highest number of complementary base pairs found
// at any offset.
func bestComplementaryRun(seq string) int {
	best := 0
	asd := antiShineDalgarno
	for offset := -len(asd) + 1; offset < len(seq); offset++ {
		matches := 0
		for i := 0; i < len(asd); i++ {
			j := offset + i
			if j < 0 || j >= len(seq) {
				continue
			}
			if complementary(seq[j], asd[i]) {
				matches++
			}
		}
		if matches > best {
			best = matches
		}
	}
	return best
}

// baseComplement holds the four canonical Watson-Crick pairs. RBS
// sequences are plain ACGT, so there are no IUPAC ambiguity codes left
// to carry a full complement table for here.
var baseComplement = map[byte]byte{'A': 'T', 'C': 'G', 'G': 'C', 'T': 'A'}

func complementary(a, b byte) bool {
	return baseComplement[a] == b
}

func pow(base float64, exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

// Synthetic generates a random candidate RBS sequence of the given
// length, for mechanism authors who want a placeholder rate before they
// have chosen a real sequence. It seeds its own math/rand.Rand rather
// than the process-global generator, so a placeholder draw never
// perturbs the Gillespie clock's determinism.
func Synthetic(length int, seed int64) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("rbsrate: length must be positive, got %d", length)
	}
	const alphabet = "ACGT"
	rng := rand.New(rand.NewSource(seed))
	seq := make([]byte, length)
	for i := range seq {
		seq[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return string(seq), nil
}
