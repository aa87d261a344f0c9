// This file is the root package's only non-doc code: reading an outline
// file, dispatching each referenced mechanism file to the parser that
// understands it, and assembling the result into a runnable model.World.
package simulac

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/catalytic/simulac/cellmodel"
	"github.com/catalytic/simulac/dna"
	"github.com/catalytic/simulac/massaction"
	"github.com/catalytic/simulac/mechanism"
	"github.com/catalytic/simulac/mechanism/param"
	"github.com/catalytic/simulac/model"
	"github.com/catalytic/simulac/operator"
	"github.com/catalytic/simulac/prng"
	"github.com/catalytic/simulac/reaction"
	"github.com/catalytic/simulac/species"
	"github.com/catalytic/simulac/translation"
)

// debugLogger gates stage-by-stage stderr tracing during Build the way
// the original's `DEBUG(n)` macro (Util.h) gates its fprintf calls: a
// message registered at level n prints whenever n < DebugLevel, so
// raising DebugLevel reveals progressively finer detail.
type debugLogger struct {
	level  int
	logger *log.Logger
}

func newDebugLogger(level int) debugLogger {
	return debugLogger{level: level, logger: log.New(os.Stderr, "simulac: ", 0)}
}

func (d debugLogger) Logf(level int, format string, args ...any) {
	if level >= d.level {
		return
	}
	d.logger.Printf(format, args...)
}

// Options configures Build beyond what the outline file itself declares.
type Options struct {
	// Seed drives every random draw in the model (Gillespie clock,
	// Shea-Ackers roulette, division partitioning). Two Builds with the
	// same outline, params and seed reproduce bit-for-bit identical runs.
	Seed int64

	// Params are the outline's "-P name=val" generic substitutions and
	// the per-reaction/per-species overrides (spec.md §6).
	Params param.Set

	// VolumeMultiplier and GrowthRateMultiplier scale the Cell
	// mechanism file's VI/V0 and GrowthRate respectively, letting a
	// caller explore a parameter sweep without editing the mechanism
	// file itself.
	VolumeMultiplier     float64
	GrowthRateMultiplier float64
	SingleCell           bool

	// DebugLevel gates stage-by-stage stderr tracing of Build itself
	// (which mechanism file is being parsed, what it resolved to), the
	// Go equivalent of the original's `DEBUG(n)` macro (Util.h). 0
	// disables tracing entirely; cmd/simulac exposes it as -v/--debug.
	DebugLevel int
}

// dirResolver opens mechanism files relative to the outline file's own
// directory, so a mechanism outline can be invoked from anywhere.
type dirResolver struct {
	base string
}

func (d dirResolver) open(name string) (io.Reader, error) {
	b, err := os.ReadFile(filepath.Join(d.base, name))
	if err != nil {
		return nil, fmt.Errorf("simulac: opening %q: %w", name, err)
	}
	return bytes.NewReader(b), nil
}

// Build reads the outline file at outlinePath, dispatches every
// referenced mechanism file to the parser that understands its declared
// Type, and assembles the result into a ready-to-run model.World.
func Build(outlinePath string, opts Options) (*model.World, error) {
	outlineBytes, err := os.ReadFile(outlinePath)
	if err != nil {
		return nil, fmt.Errorf("simulac: reading outline: %w", err)
	}
	paths, err := mechanism.ParseOutline(bytes.NewReader(outlineBytes))
	if err != nil {
		return nil, err
	}

	dbg := newDebugLogger(opts.DebugLevel)
	dbg.Logf(4, "parsed outline %q: %d mechanism file(s)", outlinePath, len(paths))

	dir := dirResolver{base: filepath.Dir(outlinePath)}
	params := opts.Params
	if params == nil {
		params = param.Set{}
	}

	reg := species.NewRegistry()
	rng := prng.New(opts.Seed)
	queue := reaction.NewQueue(rng)
	operators := operator.NewTable()
	free := translation.NewFreeList()

	var cell *cellmodel.Cell
	var kinetic *massaction.Table
	var dnaOutline mechanism.DNAOutline
	var rnapRate, ribosomeRate float64
	haveCell, haveDNA := false, false

	for _, name := range paths {
		raw, err := dir.open(name)
		if err != nil {
			return nil, err
		}
		buf, err := io.ReadAll(raw)
		if err != nil {
			return nil, fmt.Errorf("simulac: reading %q: %w", name, err)
		}

		typ, err := mechanism.DetectType(bytes.NewReader(buf))
		if err != nil {
			return nil, fmt.Errorf("simulac: %q: %w", name, err)
		}
		dbg.Logf(4, "parsing %q (Type= %v)", name, typ)

		switch typ {
		case mechanism.CellType:
			c, err := mechanism.ParseCell(bytes.NewReader(buf), params)
			if err != nil {
				return nil, fmt.Errorf("simulac: %q: %w", name, err)
			}
			cell = c
			haveCell = true

		case mechanism.KineticType:
			k, err := mechanism.ParseKinetic(bytes.NewReader(buf), reg, params)
			if err != nil {
				return nil, fmt.Errorf("simulac: %q: %w", name, err)
			}
			kinetic = k

		case mechanism.DNAType:
			openParam := func(paramFile string) (io.Reader, error) { return dir.open(paramFile) }
			d, err := mechanism.ParseDNAOutline(bytes.NewReader(buf), reg, operators, params, openParam)
			if err != nil {
				return nil, fmt.Errorf("simulac: %q: %w", name, err)
			}
			dnaOutline = d
			haveDNA = true

		case mechanism.RNAPType:
			cfg, err := mechanism.ParseRNAPPool(bytes.NewReader(buf), reg, params)
			if err != nil {
				return nil, fmt.Errorf("simulac: %q: %w", name, err)
			}
			rnapRate = cfg.Rate

		case mechanism.RibosomeType:
			cfg, err := mechanism.ParseRibosomePool(bytes.NewReader(buf), reg, params)
			if err != nil {
				return nil, fmt.Errorf("simulac: %q: %w", name, err)
			}
			ribosomeRate = cfg.Rate

		default:
			return nil, fmt.Errorf("simulac: %q: unhandled mechanism Type", name)
		}
	}

	if !haveCell {
		return nil, fmt.Errorf("simulac: outline has no Cell mechanism file")
	}
	if kinetic == nil {
		kinetic = massaction.NewTable()
	}
	if !haveDNA {
		dnaOutline = mechanism.DNAOutline{}
	}

	if opts.VolumeMultiplier > 0 {
		cell.VI *= opts.VolumeMultiplier
		cell.V0 *= opts.VolumeMultiplier
		cell.V = cell.VI
	}
	if opts.GrowthRateMultiplier > 0 {
		cell.GrowthRate *= opts.GrowthRateMultiplier
	}
	cell.SingleCell = opts.SingleCell

	dnaEngine := &dna.Engine{
		Species:                    reg,
		Operators:                  operators,
		Queue:                      queue,
		Free:                       free,
		Sequences:                  dnaOutline.Chains,
		RateOfPolymeraseMotion:     rnapRate,
		RateOfRNAPCollisionFailure: dnaOutline.RateOfRNAPCollisionFailure,
		AllowConvergentEscape:      dnaOutline.AllowConvergentEscape,
	}
	translationEngine := &translation.Engine{
		Species:              reg,
		Queue:                queue,
		Free:                 free,
		RateOfRibosomeMotion: ribosomeRate,
	}

	dbg.Logf(2, "assembled world: %d DNA chain(s), %d operator(s), cell V0=%g", len(dnaOutline.Chains), operators.Len(), cell.V0)

	return &model.World{
		Species:     reg,
		Operators:   operators,
		DNA:         dnaEngine,
		Translation: translationEngine,
		MassAction:  kinetic,
		Cell:        cell,
		Queue:       queue,
		RNG:         rng,
	}, nil
}
