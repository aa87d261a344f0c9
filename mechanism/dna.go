package mechanism

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/catalytic/simulac/dna"
	"github.com/catalytic/simulac/mechanism/param"
	"github.com/catalytic/simulac/operator"
	"github.com/catalytic/simulac/rbsrate"
	"github.com/catalytic/simulac/species"
)

// SegmentSource is a single named-segment line from a DNA mechanism file,
// plus its already-opened parameter file.
type SegmentSource struct {
	Name      string
	Length    int
	Direction dna.Direction
	Type      dna.SegmentType
	Params    io.Reader
}

// DNAOutline is a parsed DNA mechanism file: one linked Segment chain
// per MOI copy, plus the two collision-handling rates that apply
// engine-wide rather than per segment.
type DNAOutline struct {
	Chains []*dna.Segment

	// RateOfRNAPCollisionFailure is the per-tick rate at which two
	// converging RNAPs within footprint range fall off (spec.md's RNAP
	// collision semantics); it defaults to 0 (no separate collision
	// reaction; see AllowConvergentEscape's default in dna.Engine) if
	// the file omits it.
	RateOfRNAPCollisionFailure float64
	// AllowConvergentEscape mirrors dna.Engine.AllowConvergentEscape;
	// false unless the file opts in explicitly.
	AllowConvergentEscape bool
}

// ParseDNAOutline parses a DNA mechanism file's chain declaration and
// per-segment lines (not the parameter files themselves, which the
// caller supplies pre-opened through openParam). It returns one fully
// linked Segment chain per MOI copy.
//
// openParam resolves a referenced parameter-file name to a reader; the
// caller owns file-opening so this package has no direct filesystem
// dependency.
func ParseDNAOutline(r io.Reader, reg *species.Registry, operators *operator.Table, params param.Set, openParam func(name string) (io.Reader, error)) (DNAOutline, error) {
	sc := bufio.NewScanner(r)
	if typ, err := peekType(sc); err != nil {
		return DNAOutline{}, err
	} else if typ != DNAType {
		return DNAOutline{}, fmt.Errorf("mechanism: expected Type=DNA")
	}

	var chain []string
	moi := 1
	segByName := map[string]*dna.Segment{}
	var order []*dna.Segment
	var out DNAOutline

	for sc.Scan() {
		line, err := substitute(sc.Text(), params)
		if err != nil {
			return DNAOutline{}, err
		}
		line = stripComment(line)
		if line == "" {
			continue
		}

		if chain == nil && strings.Contains(line, "-->") {
			chain = parseChainLine(line)
			continue
		}

		if key, val, ok := keyValue(line); ok {
			switch strings.ToLower(key) {
			case "moi":
				n, err := strconv.Atoi(strings.Fields(val)[0])
				if err != nil {
					return DNAOutline{}, fmt.Errorf("mechanism: MOI: %w", err)
				}
				moi = n
				continue
			case "rateofrnapcollisionfailure":
				f, err := strconv.ParseFloat(strings.Fields(val)[0], 64)
				if err != nil {
					return DNAOutline{}, fmt.Errorf("mechanism: RateOfRNAPCollisionFailure: %w", err)
				}
				out.RateOfRNAPCollisionFailure = f
				continue
			case "allowconvergentescape":
				out.AllowConvergentEscape = strings.EqualFold(strings.Fields(val)[0], "true")
				continue
			}
		}

		seg, err := parseSegmentLine(line, reg, operators, params, openParam)
		if err != nil {
			return DNAOutline{}, err
		}
		segByName[seg.Name] = seg
		order = append(order, seg)
	}
	if err := sc.Err(); err != nil {
		return DNAOutline{}, err
	}
	if chain == nil {
		return DNAOutline{}, fmt.Errorf("mechanism: DNA mechanism has no segment chain declaration")
	}

	for copyIdx := 0; copyIdx < moi; copyIdx++ {
		head, err := linkChain(chain, segByName, copyIdx)
		if err != nil {
			return DNAOutline{}, err
		}
		out.Chains = append(out.Chains, head)
	}
	return out, nil
}

// parseChainLine turns "Prom --> Gene --> Term ---" into ["Prom", "Gene", "Term"].
func parseChainLine(line string) []string {
	line = strings.TrimSuffix(strings.TrimSpace(line), "---")
	parts := strings.Split(line, "-->")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			names = append(names, p)
		}
	}
	return names
}

// linkChain builds one fresh, independently-linked copy of the named
// chain (MOI > 1 means multiple independent copies of the same DNA must
// not share segment or RNAP-queue state).
func linkChain(chain []string, templates map[string]*dna.Segment, copyIdx int) (*dna.Segment, error) {
	segments := make([]*dna.Segment, len(chain))
	for i, name := range chain {
		tmpl, ok := templates[name]
		if !ok {
			return nil, fmt.Errorf("mechanism: chain references undefined segment %q", name)
		}
		clone := *tmpl
		clone.Prev, clone.Next, clone.RNAPs = nil, nil, nil
		segments[i] = &clone
	}
	for i := range segments {
		if i > 0 {
			segments[i].Prev = segments[i-1]
		}
		if i+1 < len(segments) {
			segments[i].Next = segments[i+1]
		}
	}
	return segments[0], nil
}

func parseSegmentLine(line string, reg *species.Registry, operators *operator.Table, params param.Set, openParam func(string) (io.Reader, error)) (*dna.Segment, error) {
	tok := strings.Fields(line)
	if len(tok) != 6 {
		return nil, fmt.Errorf("mechanism: malformed segment line %q (want name length unit direction type parameter_file)", line)
	}
	name, lengthTok, _, dirTok, typeTok, paramFile := tok[0], tok[1], tok[2], tok[3], tok[4], tok[5]

	length, err := strconv.Atoi(lengthTok)
	if err != nil {
		return nil, fmt.Errorf("mechanism: segment %q length: %w", name, err)
	}
	dir, err := parseDirection(dirTok)
	if err != nil {
		return nil, fmt.Errorf("mechanism: segment %q: %w", name, err)
	}
	segType, err := parseSegmentType(typeTok)
	if err != nil {
		return nil, fmt.Errorf("mechanism: segment %q: %w", name, err)
	}

	pf, err := openParam(paramFile)
	if err != nil {
		return nil, fmt.Errorf("mechanism: opening parameter file for segment %q: %w", name, err)
	}

	seg := &dna.Segment{Name: name, Length: length, Direction: dir, Type: segType}
	switch segType {
	case dna.Promoter:
		p, err := parsePromoterParams(pf, reg, operators, params)
		if err != nil {
			return nil, fmt.Errorf("mechanism: segment %q: %w", name, err)
		}
		seg.Promoter = p
	case dna.Terminator:
		p, err := parseTerminatorParams(pf, reg, params)
		if err != nil {
			return nil, fmt.Errorf("mechanism: segment %q: %w", name, err)
		}
		seg.Terminator = p
	case dna.AntiTerminator:
		p, err := parseAntiTerminatorParams(pf, reg, params)
		if err != nil {
			return nil, fmt.Errorf("mechanism: segment %q: %w", name, err)
		}
		seg.AntiTerminator = p
	case dna.Coding:
		p, err := parseCodingParams(pf, reg, params, openParam)
		if err != nil {
			return nil, fmt.Errorf("mechanism: segment %q: %w", name, err)
		}
		seg.Coding = p
	case dna.NonCoding:
		// no payload
	}
	return seg, nil
}

func parseDirection(s string) (dna.Direction, error) {
	switch strings.ToUpper(s) {
	case "L", "LEFT":
		return dna.Left, nil
	case "R", "RIGHT":
		return dna.Right, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}

func parseSegmentType(s string) (dna.SegmentType, error) {
	switch strings.ToLower(s) {
	case "promoter":
		return dna.Promoter, nil
	case "coding":
		return dna.Coding, nil
	case "noncoding":
		return dna.NonCoding, nil
	case "terminator":
		return dna.Terminator, nil
	case "antiterminator":
		return dna.AntiTerminator, nil
	default:
		return 0, fmt.Errorf("unknown segment type %q", s)
	}
}

// fieldMap reads "Key= value..." lines (spec.md §6 parameter-file
// grammar) into a map of raw token lists keyed by lower-cased field name, applying param
// substitutions first.
func fieldMap(r io.Reader, params param.Set) (map[string][]string, error) {
	sc := bufio.NewScanner(r)
	out := map[string][]string{}
	for sc.Scan() {
		line, err := substitute(sc.Text(), params)
		if err != nil {
			return nil, err
		}
		line = stripComment(line)
		if line == "" {
			continue
		}
		key, val, ok := keyValue(line)
		if !ok {
			return nil, fmt.Errorf("malformed field line %q", line)
		}
		out[strings.ToLower(key)] = strings.Fields(val)
	}
	return out, sc.Err()
}

func fieldFloat(fields map[string][]string, key string) (float64, error) {
	tok, ok := fields[strings.ToLower(key)]
	if !ok || len(tok) == 0 {
		return 0, fmt.Errorf("missing required field %q", key)
	}
	return strconv.ParseFloat(tok[0], 64)
}

func fieldSpeciesIndex(fields map[string][]string, key string, reg *species.Registry) (int, error) {
	tok, ok := fields[strings.ToLower(key)]
	if !ok || len(tok) == 0 {
		return 0, fmt.Errorf("missing required field %q", key)
	}
	if idx, ok := reg.Index(tok[0]); ok {
		return idx, nil
	}
	return reg.Add(tok[0], 0), nil
}

// parsePromoterParams reads a promoter parameter file. Unlike the
// original engine's SheaAckers/IsoData cross-references to two further
// files, this parser keeps the operator's configuration table and
// isomerization rates inline in the same file, under ConfigN/IsoRateN
// keys, for a single self-contained parameter grammar.
func parsePromoterParams(r io.Reader, reg *species.Registry, operators *operator.Table, params param.Set) (*dna.PromoterPayload, error) {
	fields, err := fieldMap(r, params)
	if err != nil {
		return nil, err
	}
	dirTok, ok := fields["transcriptiondirection"]
	if !ok {
		return nil, fmt.Errorf("missing TranscriptionDirection")
	}
	dir, err := parseDirection(dirTok[0])
	if err != nil {
		return nil, err
	}

	nConfigsF, err := fieldFloat(fields, "configs")
	if err != nil {
		return nil, err
	}
	nConfigs := int(nConfigsF)

	configs := make([]operator.Config, nConfigs)
	isoRate := make([]float64, nConfigs)
	for i := 0; i < nConfigs; i++ {
		cfg, err := parseConfigField(fields, fmt.Sprintf("config%d", i), reg)
		if err != nil {
			return nil, fmt.Errorf("config %d: %w", i, err)
		}
		configs[i] = cfg
		rate, err := fieldFloat(fields, fmt.Sprintf("isorate%d", i))
		if err != nil {
			return nil, fmt.Errorf("isorate %d: %w", i, err)
		}
		isoRate[i] = rate
	}

	nSites := 1
	if sitesF, err := fieldFloat(fields, "sites"); err == nil {
		nSites = int(sitesF)
	}

	op := operator.New(fmt.Sprintf("operator%d", operators.Len()), nSites, configs)
	opIdx := operators.Add(op)

	return &dna.PromoterPayload{Direction: dir, Operator: opIdx, IsoRate: isoRate}, nil
}

// parseConfigField parses a line like
// "Config1= weight=5.0 bind=RepressorA:1,ActivatorB:2".
func parseConfigField(fields map[string][]string, key string, reg *species.Registry) (operator.Config, error) {
	tok, ok := fields[key]
	if !ok {
		return operator.Config{}, fmt.Errorf("missing field %q", key)
	}
	cfg := operator.Config{}
	for _, t := range tok {
		name, val, ok := strings.Cut(t, "=")
		if !ok {
			continue
		}
		switch strings.ToLower(name) {
		case "weight":
			w, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return operator.Config{}, err
			}
			cfg.Weight = w
		case "bind":
			for _, pair := range strings.Split(val, ",") {
				if pair == "" {
					continue
				}
				sname, cnt, ok := strings.Cut(pair, ":")
				count := 1
				if ok {
					n, err := strconv.Atoi(cnt)
					if err != nil {
						return operator.Config{}, err
					}
					count = n
				}
				idx, ok := reg.Index(sname)
				if !ok {
					idx = reg.Add(sname, 0)
				}
				cfg.Bound = append(cfg.Bound, operator.Bound{Species: idx, Count: count})
			}
		}
	}
	if cfg.Weight == 0 {
		cfg.Weight = 1
	}
	return cfg, nil
}

func parseTerminatorParams(r io.Reader, reg *species.Registry, params param.Set) (*dna.TerminatorPayload, error) {
	fields, err := fieldMap(r, params)
	if err != nil {
		return nil, err
	}
	antiSpecies, err := fieldSpeciesIndex(fields, "antispecies", reg)
	if err != nil {
		return nil, err
	}
	baseFallOff, err := fieldFloat(fields, "basefalloffrate")
	if err != nil {
		return nil, err
	}
	basePass, err := fieldFloat(fields, "basepassrate")
	if err != nil {
		return nil, err
	}
	antiFallOff, err := fieldFloat(fields, "antifalloffrate")
	if err != nil {
		return nil, err
	}
	antiPass, err := fieldFloat(fields, "antipassrate")
	if err != nil {
		return nil, err
	}
	return &dna.TerminatorPayload{
		AntiSpecies:     antiSpecies,
		BaseFallOffRate: baseFallOff,
		BasePassRate:    basePass,
		AntiFallOffRate: antiFallOff,
		AntiPassRate:    antiPass,
	}, nil
}

func parseAntiTerminatorParams(r io.Reader, reg *species.Registry, params param.Set) (*dna.AntiTerminatorPayload, error) {
	fields, err := fieldMap(r, params)
	if err != nil {
		return nil, err
	}
	modifier, err := fieldSpeciesIndex(fields, "modifierspecies", reg)
	if err != nil {
		return nil, err
	}
	unboundPass, err := fieldFloat(fields, "unboundpassrate")
	if err != nil {
		return nil, err
	}
	binding, err := fieldFloat(fields, "bindingrate")
	if err != nil {
		return nil, err
	}
	boundPass, err := fieldFloat(fields, "boundpassrate")
	if err != nil {
		return nil, err
	}
	unbinding, err := fieldFloat(fields, "unbindingrate")
	if err != nil {
		return nil, err
	}
	return &dna.AntiTerminatorPayload{
		ModifierSpecies: modifier,
		UnboundPassRate: unboundPass,
		BindingRate:     binding,
		BoundPassRate:   boundPass,
		UnbindingRate:   unbinding,
	}, nil
}

// parseCodingParams reads a coding segment's parameter file. The
// ribosome binding rate normally comes straight from a
// RibosomeBindingRate field, but a mechanism author who only has a
// candidate Shine-Dalgarno sequence in hand, not a measured rate, can
// instead point an RBSFasta field at a single-record FASTA file; its
// sequence is scored by rbsrate.Estimate and RibosomeBindingRate is
// ignored in that case.
func parseCodingParams(r io.Reader, reg *species.Registry, params param.Set, openParam func(string) (io.Reader, error)) (*dna.CodingPayload, error) {
	fields, err := fieldMap(r, params)
	if err != nil {
		return nil, err
	}
	produced, err := fieldSpeciesIndex(fields, "producedspecies", reg)
	if err != nil {
		return nil, err
	}
	degradation, err := fieldFloat(fields, "mrnadegradationrate")
	if err != nil {
		return nil, err
	}

	var binding float64
	if tok, ok := fields["rbsfasta"]; ok && len(tok) > 0 {
		binding, err = rbsBindingRateFromFasta(tok[0], openParam)
		if err != nil {
			return nil, err
		}
	} else {
		binding, err = fieldFloat(fields, "ribosomebindingrate")
		if err != nil {
			return nil, err
		}
	}

	return &dna.CodingPayload{
		ProducedSpecies:     produced,
		DegradationRate:     degradation,
		RibosomeBindingRate: binding,
	}, nil
}

// rbsBindingRateFromFasta opens fastaName through openParam, reads its
// first record, and derives a binding rate from the sequence.
func rbsBindingRateFromFasta(fastaName string, openParam func(string) (io.Reader, error)) (float64, error) {
	f, err := openParam(fastaName)
	if err != nil {
		return 0, fmt.Errorf("opening RBSFasta %q: %w", fastaName, err)
	}
	sequence, err := firstFastaSequence(f)
	if err != nil {
		return 0, fmt.Errorf("parsing RBSFasta %q: %w", fastaName, err)
	}
	rate, err := rbsrate.Estimate(sequence)
	if err != nil {
		return 0, fmt.Errorf("RBSFasta %q: %w", fastaName, err)
	}
	return rate, nil
}

// firstFastaSequence reads only the first record's sequence out of r, a
// fasta file (a "> identifier" header line followed by one or more
// sequence lines). A mechanism file's RBSFasta field only ever needs
// one candidate sequence, so unlike a general-purpose fasta reader this
// stops at the first record instead of supporting multi-record files.
func firstFastaSequence(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	var seq strings.Builder
	seenHeader := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "" || line[0] == ';':
			continue
		case line[0] == '>':
			if seenHeader {
				return seq.String(), nil
			}
			seenHeader = true
		default:
			if !seenHeader {
				return "", fmt.Errorf("missing '>' identifier line before sequence data")
			}
			seq.WriteString(line)
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if seq.Len() == 0 {
		return "", fmt.Errorf("no sequence data found")
	}
	return seq.String(), nil
}
