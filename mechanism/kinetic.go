package mechanism

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/catalytic/simulac/mechanism/param"
	"github.com/catalytic/simulac/massaction"
	"github.com/catalytic/simulac/species"
)

var rateKeyPattern = regexp.MustCompile(`^k(\d+)$`)

// timeUnitSeconds returns how many seconds one unit represents, for
// converting a rate given "per <unit>" into a per-second rate constant.
func timeUnitSeconds(unit string) (float64, error) {
	switch strings.ToLower(unit) {
	case "ms", "msec", "millisecond", "milliseconds":
		return 1e-3, nil
	case "s", "sec", "second", "seconds":
		return 1, nil
	case "min", "minute", "minutes":
		return 60, nil
	case "hr", "hour", "hours":
		return 3600, nil
	default:
		return 0, fmt.Errorf("mechanism: unrecognized time unit %q", unit)
	}
}

// ParseKinetic parses a Kinetic mechanism file: a block of reaction
// equations, followed by a rate constant for each (k1, k2, ...), followed
// by initial species concentrations. Every species named anywhere in the
// file is registered in reg if not already present.
func ParseKinetic(r io.Reader, reg *species.Registry, params param.Set) (*massaction.Table, error) {
	sc := bufio.NewScanner(r)
	if typ, err := peekType(sc); err != nil {
		return nil, err
	} else if typ != KineticType {
		return nil, fmt.Errorf("mechanism: expected Type=Kinetic")
	}

	var reactions []*massaction.Reaction
	rates := map[int]float64{}

	for sc.Scan() {
		line, err := substitute(sc.Text(), params)
		if err != nil {
			return nil, err
		}
		line = stripComment(line)
		if line == "" {
			continue
		}

		if strings.Contains(line, "-->") {
			rxn, err := parseReactionLine(line, reg)
			if err != nil {
				return nil, err
			}
			reactions = append(reactions, rxn)
			continue
		}

		key, val, ok := keyValue(line)
		if !ok {
			return nil, fmt.Errorf("mechanism: malformed Kinetic statement %q", line)
		}

		if m := rateKeyPattern.FindStringSubmatch(key); m != nil {
			idx, _ := strconv.Atoi(m[1])
			tok := strings.Fields(val)
			if len(tok) == 0 {
				return nil, fmt.Errorf("mechanism: rate %s has no value", key)
			}
			rate, err := strconv.ParseFloat(tok[0], 64)
			if err != nil {
				return nil, fmt.Errorf("mechanism: rate %s: %w", key, err)
			}
			if override, ok, err := params.Float(key); err != nil {
				return nil, err
			} else if ok {
				rate = override
			}
			if len(tok) > 1 {
				factor, err := timeUnitSeconds(tok[1])
				if err != nil {
					return nil, err
				}
				rate /= factor
			}
			rates[idx-1] = rate
			continue
		}

		count, err := strconv.Atoi(strings.Fields(val)[0])
		if err != nil {
			return nil, fmt.Errorf("mechanism: initial concentration for %q: %w", key, err)
		}
		if override, ok, err := params.Float(key); err != nil {
			return nil, err
		} else if ok {
			count = int(override)
		}
		reg.Add(key, count)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	for i, rxn := range reactions {
		rate, ok := rates[i]
		if !ok {
			return nil, fmt.Errorf("mechanism: reaction %d has no rate constant k%d", i+1, i+1)
		}
		rxn.RateConstant = rate
	}

	table := massaction.NewTable()
	for _, rxn := range reactions {
		table.Add(rxn)
	}
	return table, nil
}

func parseReactionLine(line string, reg *species.Registry) (*massaction.Reaction, error) {
	sides := strings.SplitN(line, "-->", 2)
	if len(sides) != 2 {
		return nil, fmt.Errorf("mechanism: malformed reaction %q", line)
	}
	lhs, err := parseTerms(sides[0], reg)
	if err != nil {
		return nil, err
	}
	rhs, err := parseTerms(sides[1], reg)
	if err != nil {
		return nil, err
	}
	return &massaction.Reaction{Name: strings.TrimSpace(line), Left: lhs, Right: rhs}, nil
}

func parseTerms(side string, reg *species.Registry) ([]massaction.Term, error) {
	var terms []massaction.Term
	for _, part := range strings.Split(side, "+") {
		part = strings.TrimSpace(part)
		if part == "" || part == "()" {
			continue
		}
		tok := strings.Fields(part)
		count := 1
		name := tok[0]
		if len(tok) == 2 {
			n, err := strconv.Atoi(tok[0])
			if err != nil {
				return nil, fmt.Errorf("mechanism: malformed stoichiometric term %q", part)
			}
			count = n
			name = tok[1]
		} else if len(tok) != 1 {
			return nil, fmt.Errorf("mechanism: malformed stoichiometric term %q", part)
		}
		idx, ok := reg.Index(name)
		if !ok {
			idx = reg.Add(name, 0)
		}
		terms = append(terms, massaction.Term{Species: idx, Count: count})
	}
	return terms, nil
}
