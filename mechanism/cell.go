package mechanism

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/catalytic/simulac/cellmodel"
	"github.com/catalytic/simulac/mechanism/param"
)

// volumeScale converts the outline file's litres x 1e-18 convention
// (spec.md §6) into litres.
const volumeScale = 1e-18

// ParseCell parses a Cell mechanism file into a cellmodel.Cell (V starts
// equal to VI and grows from there as the simulation runs; V0 keeps its
// own parsed value).
func ParseCell(r io.Reader, params param.Set) (*cellmodel.Cell, error) {
	sc := bufio.NewScanner(r)
	if typ, err := peekType(sc); err != nil {
		return nil, err
	} else if typ != CellType {
		return nil, fmt.Errorf("mechanism: expected Type=Cell")
	}

	cell := &cellmodel.Cell{}
	seen := map[string]bool{}
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
			return nil, fmt.Errorf("mechanism: malformed Cell statement %q", line)
		}
		f, err := parseLeadingFloat(val)
		if err != nil {
			return nil, fmt.Errorf("mechanism: Cell field %s: %w", key, err)
		}
		switch strings.ToLower(key) {
		case "vi":
			cell.VI = f * volumeScale
		case "v0":
			cell.V0 = f * volumeScale
		case "growthrate":
			cell.GrowthRate = f * volumeScale
		default:
			return nil, fmt.Errorf("mechanism: unknown Cell field %q", key)
		}
		seen[strings.ToLower(key)] = true
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	for _, required := range []string{"vi", "v0", "growthrate"} {
		if !seen[required] {
			return nil, fmt.Errorf("mechanism: Cell mechanism missing required field %q", required)
		}
	}
	cell.V = cell.VI
	return cell, nil
}

func substitute(line string, params param.Set) (string, error) {
	if !strings.Contains(line, "%") || strings.HasPrefix(strings.TrimSpace(line), "%") {
		return line, nil
	}
	return params.Substitute(line)
}

// parseLeadingFloat parses the first whitespace-delimited token of s as a
// float64, tolerating a trailing unit token (e.g. "3.2e-15 litres").
func parseLeadingFloat(s string) (float64, error) {
	tok := strings.Fields(s)
	if len(tok) == 0 {
		return 0, fmt.Errorf("empty value")
	}
	return strconv.ParseFloat(tok[0], 64)
}
