// Package param implements the outline-file "-P name=val" generic
// parameter substitution (spec.md §6), grounded directly on
// original_source/src/param.c: a mechanism file may reference a
// "%name:default" placeholder that the invocation's -P flags fill in
// before the rest of the grammar sees the line, falling back to the
// token's own default when no override was supplied.
package param

import (
	"fmt"
	"strconv"
	"strings"
)

// Set is a collection of name=value overrides supplied on the command
// line, e.g. -P k1=2.5 -P VI=3.2e-15.
type Set map[string]string

// Parse turns "name=value" into a Set entry. It returns an error if arg
// has no '=' separator.
func (s Set) Parse(arg string) error {
	name, value, ok := strings.Cut(arg, "=")
	if !ok {
		return fmt.Errorf("param: %q is not in name=value form", arg)
	}
	s[name] = value
	return nil
}

// Substitute replaces every "%name:default" placeholder in line with its
// -P override if one was supplied, or silently with default otherwise —
// param.c never treats a missing override as an error, it just falls
// back to the value the mechanism file author already wrote in.
func (s Set) Substitute(line string) (string, error) {
	var b strings.Builder
	for {
		start := strings.IndexByte(line, '%')
		if start < 0 {
			b.WriteString(line)
			break
		}
		b.WriteString(line[:start])

		colon := strings.IndexByte(line[start+1:], ':')
		if colon < 0 {
			return "", fmt.Errorf("param: invalid format for parameter value (%q)", line[start:])
		}
		colon += start + 1
		name := line[start+1 : colon]

		end := colon + 1
		for end < len(line) && !isTokenBoundary(line[end]) {
			end++
		}
		def := line[colon+1 : end]

		val, ok := s[name]
		if !ok {
			val = def
		}
		b.WriteString(val)
		line = line[end:]
	}
	return b.String(), nil
}

// isTokenBoundary reports whether c ends a "%name:default" token's
// default value, the way param_parse_value's sscanf("%s") stops at
// whitespace.
func isTokenBoundary(c byte) bool {
	return c == ' ' || c == '\t'
}

// Float parses name's override as a float64, for callers applying a
// numeric rate or count override directly (spec.md §6 "per-reaction rate
// override k<i>=<value>", "per-species initial-count override").
func (s Set) Float(name string) (float64, bool, error) {
	v, ok := s[name]
	if !ok {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false, fmt.Errorf("param: override %s=%q is not a number: %w", name, v, err)
	}
	return f, true, nil
}
