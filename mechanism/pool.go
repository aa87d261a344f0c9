package mechanism

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/catalytic/simulac/mechanism/param"
	"github.com/catalytic/simulac/species"
)

// PoolConfig is a parsed RNAP or Ribosome pool mechanism file: the
// initial free-pool count and the single-step motion rate that species'
// engine applies every tick it advances one nucleotide.
type PoolConfig struct {
	Count int
	Rate  float64
}

// ParseRNAPPool parses an RNAP mechanism file, setting species.RNAP's
// initial count from its "Count=" field and returning
// RateOfPolymeraseMotion from its "Rate=" field.
func ParseRNAPPool(r io.Reader, reg *species.Registry, params param.Set) (PoolConfig, error) {
	cfg, err := parsePoolConfig(r, RNAPType, params)
	if err != nil {
		return PoolConfig{}, err
	}
	reg.SetCount(species.RNAP, cfg.Count)
	return cfg, nil
}

// ParseRibosomePool parses a Ribosome mechanism file, setting
// species.Ribosome's initial count from its "Count=" field and returning
// RateOfRibosomeMotion from its "Rate=" field.
func ParseRibosomePool(r io.Reader, reg *species.Registry, params param.Set) (PoolConfig, error) {
	cfg, err := parsePoolConfig(r, RibosomeType, params)
	if err != nil {
		return PoolConfig{}, err
	}
	reg.SetCount(species.Ribosome, cfg.Count)
	return cfg, nil
}

func parsePoolConfig(r io.Reader, want Type, params param.Set) (PoolConfig, error) {
	sc := bufio.NewScanner(r)
	typ, err := peekType(sc)
	if err != nil {
		return PoolConfig{}, err
	}
	if typ != want {
		return PoolConfig{}, fmt.Errorf("mechanism: unexpected Type for pool mechanism")
	}
	var cfg PoolConfig
	seenCount, seenRate := false, false
	for sc.Scan() {
		line, err := substitute(sc.Text(), params)
		if err != nil {
			return PoolConfig{}, err
		}
		line = stripComment(line)
		if line == "" {
			continue
		}
		key, val, ok := keyValue(line)
		if !ok {
			continue
		}
		tok := strings.Fields(val)
		if len(tok) == 0 {
			return PoolConfig{}, fmt.Errorf("mechanism: %s has no value", key)
		}
		switch strings.ToLower(key) {
		case "count":
			n, err := strconv.Atoi(tok[0])
			if err != nil {
				return PoolConfig{}, err
			}
			cfg.Count = n
			seenCount = true
		case "rate":
			f, err := strconv.ParseFloat(tok[0], 64)
			if err != nil {
				return PoolConfig{}, err
			}
			cfg.Rate = f
			seenRate = true
		}
	}
	if err := sc.Err(); err != nil {
		return PoolConfig{}, err
	}
	if !seenCount {
		return PoolConfig{}, fmt.Errorf("mechanism: pool mechanism missing Count= field")
	}
	if !seenRate {
		return PoolConfig{}, fmt.Errorf("mechanism: pool mechanism missing Rate= field")
	}
	return cfg, nil
}
