// Package trace writes the tab-separated species-trace output format
// described in spec.md §6: one row per scheduled print time, columns
// Time, NR, RPQ, every species count in registry order, V/V0, each
// operator's current-state index, and optionally each promoter's
// cumulative RNAP-initiation count.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/catalytic/simulac/cellmodel"
	"github.com/catalytic/simulac/model"
	"github.com/catalytic/simulac/operator"
	"github.com/catalytic/simulac/species"
)

// Writer emits trace rows to an underlying io.Writer.
type Writer struct {
	w                   *bufio.Writer
	Species             *species.Registry
	Cell                *cellmodel.Cell
	Operators           *operator.Table
	PromoterCounts      func() []int // nil to omit the promoter-counter columns
	wroteHeader         bool
}

// NewWriter returns a Writer over w.
func NewWriter(w io.Writer, reg *species.Registry, cell *cellmodel.Cell, operators *operator.Table) *Writer {
	return &Writer{w: bufio.NewWriter(w), Species: reg, Cell: cell, Operators: operators}
}

// WriteHeader writes the column-name header row, if the caller wants one
// (spec.md §6 invocation flag "header-line flag").
func (tw *Writer) WriteHeader() error {
	cols := []string{"Time", "NR", "RPQ"}
	for i := 0; i < tw.Species.Len(); i++ {
		cols = append(cols, tw.Species.Name(i))
	}
	cols = append(cols, "V/V0")
	for i := 0; i < tw.Operators.Len(); i++ {
		cols = append(cols, fmt.Sprintf("Op%d", i))
	}
	if tw.PromoterCounts != nil {
		for i := range tw.PromoterCounts() {
			cols = append(cols, fmt.Sprintf("PromCount%d", i))
		}
	}
	_, err := fmt.Fprintln(tw.w, strings.Join(cols, "\t"))
	tw.wroteHeader = true
	return err
}

// Write emits one trace row for line.
func (tw *Writer) Write(line model.TraceLine) error {
	cols := make([]string, 0, 3+tw.Species.Len()+1+tw.Operators.Len())
	cols = append(cols, fmt.Sprintf("%g", line.Time), fmt.Sprintf("%d", line.NR), fmt.Sprintf("%g", line.RPQ))
	for i := 0; i < tw.Species.Len(); i++ {
		cols = append(cols, fmt.Sprintf("%d", tw.Species.Count(i)))
	}
	cols = append(cols, fmt.Sprintf("%g", tw.Cell.V/tw.Cell.V0))
	for i := 0; i < tw.Operators.Len(); i++ {
		cols = append(cols, fmt.Sprintf("%d", tw.Operators.At(i).CurrentState))
	}
	if tw.PromoterCounts != nil {
		for _, n := range tw.PromoterCounts() {
			cols = append(cols, fmt.Sprintf("%d", n))
		}
	}
	_, err := fmt.Fprintln(tw.w, strings.Join(cols, "\t"))
	return err
}

// Flush flushes any buffered output to the underlying writer.
func (tw *Writer) Flush() error { return tw.w.Flush() }
