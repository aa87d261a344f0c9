package trace

import (
	"strings"
	"testing"

	"github.com/catalytic/simulac/cellmodel"
	"github.com/catalytic/simulac/model"
	"github.com/catalytic/simulac/operator"
	"github.com/catalytic/simulac/species"
)

func TestWriteHeaderAndRow(t *testing.T) {
	reg := species.NewRegistry()
	reg.Add("A", 5)
	cell := &cellmodel.Cell{V0: 1, V: 2}
	ops := operator.NewTable()
	ops.Add(operator.New("O1", 1, []operator.Config{{Weight: 1}}))

	var buf strings.Builder
	w := NewWriter(&buf, reg, cell, ops)
	if err := w.WriteHeader(); err != nil {
		t.Fatalf("WriteHeader() error = %v", err)
	}
	if err := w.Write(model.TraceLine{Time: 10, NR: 3, RPQ: 1.5}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2 (header + one row)", len(lines))
	}
	header := strings.Split(lines[0], "\t")
	wantHeader := []string{"Time", "NR", "RPQ", "RNAP", "Ribosome", "A", "V/V0", "Op0"}
	if len(header) != len(wantHeader) {
		t.Fatalf("header = %v, want %v", header, wantHeader)
	}
	row := strings.Split(lines[1], "\t")
	if row[0] != "10" || row[1] != "3" || row[2] != "1.5" {
		t.Fatalf("row = %v, want Time=10 NR=3 RPQ=1.5", row)
	}
}
