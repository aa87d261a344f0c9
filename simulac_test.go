package simulac

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/catalytic/simulac/mechanism/param"
	"github.com/catalytic/simulac/model"
)

// writeOutline lays down a minimal two-file model (Cell + Kinetic, no
// DNA) under dir and returns the outline path.
func writeOutline(t *testing.T, dir string) string {
	t.Helper()
	cell := "Type= Cell\nVI= 1.0\nV0= 1.0\nGrowthRate= 0\n"
	kinetic := "Type= Kinetic\nA --> B\nk1= 0.5\nA= 100\nB= 0\n"
	if err := os.WriteFile(filepath.Join(dir, "cell.mech"), []byte(cell), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "kinetic.mech"), []byte(kinetic), 0o644); err != nil {
		t.Fatal(err)
	}
	outline := "cell.mech\nkinetic.mech\n"
	path := filepath.Join(dir, "outline.txt")
	if err := os.WriteFile(path, []byte(outline), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildAssemblesRunnableWorld(t *testing.T) {
	dir := t.TempDir()
	path := writeOutline(t, dir)

	world, err := Build(path, Options{Seed: 1, Params: param.Set{}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	aIdx, ok := world.Species.Index("A")
	if !ok {
		t.Fatal("species A not registered")
	}
	if world.Species.Count(aIdx) != 100 {
		t.Fatalf("A count = %d, want 100", world.Species.Count(aIdx))
	}

	var rows int
	err = world.Run(100, 10, func(line model.TraceLine) { rows++ })
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rows == 0 {
		t.Fatal("Run() emitted no trace rows")
	}
}

func TestDebugLoggerGatesByLevel(t *testing.T) {
	var buf strings.Builder
	dbg := debugLogger{level: 3, logger: log.New(&buf, "", 0)}

	dbg.Logf(4, "should not print: %d", 4)
	if buf.Len() != 0 {
		t.Fatalf("Logf(4) with level=3 wrote %q, want nothing", buf.String())
	}

	dbg.Logf(2, "should print: %d", 2)
	if !strings.Contains(buf.String(), "should print: 2") {
		t.Fatalf("Logf(2) with level=3 wrote %q, want it to contain the message", buf.String())
	}
}

func TestBuildAcceptsDebugLevelWithoutFailing(t *testing.T) {
	dir := t.TempDir()
	path := writeOutline(t, dir)

	if _, err := Build(path, Options{Seed: 1, DebugLevel: 5}); err != nil {
		t.Fatalf("Build() with DebugLevel = %v", err)
	}
}

func TestBuildMissingCellErrors(t *testing.T) {
	dir := t.TempDir()
	kinetic := "Type= Kinetic\nA --> B\nk1= 0.5\nA= 10\nB= 0\n"
	if err := os.WriteFile(filepath.Join(dir, "kinetic.mech"), []byte(kinetic), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "outline.txt")
	if err := os.WriteFile(path, []byte("kinetic.mech\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Build(path, Options{Seed: 1}); err == nil {
		t.Fatal("Build() with no Cell mechanism file returned no error")
	}
}
