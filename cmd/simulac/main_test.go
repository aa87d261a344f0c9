package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestModel(t *testing.T, dir string) string {
	t.Helper()
	cell := "Type= Cell\nVI= 1.0\nV0= 1.0\nGrowthRate= 0\n"
	kinetic := "Type= Kinetic\nA --> B\nk1= 0.5\nA= 50\nB= 0\n"
	if err := os.WriteFile(filepath.Join(dir, "cell.mech"), []byte(cell), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "kinetic.mech"), []byte(kinetic), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "outline.txt")
	if err := os.WriteFile(path, []byte("cell.mech\nkinetic.mech\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunCommandWritesTraceToFile(t *testing.T) {
	dir := t.TempDir()
	outline := writeTestModel(t, dir)
	outPath := filepath.Join(dir, "trace.tsv")

	app := application()
	args := []string{"simulac", "--max-time", "50", "--print-interval", "10", "-o", outPath, outline}
	if err := app.Run(args); err != nil {
		t.Fatalf("app.Run() error = %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) < 2 {
		t.Fatalf("got %d lines, want header plus at least one row", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Time\tNR\tRPQ") {
		t.Fatalf("header = %q, want it to start with Time\\tNR\\tRPQ", lines[0])
	}
}

func TestRunCommandAcceptsDebugFlag(t *testing.T) {
	dir := t.TempDir()
	outline := writeTestModel(t, dir)
	outPath := filepath.Join(dir, "trace.tsv")

	app := application()
	args := []string{"simulac", "--max-time", "10", "--print-interval", "10", "--debug", "5", "-o", outPath, outline}
	if err := app.Run(args); err != nil {
		t.Fatalf("app.Run() with --debug error = %v", err)
	}
}

func TestRunCommandRejectsWrongArgCount(t *testing.T) {
	app := application()
	if err := app.Run([]string{"simulac"}); err == nil {
		t.Fatal("app.Run() with no outline argument returned no error")
	}
}
