package main

import (
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/catalytic/simulac"
	"github.com/catalytic/simulac/fingerprint"
	"github.com/catalytic/simulac/mechanism/param"
	"github.com/catalytic/simulac/model"
	"github.com/catalytic/simulac/trace"
)

// main separates itself from the actual *cli.App to help with testing.
func main() {
	if err := application().Run(os.Args); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		log.Fatal(err)
	}
}

// application defines the single flat command this binary exposes: run
// a model described by an outline file to completion, writing a
// tab-separated trace.
func application() *cli.App {
	return &cli.App{
		Name:  "simulac",
		Usage: "A discrete-event stochastic simulator for gene-regulatory networks.",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "max-time", Value: 100, Usage: "simulated seconds to run before stopping"},
			&cli.Float64Flag{Name: "print-interval", Value: 1, Usage: "simulated seconds between trace rows"},
			&cli.Int64Flag{Name: "seed", Value: 1, Usage: "seed for every random draw in the run"},
			&cli.StringSliceFlag{Name: "P", Usage: "generic parameter override, name=value (repeatable)"},
			&cli.Float64Flag{Name: "volume-multiplier", Usage: "scale the Cell mechanism file's VI and V0"},
			&cli.Float64Flag{Name: "growth-rate-multiplier", Usage: "scale the Cell mechanism file's GrowthRate"},
			&cli.BoolFlag{Name: "single-cell", Usage: "disable division for the whole run"},
			&cli.BoolFlag{Name: "promoter-counters", Usage: "add a cumulative RNAP-initiation column per promoter"},
			&cli.BoolFlag{Name: "header", Value: true, Usage: "write a column-name header row"},
			&cli.StringFlag{Name: "o", Usage: "output file path; defaults to stdout"},
			&cli.BoolFlag{Name: "fingerprint", Usage: "print the assembled model's content hash before running"},
			&cli.IntFlag{Name: "debug", Aliases: []string{"v"}, Usage: "debug verbosity (higher prints more stage-by-stage tracing to stderr, 0 disables)"},
		},
		ArgsUsage: "<outline-file>",
		Action:    runCommand,
	}
}

func runCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("simulac: expected exactly one outline-file argument")
	}
	outlinePath := c.Args().Get(0)

	params := param.Set{}
	for _, kv := range c.StringSlice("P") {
		if err := params.Parse(kv); err != nil {
			return err
		}
	}

	world, err := simulac.Build(outlinePath, simulac.Options{
		Seed:                 c.Int64("seed"),
		Params:               params,
		VolumeMultiplier:     c.Float64("volume-multiplier"),
		GrowthRateMultiplier: c.Float64("growth-rate-multiplier"),
		SingleCell:           c.Bool("single-cell"),
		DebugLevel:           c.Int("debug"),
	})
	if err != nil {
		return err
	}

	if c.Bool("fingerprint") {
		hash := fingerprint.Of(fingerprint.Model{Species: world.Species, DNA: world.DNA, Operators: world.Operators})
		color.New(color.FgGreen).Fprintf(os.Stderr, "model fingerprint: %s\n", hash)
	}

	out := os.Stdout
	if path := c.String("o"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("simulac: creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	writer := trace.NewWriter(out, world.Species, world.Cell, world.Operators)
	if c.Bool("promoter-counters") {
		writer.PromoterCounts = world.DNA.PromoterInitiationCounts
	}
	if c.Bool("header") {
		if err := writer.WriteHeader(); err != nil {
			return err
		}
	}

	err = world.Run(c.Float64("max-time"), c.Float64("print-interval"), func(line model.TraceLine) {
		writer.Write(line)
	})
	if err != nil {
		return err
	}
	return writer.Flush()
}
