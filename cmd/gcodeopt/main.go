// gcodeopt reorders the print path of a sliced instruction file so the
// machine spends less time on non-productive travel. Each layer's
// disjoint extrusion islands become a routing problem handed to an
// external solver; the output file prints the same geometry in the
// solver's order.
//
// Usage:
//
//	gcodeopt [flags] <config.json> <input.gcode>
//
// The optimized file is written next to the input as
// <input>_optimized.gcode unless --output says otherwise. Lines the
// parser does not recognize are passed through unchanged and recorded
// in <input>.unsupported.log.
//
// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"gcodeopt/pkg/config"
	"gcodeopt/pkg/errors"
	"gcodeopt/pkg/gcode"
	"gcodeopt/pkg/log"
	"gcodeopt/pkg/optimize"
)

var (
	flagOutput   string
	flagLogFile  string
	flagLogLevel string
	flagMetrics  bool
)

func main() {
	root := &cobra.Command{
		Use:   "gcodeopt <config.json> <input.gcode>",
		Short: "Reorder print-path islands to minimize travel distance",
		Long: "gcodeopt parses a sliced G-code file, groups each layer's extruding\n" +
			"runs into islands, and asks an external route solver for the order\n" +
			"that minimizes travel between them. Layers the solver cannot improve\n" +
			"are emitted unchanged, so the output always prints.",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	root.Flags().StringVarP(&flagOutput, "output", "o", "", "output file (default <input>_optimized.gcode)")
	root.Flags().StringVar(&flagLogFile, "logfile", "", "write the run log to this file, with rotation")
	root.Flags().StringVar(&flagLogLevel, "log-level", "info", "log verbosity: debug, info, warn or error")
	root.Flags().BoolVar(&flagMetrics, "metrics", false, "print run metrics on exit")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	configPath, inputPath := args[0], args[1]

	logger := log.New("gcodeopt")
	logger.SetLevel(log.ParseLevel(flagLogLevel))
	if flagLogFile != "" {
		w, err := log.NewRotatingFileWriter(log.RotationConfig{Filename: flagLogFile})
		if err != nil {
			return err
		}
		defer w.Close()
		logger.SetWriter(w)
		logger.SetColorize(false)
	}
	log.SetDefaultLogger(logger)

	if !strings.HasSuffix(inputPath, ".gcode") {
		return errors.InputError(inputPath, "expected a .gcode file")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	outputPath := flagOutput
	if outputPath == "" {
		outputPath = strings.TrimSuffix(inputPath, ".gcode") + "_optimized.gcode"
	}

	unsupportedPath := inputPath + ".unsupported.log"
	sink, err := gcode.NewFileSink(unsupportedPath)
	if err != nil {
		return errors.InputError(unsupportedPath, err.Error())
	}
	defer sink.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opt := optimize.New(cfg, optimize.WithSink(sink))
	report, err := opt.Run(ctx, inputPath, outputPath)
	if err != nil {
		return err
	}

	logger.Info("wrote %s", outputPath)
	logger.Info("layers: %d solved, %d fallback, %d skipped of %d",
		report.LayersSolved, report.LayersFallback, report.LayersSkipped, report.Layers)
	logger.Info("travel distance: %.3f %s -> %.3f %s",
		report.InputStats.TravelDistance, report.InputStats.Units,
		report.OutputStats.TravelDistance, report.OutputStats.Units)
	if report.Unsupported > 0 {
		logger.Warn("%d unsupported commands recorded in %s", report.Unsupported, unsupportedPath)
	}
	if flagMetrics {
		fmt.Print(opt.Metrics().Gather())
	}
	return nil
}
