// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package optimize

import (
	"context"
	"os"

	"gcodeopt/pkg/config"
	"gcodeopt/pkg/errors"
	"gcodeopt/pkg/gcode"
	"gcodeopt/pkg/log"
	"gcodeopt/pkg/metrics"
	"gcodeopt/pkg/solver"
	"gcodeopt/pkg/toolpath"
)

// Optimizer runs the whole pipeline: parse, segment, merge, route,
// reconstruct.
type Optimizer struct {
	cfg     *config.Config
	solver  solver.Solver
	sink    gcode.UnsupportedSink
	metrics *metrics.OptimizerMetrics
	log     *log.Logger
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithSolver substitutes the external solver, mainly for tests.
func WithSolver(sv solver.Solver) Option {
	return func(o *Optimizer) { o.solver = sv }
}

// WithSink routes unrecognized instruction lines to the given sink.
func WithSink(sink gcode.UnsupportedSink) Option {
	return func(o *Optimizer) { o.sink = sink }
}

func New(cfg *config.Config, opts ...Option) *Optimizer {
	o := &Optimizer{
		cfg:     cfg,
		sink:    gcode.NopSink{},
		metrics: metrics.NewOptimizerMetrics(),
		log:     log.GetLogger("optimize"),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.solver == nil {
		o.solver = solver.NewProcess(cfg.Program, cfg.SolverTimeout())
	}
	return o
}

// Report summarizes one optimization run.
type Report struct {
	Layers         int
	Islands        int
	IslandsMerged  int
	LayersSolved   int
	LayersFallback int
	LayersSkipped  int

	InputStats  gcode.Stats
	OutputStats gcode.Stats
	Unsupported int
}

// Metrics exposes the run's metric registry for end-of-run dumps.
func (o *Optimizer) Metrics() *metrics.OptimizerMetrics { return o.metrics }

// Run optimizes inputPath into outputPath. Per-layer solver failures
// degrade those layers to their original order; the returned error is
// non-nil only when the run as a whole failed.
func (o *Optimizer) Run(ctx context.Context, inputPath, outputPath string) (*Report, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return nil, errors.InputError(inputPath, err.Error())
	}
	parser := gcode.NewParser(gcode.WithSink(o.sink))
	cmds, err := parser.Parse(in)
	in.Close()
	if err != nil {
		return nil, errors.InputError(inputPath, err.Error())
	}
	if len(cmds) == 0 {
		return nil, errors.InputError(inputPath, "file is empty")
	}

	stats := parser.Stats()
	o.metrics.CommandsParsed.Add(nil, uint64(len(cmds)))
	o.metrics.UnknownCommands.Add(nil, uint64(stats.Unknown))
	o.metrics.TravelDistanceIn.Set(nil, stats.TravelDistance)
	o.metrics.ExtrusionDistance.Set(nil, stats.ExtrusionDistance)
	o.log.Info("parsed %d commands: %s", len(cmds), stats.String())

	layers := toolpath.SplitLayers(cmds)
	report := &Report{
		Layers:      len(layers),
		InputStats:  stats,
		Unsupported: stats.Unknown,
	}
	o.metrics.LayersTotal.Add(nil, uint64(len(layers)))

	for i := range layers {
		before := len(layers[i].Islands)
		layers[i].Islands = toolpath.MergeIslands(layers[i].Islands, o.cfg.MaxMergeLength)
		report.Islands += before
		report.IslandsMerged += before - len(layers[i].Islands)
	}
	o.metrics.IslandsTotal.Add(nil, uint64(report.Islands))
	o.metrics.IslandsMerged.Add(nil, uint64(report.IslandsMerged))
	o.log.Info("segmented %d layers, %d islands (%d merged away)",
		report.Layers, report.Islands, report.IslandsMerged)

	results, err := NewOrchestrator(o.cfg, o.solver, o.metrics).SolveLayers(ctx, layers)
	if err != nil {
		return nil, err
	}
	for _, res := range results {
		switch {
		case res.Skipped:
			report.LayersSkipped++
		case res.Order == nil:
			report.LayersFallback++
		default:
			report.LayersSolved++
		}
	}

	if err := o.writeOutput(inputPath, outputPath, layers, results); err != nil {
		return nil, err
	}

	outStats, err := o.outputStats(outputPath)
	if err != nil {
		return nil, err
	}
	report.OutputStats = outStats
	o.metrics.TravelDistanceOut.Set(nil, outStats.TravelDistance)

	o.log.Info("travel distance %.3f %s -> %.3f %s",
		stats.TravelDistance, stats.Units, outStats.TravelDistance, outStats.Units)
	return report, nil
}

func (o *Optimizer) writeOutput(inputPath, outputPath string, layers []toolpath.Layer, results []Result) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return errors.InputError(outputPath, err.Error())
	}

	rec := NewReconstructor(out)
	rec.WriteHeader(inputPath)
	for i := range layers {
		rec.WriteLayer(&layers[i], results[i])
	}
	if err := rec.Flush(); err != nil {
		out.Close()
		return errors.Wrap(err, errors.ErrRuntime, "writing output file")
	}
	return out.Close()
}

// outputStats re-parses the written file so the reported distances
// describe what the machine will actually execute.
func (o *Optimizer) outputStats(path string) (gcode.Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return gcode.Stats{}, errors.InputError(path, err.Error())
	}
	defer f.Close()

	quiet := log.New("verify")
	quiet.SetLevel(log.ERROR)
	parser := gcode.NewParser(gcode.WithLogger(quiet))
	if _, err := parser.Parse(f); err != nil {
		return gcode.Stats{}, errors.Wrap(err, errors.ErrRuntime, "verifying output file")
	}
	return parser.Stats(), nil
}
