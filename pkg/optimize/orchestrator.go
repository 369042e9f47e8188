// Concurrent layer solving
//
// Each layer with enough islands becomes one external solver run.
// Layers are independent, so runs proceed concurrently under a
// semaphore bound; a failed layer degrades to its original ordering
// while the rest of the file still gets optimized. Only operating
// system resource exhaustion aborts the whole run.
//
// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package optimize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"gcodeopt/pkg/config"
	"gcodeopt/pkg/errors"
	"gcodeopt/pkg/gcode"
	"gcodeopt/pkg/log"
	"gcodeopt/pkg/metrics"
	"gcodeopt/pkg/solver"
	"gcodeopt/pkg/toolpath"
	"gcodeopt/pkg/tsp"
)

// Result is the routing outcome for one layer. A nil Order means the
// layer keeps its original command stream: it was skipped as too
// small, or the solver failed and the layer fell back.
type Result struct {
	Layer   int
	Order   []int
	Skipped bool
}

// Orchestrator fans layers out to the external solver under a worker
// bound.
type Orchestrator struct {
	cfg     *config.Config
	solver  solver.Solver
	metrics *metrics.OptimizerMetrics
	log     *log.Logger
}

func NewOrchestrator(cfg *config.Config, sv solver.Solver, m *metrics.OptimizerMetrics) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		solver:  sv,
		metrics: m,
		log:     log.GetLogger("orchestrator"),
	}
}

// SolveLayers routes every layer concurrently and returns one Result
// per layer, in input order. The returned error is non-nil only for
// fatal conditions; per-layer solver failures are absorbed as
// fallback Results.
func (o *Orchestrator) SolveLayers(ctx context.Context, layers []toolpath.Layer) ([]Result, error) {
	results := make([]Result, len(layers))

	workers := o.workerCount()
	o.log.Info("routing %d layers with %d workers", len(layers), workers)

	sem := semaphore.NewWeighted(int64(workers))
	g, ctx := errgroup.WithContext(ctx)

	for i := range layers {
		layer := &layers[i]
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			res, err := o.solveLayer(ctx, layer)
			if err != nil {
				return err
			}
			results[layer.Index] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// workerCount applies the configured bound, then clamps it so solver
// children cannot exhaust the process file-descriptor limit.
func (o *Orchestrator) workerCount() int {
	w := o.cfg.Workers()
	if limit, ok := openFileLimit(); ok {
		if headroom := int(limit / 8); headroom >= 1 && w > headroom {
			o.log.Warn("limiting workers to %d (RLIMIT_NOFILE is %d)", headroom, limit)
			w = headroom
		}
	}
	if w < 1 {
		w = 1
	}
	return w
}

func (o *Orchestrator) solveLayer(ctx context.Context, layer *toolpath.Layer) (Result, error) {
	res := Result{Layer: layer.Index}

	if len(layer.Islands) < 2 {
		res.Skipped = true
		o.metrics.LayersSkipped.Inc(nil)
		return res, nil
	}
	if len(layer.Islands)+1 < o.cfg.MinimumNodes {
		o.log.Debug("layer %d below minimum of %d nodes", layer.Index, o.cfg.MinimumNodes)
		res.Skipped = true
		o.metrics.LayersSkipped.Inc(nil)
		return res, nil
	}

	order, err := o.routeLayer(ctx, layer)
	if err != nil {
		if errors.IsResourceExhaustion(err) {
			return res, errors.ResourceError(err)
		}
		if !errors.IsLayerRecoverable(err) {
			return res, err
		}
		o.log.WithError(err).Warn("layer %d falls back to original island order", layer.Index)
		o.metrics.LayersFallback.Inc(nil)
		return res, nil
	}

	res.Order = order
	o.metrics.LayersSolved.Inc(nil)
	return res, nil
}

// routeLayer writes the problem into a scoped temp dir, runs the
// solver, and reads the tour back. The temp dir is removed on all
// paths.
func (o *Orchestrator) routeLayer(ctx context.Context, layer *toolpath.Layer) ([]int, error) {
	entries := make([]gcode.Position, len(layer.Islands))
	for i, isl := range layer.Islands {
		entries[i] = isl.Entry
	}

	name := fmt.Sprintf("layer_%d", layer.Index)
	problem := tsp.BuildProblem(name, layer.Entry, entries, o.cfg.Precision, o.cfg.NumRuns)

	dir, err := os.MkdirTemp("", "gcodeopt-"+name+"-")
	if err != nil {
		return nil, errors.SolverInvocationError("creating solver work dir", err)
	}
	defer os.RemoveAll(dir)

	problemPath := filepath.Join(dir, name+".tsp")
	if err := problem.WriteFile(problemPath); err != nil {
		return nil, err
	}

	o.metrics.SolverInvocations.Inc(nil)
	stop := o.metrics.SolverDuration.Timer(nil)
	resultPath, err := o.solver.Solve(ctx, problemPath, o.cfg.NumRuns)
	stop()
	if err != nil {
		o.metrics.SolverFailures.Inc(nil)
		return nil, err
	}

	tour, err := tsp.ReadTourFile(resultPath, problem.Dimension)
	if err != nil {
		o.metrics.SolverFailures.Inc(nil)
		return nil, err
	}
	return tour.IslandOrder(), nil
}
