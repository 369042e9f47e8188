// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package optimize

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"gcodeopt/pkg/config"
	"gcodeopt/pkg/gcode"
	"gcodeopt/pkg/log"
	"gcodeopt/pkg/metrics"
	"gcodeopt/pkg/solver"
	"gcodeopt/pkg/toolpath"
)

func testConfig() *config.Config {
	return &config.Config{
		Program:        "unused",
		Precision:      1000,
		NumRuns:        1,
		MinimumNodes:   3,
		MaxWorkers:     4,
		SolverTimeoutS: 60,
	}
}

func parseLayers(t *testing.T, input string) []toolpath.Layer {
	t.Helper()
	p := gcode.NewParser()
	cmds, err := p.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	return toolpath.SplitLayers(cmds)
}

// twoIslandLayer yields one layer whose second island is far closer to
// the start than the first, so a working solver must swap them.
func twoIslandLayer(t *testing.T) []toolpath.Layer {
	t.Helper()
	return parseLayers(t, strings.Join([]string{
		"G90",
		"M83",
		"G0 X100",
		"G1 X110 E1",
		"G0 X1",
		"G1 X2 E1",
	}, "\n"))
}

func TestSolveLayersReorders(t *testing.T) {
	layers := twoIslandLayer(t)

	o := NewOrchestrator(testConfig(), &solver.Fake{}, metrics.NewOptimizerMetrics())
	results, err := o.SolveLayers(context.Background(), layers)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(results[0].Order, []int{1, 0}) {
		t.Errorf("order = %v, want [1 0]", results[0].Order)
	}
}

func TestSolveLayersSkipsSmallLayers(t *testing.T) {
	layers := parseLayers(t, "M83\nG1 X10 E1\n")

	o := NewOrchestrator(testConfig(), &solver.Fake{}, metrics.NewOptimizerMetrics())
	results, err := o.SolveLayers(context.Background(), layers)
	if err != nil {
		t.Fatal(err)
	}
	if !results[0].Skipped || results[0].Order != nil {
		t.Errorf("single-island layer should be skipped, got %+v", results[0])
	}
}

func TestSolveLayersMinimumNodes(t *testing.T) {
	layers := twoIslandLayer(t)

	cfg := testConfig()
	cfg.MinimumNodes = 4 // two islands + virtual start = 3 nodes

	fake := &solver.Fake{}
	o := NewOrchestrator(cfg, fake, metrics.NewOptimizerMetrics())
	results, err := o.SolveLayers(context.Background(), layers)
	if err != nil {
		t.Fatal(err)
	}
	if !results[0].Skipped {
		t.Error("layer under the node threshold should be skipped")
	}
	if fake.Calls() != 0 {
		t.Errorf("solver ran %d times for a skipped layer", fake.Calls())
	}
}

func TestSolveLayersFallbackOnFailure(t *testing.T) {
	layers := twoIslandLayer(t)

	var buf strings.Builder
	lg := log.New("orchestrator")
	lg.SetWriter(&buf)
	lg.SetLevel(log.WARN)
	log.SetDefaultLogger(lg)
	defer log.SetDefaultLogger(log.New("gcodeopt"))

	m := metrics.NewOptimizerMetrics()
	o := NewOrchestrator(testConfig(), &solver.Fake{Fail: true}, m)
	results, err := o.SolveLayers(context.Background(), layers)
	if err != nil {
		t.Fatalf("recoverable failure must not abort the run: %v", err)
	}
	if results[0].Order != nil || results[0].Skipped {
		t.Errorf("failed layer should fall back, got %+v", results[0])
	}
	if n := strings.Count(buf.String(), "falls back"); n != 1 {
		t.Errorf("fallback warned %d times, want exactly 1:\n%s", n, buf.String())
	}
	if m.LayersFallback.Get(nil) != 1 {
		t.Errorf("fallback counter = %d", m.LayersFallback.Get(nil))
	}
}

func TestSolveLayersBoundsConcurrency(t *testing.T) {
	// Many layers, two workers: the fake's high-water mark must never
	// exceed the bound.
	var lines []string
	lines = append(lines, "G90", "M83")
	for i := 0; i < 8; i++ {
		z := fmt.Sprintf("%.1f", 0.2*float64(i+1))
		lines = append(lines,
			"G0 X100 Z"+z,
			"G1 X110 E1",
			"G0 X1",
			"G1 X2 E1",
			"G0 X50",
			"G1 X60 E1",
		)
	}
	layers := parseLayers(t, strings.Join(lines, "\n"))
	if len(layers) != 8 {
		t.Fatalf("layers = %d, want 8", len(layers))
	}

	cfg := testConfig()
	cfg.MaxWorkers = 2

	fake := &solver.Fake{Delay: 20 * time.Millisecond}
	o := NewOrchestrator(cfg, fake, metrics.NewOptimizerMetrics())
	if _, err := o.SolveLayers(context.Background(), layers); err != nil {
		t.Fatal(err)
	}
	if fake.Calls() != 8 {
		t.Errorf("calls = %d, want 8", fake.Calls())
	}
	if fake.MaxActive() > 2 {
		t.Errorf("observed %d concurrent solver runs, bound is 2", fake.MaxActive())
	}
}

func TestWorkerCountNeverZero(t *testing.T) {
	cfg := testConfig()
	cfg.MaxWorkers = 0 // defaults to NumCPU, clamped by fd headroom

	o := NewOrchestrator(cfg, &solver.Fake{}, metrics.NewOptimizerMetrics())
	if w := o.workerCount(); w < 1 {
		t.Errorf("workerCount = %d", w)
	}
}
