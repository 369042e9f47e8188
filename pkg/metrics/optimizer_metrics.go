// Optimizer-specific metrics definitions
//
// Defines all metrics for a G-code optimization run including:
// - Parser statistics (commands, unknown lines)
// - Layer routing outcomes (solved, fallback, skipped)
// - Solver process metrics (invocations, failures, duration)
// - Travel distance before and after routing
//
// Copyright (C) 2026 Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package metrics

// OptimizerMetrics holds all metrics for one optimization run
type OptimizerMetrics struct {
	// Parser metrics
	CommandsParsed  *Counter
	UnknownCommands *Counter

	// Segmentation metrics
	LayersTotal   *Counter
	IslandsTotal  *Counter
	IslandsMerged *Counter

	// Routing outcomes
	LayersSolved   *Counter
	LayersFallback *Counter
	LayersSkipped  *Counter

	// Solver process metrics
	SolverInvocations *Counter
	SolverFailures    *Counter
	SolverDuration    *Histogram

	// Distance gauges (units follow the input file)
	TravelDistanceIn  *Gauge
	TravelDistanceOut *Gauge
	ExtrusionDistance *Gauge

	registry *Registry
}

// NewOptimizerMetrics creates and registers all optimizer metrics in a
// fresh registry
func NewOptimizerMetrics() *OptimizerMetrics {
	r := NewRegistry()

	m := &OptimizerMetrics{
		CommandsParsed:  NewCounter("gcodeopt_commands_parsed_total", "Parsed instruction lines"),
		UnknownCommands: NewCounter("gcodeopt_unknown_commands_total", "Unrecognized instruction lines passed through"),

		LayersTotal:   NewCounter("gcodeopt_layers_total", "Layers discovered in the input file"),
		IslandsTotal:  NewCounter("gcodeopt_islands_total", "Islands discovered across all layers"),
		IslandsMerged: NewCounter("gcodeopt_islands_merged_total", "Islands collapsed by distance merging"),

		LayersSolved:   NewCounter("gcodeopt_layers_solved_total", "Layers reordered from a solver tour"),
		LayersFallback: NewCounter("gcodeopt_layers_fallback_total", "Layers emitted in original order after a solver failure"),
		LayersSkipped:  NewCounter("gcodeopt_layers_skipped_total", "Layers below the routing threshold"),

		SolverInvocations: NewCounter("gcodeopt_solver_invocations_total", "External solver processes started"),
		SolverFailures:    NewCounter("gcodeopt_solver_failures_total", "Solver invocations that failed"),
		SolverDuration:    NewHistogram("gcodeopt_solver_duration_seconds", "External solver wall time", DefaultBuckets()),

		TravelDistanceIn:  NewGauge("gcodeopt_travel_distance_in", "Non-extruding travel distance in the input"),
		TravelDistanceOut: NewGauge("gcodeopt_travel_distance_out", "Non-extruding travel distance in the output"),
		ExtrusionDistance: NewGauge("gcodeopt_extrusion_distance", "Extruding distance in the input"),

		registry: r,
	}

	r.MustRegister(m.CommandsParsed)
	r.MustRegister(m.UnknownCommands)
	r.MustRegister(m.LayersTotal)
	r.MustRegister(m.IslandsTotal)
	r.MustRegister(m.IslandsMerged)
	r.MustRegister(m.LayersSolved)
	r.MustRegister(m.LayersFallback)
	r.MustRegister(m.LayersSkipped)
	r.MustRegister(m.SolverInvocations)
	r.MustRegister(m.SolverFailures)
	r.MustRegister(m.SolverDuration)
	r.MustRegister(m.TravelDistanceIn)
	r.MustRegister(m.TravelDistanceOut)
	r.MustRegister(m.ExtrusionDistance)

	return m
}

// Gather renders all run metrics in Prometheus text format
func (m *OptimizerMetrics) Gather() string {
	return m.registry.Gather()
}
