// JSON configuration loading for the G-code route optimizer
//
// The configuration file is a flat JSON object. Recognized options:
//
//	program          path to the external route solver executable (required)
//	precision        integer scale factor for solver coordinates (required)
//	num_runs         solver repeat count per layer (default 1)
//	max_merge_length island merge distance threshold (default 0 = no merging)
//	minimum_nodes    smallest problem worth routing (default 3)
//	max_workers      concurrent solver process bound (default: CPU count)
//	solver_timeout_s per-invocation timeout in seconds (default 60)
//
// The Config is loaded once, validated, and read-only thereafter; the
// same instance is shared by all layer workers.
//
// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"time"
)

// Defaults applied for omitted optional fields.
const (
	DefaultNumRuns        = 1
	DefaultMinimumNodes   = 3
	DefaultSolverTimeoutS = 60
)

// Config holds the validated optimizer configuration.
type Config struct {
	// Program is the path to the external route solver executable.
	Program string `json:"program"`

	// Precision is the scale factor converting floating coordinates to
	// the solver's integer domain (1000 keeps 3 decimal places).
	Precision int `json:"precision"`

	// NumRuns is the solver repeat count per layer problem.
	NumRuns int `json:"num_runs"`

	// MaxMergeLength is the entry-to-entry distance below which adjacent
	// islands are merged before routing. Zero disables merging.
	MaxMergeLength float64 `json:"max_merge_length"`

	// MinimumNodes is the smallest node count (islands plus the virtual
	// start) for which a layer is routed at all.
	MinimumNodes int `json:"minimum_nodes"`

	// MaxWorkers bounds the number of concurrently running solver
	// processes.
	MaxWorkers int `json:"max_workers"`

	// SolverTimeoutS is the per-invocation timeout in seconds.
	SolverTimeoutS int `json:"solver_timeout_s"`
}

// Load reads, decodes, and validates the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapError("", fmt.Errorf("unable to read config file %s: %w", path, err))
	}

	cfg := &Config{
		NumRuns:        DefaultNumRuns,
		MinimumNodes:   DefaultMinimumNodes,
		SolverTimeoutS: DefaultSolverTimeoutS,
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, WrapError("", fmt.Errorf("unable to parse JSON in %s: %w", path, err))
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks every option; the first violation is returned.
func (c *Config) validate() error {
	if c.Program == "" {
		return ErrMissingOption("program")
	}
	if _, err := os.Stat(c.Program); err != nil {
		return NewConfigError("program", fmt.Sprintf("solver executable %s does not exist", c.Program))
	}
	if c.Precision <= 0 {
		return ErrInvalidValue("precision", c.Precision, "a positive integer")
	}
	if c.NumRuns <= 0 {
		return ErrInvalidValue("num_runs", c.NumRuns, "a positive integer")
	}
	if c.MaxMergeLength < 0 {
		return ErrInvalidValue("max_merge_length", c.MaxMergeLength, "a non-negative number")
	}
	if c.MinimumNodes < 2 {
		return ErrInvalidValue("minimum_nodes", c.MinimumNodes, "at least 2")
	}
	if c.MaxWorkers < 0 {
		return ErrInvalidValue("max_workers", c.MaxWorkers, "a non-negative integer")
	}
	if c.SolverTimeoutS <= 0 {
		return ErrInvalidValue("solver_timeout_s", c.SolverTimeoutS, "a positive integer")
	}
	return nil
}

// Workers resolves the concurrency bound, defaulting to the CPU count.
func (c *Config) Workers() int {
	if c.MaxWorkers > 0 {
		return c.MaxWorkers
	}
	return runtime.NumCPU()
}

// SolverTimeout returns the per-invocation timeout as a duration.
func (c *Config) SolverTimeout() time.Duration {
	return time.Duration(c.SolverTimeoutS) * time.Second
}
