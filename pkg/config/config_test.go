// Unit tests for configuration loading
//
// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeConfig writes a config file, creating a stub solver executable so
// the existence check passes.
func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()

	solver := filepath.Join(dir, "solver")
	if err := os.WriteFile(solver, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}

	body = strings.ReplaceAll(body, "SOLVER", solver)
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	path := writeConfig(t, `{
		"program": "SOLVER",
		"precision": 1000,
		"num_runs": 2,
		"max_merge_length": 1.5
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Precision != 1000 {
		t.Errorf("Precision = %d, want 1000", cfg.Precision)
	}
	if cfg.NumRuns != 2 {
		t.Errorf("NumRuns = %d, want 2", cfg.NumRuns)
	}
	if cfg.MaxMergeLength != 1.5 {
		t.Errorf("MaxMergeLength = %f, want 1.5", cfg.MaxMergeLength)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `{"program": "SOLVER", "precision": 100}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NumRuns != DefaultNumRuns {
		t.Errorf("NumRuns default = %d, want %d", cfg.NumRuns, DefaultNumRuns)
	}
	if cfg.MinimumNodes != DefaultMinimumNodes {
		t.Errorf("MinimumNodes default = %d, want %d", cfg.MinimumNodes, DefaultMinimumNodes)
	}
	if cfg.SolverTimeout() != time.Duration(DefaultSolverTimeoutS)*time.Second {
		t.Errorf("SolverTimeout = %v", cfg.SolverTimeout())
	}
	if cfg.Workers() < 1 {
		t.Errorf("Workers = %d, want >= 1", cfg.Workers())
	}
}

func TestLoadMissingProgram(t *testing.T) {
	path := writeConfig(t, `{"precision": 1000}`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for missing program")
	}
	if !strings.Contains(err.Error(), "program") {
		t.Errorf("error should name the option: %v", err)
	}
}

func TestLoadNonexistentProgram(t *testing.T) {
	path := writeConfig(t, `{"program": "/no/such/solver", "precision": 1000}`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for nonexistent solver executable")
	}
}

func TestLoadInvalidPrecision(t *testing.T) {
	path := writeConfig(t, `{"program": "SOLVER", "precision": 0}`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for zero precision")
	}
	cfgErr, ok := err.(*ConfigError)
	if !ok {
		t.Fatalf("error type = %T, want *ConfigError", err)
	}
	if cfgErr.Option != "precision" {
		t.Errorf("Option = %q, want precision", cfgErr.Option)
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	path := writeConfig(t, `{"program": SOLVER`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestLoadNegativeMergeLength(t *testing.T) {
	path := writeConfig(t, `{"program": "SOLVER", "precision": 1000, "max_merge_length": -1}`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for negative max_merge_length")
	}
}
