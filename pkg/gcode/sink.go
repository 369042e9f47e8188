// Unsupported-command sink
//
// Unrecognized instruction lines are never fatal: they pass through to
// the output unchanged and are recorded here for operator review. The
// sink is injected into the Parser and shared by concurrent workers, so
// implementations must be safe for concurrent use.
//
// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package gcode

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// UnsupportedSink receives every unrecognized input line.
type UnsupportedSink interface {
	// Record appends one unrecognized line. Implementations must not
	// fail the caller; recording is best-effort.
	Record(line int, raw string)
}

// NopSink discards all records.
type NopSink struct{}

func (NopSink) Record(int, string) {}

// FileSink appends unrecognized lines to a writer behind a mutex.
type FileSink struct {
	mu    sync.Mutex
	w     io.Writer
	c     io.Closer
	count int
}

// NewFileSink creates (truncating) the sink file at path.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating unsupported-command log %s: %w", path, err)
	}
	return &FileSink{w: f, c: f}, nil
}

// NewWriterSink wraps an arbitrary writer (used by tests).
func NewWriterSink(w io.Writer) *FileSink {
	return &FileSink{w: w}
}

// Record implements UnsupportedSink.
func (s *FileSink) Record(line int, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	fmt.Fprintf(s.w, "line %d: %s\n", line, raw)
}

// Count returns the number of recorded lines.
func (s *FileSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Close closes the underlying file, if any.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return nil
	}
	return s.c.Close()
}
