// Run statistics gathered while parsing
//
// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package gcode

import "fmt"

// Stats accumulates counts and distances over one parsed stream.
type Stats struct {
	// Command counts
	TravelMoves  int
	ExtrudeMoves int
	Unknown      int

	// Distances, in the file's units
	TravelDistance    float64
	ExtrusionDistance float64

	// Units declared by the file
	Units Units
}

// Moves returns the total number of positional moves.
func (s Stats) Moves() int {
	return s.TravelMoves + s.ExtrudeMoves
}

// String renders a one-line human-readable summary.
func (s Stats) String() string {
	return fmt.Sprintf("%d extruding / %d travel moves, extrusion %.5f %s, travel %.3f %s",
		s.ExtrudeMoves, s.TravelMoves,
		s.ExtrusionDistance, s.Units, s.TravelDistance, s.Units)
}
