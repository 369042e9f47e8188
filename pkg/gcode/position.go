// Machine position and mode tracking
//
// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package gcode

import "math"

// Mode is a coordinate interpretation mode (positioning or extrusion).
type Mode int

const (
	// ModeNotSet means the file has not declared the mode yet. Commands
	// are interpreted as absolute until told otherwise.
	ModeNotSet Mode = iota
	// ModeAbsolute interprets coordinates as absolute positions.
	ModeAbsolute
	// ModeRelative interprets coordinates as deltas.
	ModeRelative
)

func (m Mode) String() string {
	switch m {
	case ModeAbsolute:
		return "absolute"
	case ModeRelative:
		return "relative"
	default:
		return "not set"
	}
}

// Units is the measurement unit declared by the file.
type Units int

const (
	UnitsNotSet Units = iota
	UnitsMillimeters
	UnitsInches
)

func (u Units) String() string {
	switch u {
	case UnitsMillimeters:
		return "mm"
	case UnitsInches:
		return "in"
	default:
		return "units"
	}
}

// Position is the machine's coordinate and state vector, tracked
// incrementally while parsing. Each Command's effect on Position is
// deterministic given the prior Position.
type Position struct {
	X, Y, Z float64

	// E is the cumulative extrusion amount.
	E float64

	// Feed is the modal feed rate (zero until first set).
	Feed float64

	// Positioning is the coordinate mode for X/Y/Z.
	Positioning Mode

	// Extruder is the coordinate mode for E.
	Extruder Mode

	// Units is the declared measurement unit.
	Units Units
}

// DistanceTo returns the 3D Euclidean distance to q.
func (p Position) DistanceTo(q Position) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	dz := p.Z - q.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// PlaneDistanceTo returns the 2D (XY) Euclidean distance to q.
func (p Position) PlaneDistanceTo(q Position) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}
