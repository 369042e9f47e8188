// Parsed instruction model
//
// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package gcode

// Kind classifies a parsed instruction.
type Kind int

const (
	// KindUnknown marks an unrecognized line, passed through unchanged.
	KindUnknown Kind = iota

	// KindMoveExtrude is a positional move with a positive extrusion
	// delta (G0/G1 with E).
	KindMoveExtrude

	// KindMoveTravel is a positional move without extrusion.
	KindMoveTravel

	// KindHome moves to the machine origin (G28).
	KindHome

	// KindSetPosition redefines the current position (G92).
	KindSetPosition

	// KindState is a recognized state or configuration command that is
	// preserved verbatim (mode switches, temperatures, fans, ...).
	KindState

	// KindComment is an empty or comment-only line.
	KindComment
)

func (k Kind) String() string {
	switch k {
	case KindMoveExtrude:
		return "move-extrude"
	case KindMoveTravel:
		return "move-travel"
	case KindHome:
		return "home"
	case KindSetPosition:
		return "set-position"
	case KindState:
		return "state"
	case KindComment:
		return "comment"
	default:
		return "unknown"
	}
}

// Command is one parsed machine instruction. It carries both the
// structured fields and the original raw text, and is immutable once
// parsed.
type Command struct {
	// Kind is the classification tag.
	Kind Kind

	// Word is the uppercased leading instruction word ("G1", "M106").
	// Empty for comments.
	Word string

	// Raw is the original line text, without trailing newline. Output
	// reconstruction re-emits Raw for every command that isn't
	// synthesized, so unmodified fields round-trip exactly.
	Raw string

	// Line is the 1-based input line number.
	Line int

	// Parsed argument fields; each is valid only if the matching Has
	// flag is set.
	X, Y, Z, E, Feed             float64
	HasX, HasY, HasZ, HasE, HasF bool

	// EDelta is the extrusion amount this command adds, already
	// normalized for the extruder mode (zero for non-extruding moves).
	EDelta float64

	// Start is the machine position before this command, End the
	// position after it.
	Start, End Position
}

// Extrudes reports whether the command deposits material.
func (c Command) Extrudes() bool {
	return c.Kind == KindMoveExtrude
}

// IsMove reports whether the command is a positional G0/G1 move.
func (c Command) IsMove() bool {
	return c.Kind == KindMoveExtrude || c.Kind == KindMoveTravel
}
