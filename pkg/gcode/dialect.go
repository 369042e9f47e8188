// Instruction dialect table
//
// Command recognition is data-driven: the Dialect maps a leading
// instruction word to the action the parser applies. Vendor dialects can
// extend or override the default table without touching parser logic.
//
// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package gcode

import "strings"

// Action is the parser behavior bound to an instruction word.
type Action int

const (
	// ActionUnknown marks words absent from the dialect.
	ActionUnknown Action = iota

	// ActionMove parses X/Y/Z/E/F arguments and advances the position.
	ActionMove

	// ActionHome moves to the origin, with explicit axes overriding.
	ActionHome

	// ActionSetPosition redefines the current position from arguments.
	ActionSetPosition

	// Mode switches.
	ActionPositioningAbsolute
	ActionPositioningRelative
	ActionExtruderAbsolute
	ActionExtruderRelative
	ActionUnitsMillimeters
	ActionUnitsInches

	// ActionPassthrough recognizes the word and preserves the line
	// verbatim without any state effect.
	ActionPassthrough
)

// Dialect maps instruction words to parser actions.
type Dialect map[string]Action

// Lookup resolves a word case-insensitively.
func (d Dialect) Lookup(word string) Action {
	return d[strings.ToUpper(word)]
}

// DefaultDialect returns the RepRap/Marlin-flavored table covering the
// commands common slicers emit. Words not listed are passed through as
// unknown and reported.
func DefaultDialect() Dialect {
	d := Dialect{
		"G0":  ActionMove,
		"G1":  ActionMove,
		"G28": ActionHome,
		"G92": ActionSetPosition,

		"G90": ActionPositioningAbsolute,
		"G91": ActionPositioningRelative,
		"M82": ActionExtruderAbsolute,
		"M83": ActionExtruderRelative,
		"G20": ActionUnitsInches,
		"G21": ActionUnitsMillimeters,
	}

	// State and configuration commands preserved verbatim: dwell,
	// probing, motor control, temperatures, fans, accelerations, and
	// the vendor commands slicers commonly emit.
	passthrough := []string{
		"G4", "G29",
		"M17", "M73", "M74", "M84",
		"M104", "M106", "M107", "M109", "M115",
		"M140", "M142", "M190",
		"M201", "M203", "M204", "M205", "M221",
		"M302", "M555", "M569", "M572", "M593", "M900",
		"M862.1", "M862.3", "M862.5", "M862.6",
		"T0",
	}
	for _, word := range passthrough {
		d[word] = ActionPassthrough
	}
	return d
}
