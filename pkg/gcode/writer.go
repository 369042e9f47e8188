// Output line formatting
//
// The reconstruction stage synthesizes only two command shapes: travel
// moves between islands and extruder position resyncs. Everything else
// is re-emitted from the original raw text.
//
// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package gcode

import (
	"strconv"

	"gcodeopt/pkg/pool"
)

// FormatTravel renders a non-extruding G0 move from one position to
// another, honoring the positioning mode. The feed rate active at the
// destination is carried on the move so modal feed state is identical
// to the original path.
func FormatTravel(from, to Position) string {
	buf := pool.GetByteBuffer()
	defer pool.PutByteBuffer(buf)

	x, y, z := to.X, to.Y, to.Z
	if to.Positioning == ModeRelative {
		x -= from.X
		y -= from.Y
		z -= from.Z
	}

	buf.WriteString("G0 X")
	writeCoord(buf, x)
	buf.WriteString(" Y")
	writeCoord(buf, y)
	if to.Z != from.Z || to.Positioning == ModeRelative {
		buf.WriteString(" Z")
		writeCoord(buf, z)
	}
	if to.Feed > 0 {
		buf.WriteString(" F")
		buf.WriteString(strconv.FormatFloat(to.Feed, 'f', -1, 64))
	}
	return buf.String()
}

// FormatExtruderReset renders a G92 that redefines the extruder
// position, used to keep absolute E values valid after reordering.
func FormatExtruderReset(e float64) string {
	buf := pool.GetByteBuffer()
	defer pool.PutByteBuffer(buf)

	buf.WriteString("G92 E")
	buf.WriteString(strconv.FormatFloat(e, 'f', 5, 64))
	return buf.String()
}

// writeCoord renders a coordinate with three decimal places, the
// precision slicers conventionally emit.
func writeCoord(buf *pool.ByteBuffer, v float64) {
	buf.WriteString(strconv.FormatFloat(v, 'f', 3, 64))
}
