// Output stream reconstruction
//
// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package optimize

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"

	"gcodeopt/pkg/gcode"
	"gcodeopt/pkg/toolpath"
)

// Reconstructor emits the optimized instruction stream. Unrouted
// layers are copied verbatim; routed layers are re-emitted in tour
// order with synthesized travel between islands. It tracks the machine
// state the emitted stream actually produces, across layer boundaries,
// so that reordering one layer cannot leak a stale toolhead position
// or extruder register into the next: whenever the tracked state
// disagrees with what the next block of raw lines assumes, a travel
// hop and a G92 resync are synthesized first.
type Reconstructor struct {
	w     *bufio.Writer
	state gcode.Position
}

func NewReconstructor(w io.Writer) *Reconstructor {
	return &Reconstructor{w: bufio.NewWriter(w)}
}

// WriteHeader emits the provenance comment block.
func (r *Reconstructor) WriteHeader(inputPath string) {
	fmt.Fprintln(r.w, ";generated by gcodeopt")
	fmt.Fprintf(r.w, ";original file: %s\n", filepath.Base(inputPath))
}

// WriteLayer emits one layer according to its routing result.
func (r *Reconstructor) WriteLayer(layer *toolpath.Layer, res Result) {
	if res.Order == nil {
		r.writeVerbatim(layer)
		return
	}

	for _, cmd := range layer.Prologue {
		r.emit(cmd.Raw)
		r.apply(cmd)
	}

	for _, islandIdx := range res.Order {
		isl := layer.Islands[islandIdx]
		r.moveTo(isl.Entry)
		r.resync(isl.Entry)
		for _, cmd := range isl.Commands {
			r.emit(cmd.Raw)
		}
		// Entry state matched, so the island replays exactly as it
		// did in the original order.
		r.state = isl.Exit
	}

	for _, cmd := range layer.Epilogue {
		r.emit(cmd.Raw)
		r.apply(cmd)
	}
}

// writeVerbatim re-emits an unrouted layer's original stream. A routed
// predecessor may have consumed this layer's approach travel and left
// the extruder register elsewhere, so the layer's entry state is
// restored first.
func (r *Reconstructor) writeVerbatim(layer *toolpath.Layer) {
	if len(layer.Stream) == 0 {
		return
	}
	entry := layer.Stream[0].Start
	r.moveTo(entry)
	r.resync(entry)
	for _, cmd := range layer.Stream {
		r.emit(cmd.Raw)
	}
	r.state = layer.Stream[len(layer.Stream)-1].End
}

// moveTo synthesizes a travel hop when the tracked toolhead stands
// somewhere other than p. The tour's virtual start is the tool's
// actual position, so an already-positioned toolhead emits nothing.
func (r *Reconstructor) moveTo(p gcode.Position) {
	if r.state.X == p.X && r.state.Y == p.Y {
		return
	}
	r.emit(gcode.FormatTravel(r.state, p))
	r.state.X, r.state.Y, r.state.Z = p.X, p.Y, p.Z
	if p.Feed > 0 {
		r.state.Feed = p.Feed
	}
}

// resync redefines the extruder register when absolute extrusion would
// otherwise replay stale E values.
func (r *Reconstructor) resync(p gcode.Position) {
	if !extruderAbsolute(p) || r.state.E == p.E {
		return
	}
	r.emit(gcode.FormatExtruderReset(p.E))
	r.state.E = p.E
}

// apply advances the tracked machine state over a re-emitted raw
// command. Absolute coordinates replay independently of history;
// relative moves advance by their original delta.
func (r *Reconstructor) apply(cmd gcode.Command) {
	r.state.Positioning = cmd.End.Positioning
	r.state.Extruder = cmd.End.Extruder
	r.state.Units = cmd.End.Units
	if cmd.HasF && cmd.Feed > 0 {
		r.state.Feed = cmd.Feed
	}

	switch cmd.Kind {
	case gcode.KindMoveExtrude, gcode.KindMoveTravel:
		relative := cmd.End.Positioning == gcode.ModeRelative
		if cmd.HasX {
			r.state.X = applyAxis(r.state.X, cmd.X, relative)
		}
		if cmd.HasY {
			r.state.Y = applyAxis(r.state.Y, cmd.Y, relative)
		}
		if cmd.HasZ {
			r.state.Z = applyAxis(r.state.Z, cmd.Z, relative)
		}
		if cmd.HasE {
			if extruderAbsolute(cmd.End) {
				r.state.E = cmd.E
			} else {
				r.state.E += cmd.E
			}
		}
	case gcode.KindHome:
		r.state.X, r.state.Y, r.state.Z = cmd.End.X, cmd.End.Y, cmd.End.Z
	case gcode.KindSetPosition:
		if cmd.HasX {
			r.state.X = cmd.X
		}
		if cmd.HasY {
			r.state.Y = cmd.Y
		}
		if cmd.HasZ {
			r.state.Z = cmd.Z
		}
		if cmd.HasE {
			r.state.E = cmd.E
		}
	}
}

func applyAxis(current, value float64, relative bool) float64 {
	if relative {
		return current + value
	}
	return value
}

// Flush completes the output stream.
func (r *Reconstructor) Flush() error {
	return r.w.Flush()
}

func (r *Reconstructor) emit(line string) {
	r.w.WriteString(line)
	r.w.WriteByte('\n')
}

// extruderAbsolute resolves the extrusion addressing mode the same way
// extrusion deltas are computed: explicit extruder mode wins, then the
// positioning mode, defaulting to absolute.
func extruderAbsolute(p gcode.Position) bool {
	if p.Extruder != gcode.ModeNotSet {
		return p.Extruder == gcode.ModeAbsolute
	}
	if p.Positioning != gcode.ModeNotSet {
		return p.Positioning == gcode.ModeAbsolute
	}
	return true
}
