// Layer and island segmentation
//
// Splits a parsed command stream into layers (runs of commands sharing
// a Z height) and, within each layer, into islands: maximal runs of
// extruding moves bounded by travel. Islands are the unit the route
// optimizer reorders; everything between them is layer-level connector
// state that must survive reordering.
//
// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package toolpath

import (
	"gcodeopt/pkg/gcode"
)

// Island is a contiguous extruding run. Commands holds the extruding
// moves plus any state commands issued mid-run, in original order.
// Entry is the tool position before the first command and Exit the
// position after the last.
type Island struct {
	Commands []gcode.Command
	Entry    gcode.Position
	Exit     gcode.Position
}

// Len reports the number of commands in the island.
func (isl Island) Len() int { return len(isl.Commands) }

// Layer groups the commands printed at one Z height. Prologue holds
// connector commands seen before the first island, Epilogue the rest.
// Stream retains every command of the layer in original order so an
// unoptimized layer can be re-emitted verbatim.
type Layer struct {
	Index    int
	Z        float64
	Entry    gcode.Position
	Prologue []gcode.Command
	Islands  []Island
	Epilogue []gcode.Command
	Stream   []gcode.Command
}

// SplitLayers partitions a command stream into layers. A new layer
// begins when an extruding move lands on a different Z than the
// current layer prints at; the move itself opens the new layer.
func SplitLayers(cmds []gcode.Command) []Layer {
	var layers []Layer
	b := newLayerBuilder(0)
	for _, cmd := range cmds {
		if cmd.Kind == gcode.KindMoveExtrude && b.zSet && cmd.End.Z != b.z {
			layers = append(layers, b.finish())
			b = newLayerBuilder(len(layers))
		}
		b.add(cmd)
	}
	if len(b.stream) > 0 || len(layers) == 0 {
		layers = append(layers, b.finish())
	}
	return layers
}

type layerBuilder struct {
	index    int
	z        float64
	zSet     bool
	entry    gcode.Position
	entrySet bool
	open     *Island
	islands  []Island
	prologue []gcode.Command
	epilogue []gcode.Command
	stream   []gcode.Command
}

func newLayerBuilder(index int) *layerBuilder {
	return &layerBuilder{index: index}
}

func (b *layerBuilder) add(cmd gcode.Command) {
	if !b.entrySet {
		b.entry = cmd.Start
		b.entrySet = true
	}
	b.stream = append(b.stream, cmd)

	switch cmd.Kind {
	case gcode.KindMoveExtrude:
		if !b.zSet {
			b.z = cmd.End.Z
			b.zSet = true
		}
		if b.open == nil {
			b.open = &Island{Entry: cmd.Start}
		}
		b.open.Commands = append(b.open.Commands, cmd)

	case gcode.KindMoveTravel:
		b.closeIsland()
		// A travel that changes Z is a lift or layer transition
		// and must survive reordering. Pure XY travel is dropped
		// everywhere; the reconstructor synthesizes positioning
		// moves in tour order.
		if cmd.End.Z != cmd.Start.Z {
			b.zConnector(cmd)
		}

	case gcode.KindHome, gcode.KindSetPosition:
		b.closeIsland()
		b.connector(cmd)

	default:
		if b.open != nil {
			b.open.Commands = append(b.open.Commands, cmd)
		} else {
			b.connector(cmd)
		}
	}
}

func (b *layerBuilder) closeIsland() {
	if b.open == nil {
		return
	}
	b.open.Exit = b.open.Commands[len(b.open.Commands)-1].End
	b.islands = append(b.islands, *b.open)
	b.open = nil
}

// zConnector buffers a Z-changing travel. A lift that is undone
// before the layer moves on is a Z hop over a dropped travel;
// re-emitting both ends of the hop at the layer boundary would wiggle
// the nozzle in place, so a restore cancels the lift it directly
// follows. The hop still survives in Stream for verbatim layers.
func (b *layerBuilder) zConnector(cmd gcode.Command) {
	list := &b.epilogue
	if len(b.islands) == 0 && b.open == nil {
		list = &b.prologue
	}
	if b.zSet && cmd.End.Z == b.z && len(*list) > 0 {
		last := (*list)[len(*list)-1]
		if last.Kind == gcode.KindMoveTravel && last.Start.Z == b.z && last.End.Z == cmd.Start.Z {
			*list = (*list)[:len(*list)-1]
			return
		}
	}
	*list = append(*list, cmd)
}

func (b *layerBuilder) connector(cmd gcode.Command) {
	if len(b.islands) == 0 && b.open == nil {
		b.prologue = append(b.prologue, cmd)
	} else {
		b.epilogue = append(b.epilogue, cmd)
	}
}

func (b *layerBuilder) finish() Layer {
	b.closeIsland()
	return Layer{
		Index:    b.index,
		Z:        b.z,
		Entry:    b.entry,
		Prologue: b.prologue,
		Islands:  b.islands,
		Epilogue: b.epilogue,
		Stream:   b.stream,
	}
}
