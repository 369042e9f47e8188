// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package toolpath

import (
	"strings"
	"testing"

	"gcodeopt/pkg/gcode"
)

func parse(t *testing.T, input string) []gcode.Command {
	t.Helper()
	p := gcode.NewParser()
	cmds, err := p.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return cmds
}

func TestSplitLayersByZ(t *testing.T) {
	cmds := parse(t, strings.Join([]string{
		"G90",
		"M83",
		"G0 Z0.2",
		"G1 X10 E1",
		"G0 Z0.4",
		"G1 X20 E1",
		"G1 X30 E1",
	}, "\n"))

	layers := SplitLayers(cmds)
	if len(layers) != 2 {
		t.Fatalf("layers = %d, want 2", len(layers))
	}
	if layers[0].Z != 0.2 || layers[1].Z != 0.4 {
		t.Errorf("layer Z = %f/%f, want 0.2/0.4", layers[0].Z, layers[1].Z)
	}
	if layers[1].Index != 1 {
		t.Errorf("second layer index = %d", layers[1].Index)
	}
	if n := len(layers[1].Islands); n != 1 {
		t.Fatalf("second layer islands = %d, want 1", n)
	}
	if n := len(layers[1].Islands[0].Commands); n != 2 {
		t.Errorf("second layer island commands = %d, want 2", n)
	}
}

func TestIslandBoundaries(t *testing.T) {
	cmds := parse(t, strings.Join([]string{
		"G90",
		"M83",
		"G1 X10 Y0 E1",
		"G1 X10 Y10 E1",
		"G0 X50 Y50",
		"G1 X60 Y50 E1",
	}, "\n"))

	layers := SplitLayers(cmds)
	if len(layers) != 1 {
		t.Fatalf("layers = %d, want 1", len(layers))
	}
	islands := layers[0].Islands
	if len(islands) != 2 {
		t.Fatalf("islands = %d, want 2", len(islands))
	}

	first := islands[0]
	if first.Entry.X != 0 || first.Entry.Y != 0 {
		t.Errorf("first entry = (%f,%f), want origin", first.Entry.X, first.Entry.Y)
	}
	if first.Exit.X != 10 || first.Exit.Y != 10 {
		t.Errorf("first exit = (%f,%f)", first.Exit.X, first.Exit.Y)
	}

	second := islands[1]
	if second.Entry.X != 50 || second.Entry.Y != 50 {
		t.Errorf("second entry = (%f,%f), want (50,50)", second.Entry.X, second.Entry.Y)
	}
}

func TestInterIslandTravelDropped(t *testing.T) {
	cmds := parse(t, strings.Join([]string{
		"M83",
		"G1 X10 E1",
		"G0 X50",
		"G1 X60 E1",
	}, "\n"))

	layer := SplitLayers(cmds)[0]
	if len(layer.Epilogue) != 0 {
		t.Errorf("flat inter-island travel should be dropped, epilogue = %d", len(layer.Epilogue))
	}
	// The verbatim stream still carries it.
	if len(layer.Stream) != 4 {
		t.Errorf("stream = %d commands, want 4", len(layer.Stream))
	}
}

func TestZChangingTravelKept(t *testing.T) {
	cmds := parse(t, strings.Join([]string{
		"M83",
		"G1 X10 E1",
		"G0 X10 Z5",
		"M84",
	}, "\n"))

	layer := SplitLayers(cmds)[0]
	if len(layer.Epilogue) != 2 {
		t.Fatalf("epilogue = %d commands, want 2", len(layer.Epilogue))
	}
	if layer.Epilogue[0].Kind != gcode.KindMoveTravel {
		t.Errorf("z-lift travel missing from epilogue")
	}
}

func TestZHopPairCancelled(t *testing.T) {
	cmds := parse(t, strings.Join([]string{
		"M83",
		"G1 X10 E1",
		"G1 Z0.6",
		"G0 X50",
		"G1 Z0",
		"G1 X60 E1",
	}, "\n"))

	layer := SplitLayers(cmds)[0]
	if len(layer.Epilogue) != 0 {
		t.Errorf("cancelled z hop left %d epilogue commands", len(layer.Epilogue))
	}
	if len(layer.Islands) != 2 {
		t.Errorf("islands = %d, want 2", len(layer.Islands))
	}
	// The hop is still replayed when the layer goes out verbatim.
	if len(layer.Stream) != 6 {
		t.Errorf("stream = %d commands, want 6", len(layer.Stream))
	}
}

func TestUnrestoredLiftKept(t *testing.T) {
	cmds := parse(t, strings.Join([]string{
		"M83",
		"G1 X10 E1",
		"G1 Z5",
		"M84",
	}, "\n"))

	layer := SplitLayers(cmds)[0]
	if len(layer.Epilogue) != 2 {
		t.Fatalf("epilogue = %d commands, want 2", len(layer.Epilogue))
	}
	if layer.Epilogue[0].End.Z != 5 {
		t.Errorf("lift missing from epilogue")
	}
}

func TestConnectorPlacement(t *testing.T) {
	cmds := parse(t, strings.Join([]string{
		"M104 S200",
		"G28",
		"M83",
		"G1 X10 E1",
		"G0 X50",
		"M106 S255",
		"G1 X60 E1",
		"G0 X0",
		"M107",
	}, "\n"))

	layer := SplitLayers(cmds)[0]
	if len(layer.Prologue) != 3 {
		t.Errorf("prologue = %d commands, want 3", len(layer.Prologue))
	}
	// Mid-layer fan change is buffered to the end of the layer so it
	// cannot land inside a reordered island.
	if len(layer.Epilogue) != 2 {
		t.Fatalf("epilogue = %d commands, want 2", len(layer.Epilogue))
	}
	if layer.Epilogue[0].Word != "M106" || layer.Epilogue[1].Word != "M107" {
		t.Errorf("epilogue = %s, %s", layer.Epilogue[0].Word, layer.Epilogue[1].Word)
	}
}

func TestStateInsideIslandStays(t *testing.T) {
	cmds := parse(t, strings.Join([]string{
		"M83",
		"G1 X10 E1",
		"M204 P500",
		"G1 X20 E1",
	}, "\n"))

	layer := SplitLayers(cmds)[0]
	if len(layer.Islands) != 1 {
		t.Fatalf("islands = %d, want 1", len(layer.Islands))
	}
	if n := len(layer.Islands[0].Commands); n != 3 {
		t.Errorf("island commands = %d, want 3", n)
	}
}

func TestEmptyInput(t *testing.T) {
	layers := SplitLayers(nil)
	if len(layers) != 1 {
		t.Fatalf("layers = %d, want 1", len(layers))
	}
	if len(layers[0].Islands) != 0 {
		t.Errorf("empty input should yield no islands")
	}
}
