// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package toolpath

import (
	"testing"

	"gcodeopt/pkg/gcode"
)

func island(entryX, entryY, exitX, exitY float64) Island {
	entry := gcode.Position{X: entryX, Y: entryY, Positioning: gcode.ModeAbsolute}
	exit := gcode.Position{X: exitX, Y: exitY, Positioning: gcode.ModeAbsolute}
	return Island{
		Commands: []gcode.Command{{
			Kind:  gcode.KindMoveExtrude,
			Word:  "G1",
			Raw:   "G1 X0 E1",
			Start: entry,
			End:   exit,
		}},
		Entry: entry,
		Exit:  exit,
	}
}

func TestMergeCloseIslands(t *testing.T) {
	islands := []Island{
		island(0, 0, 0.2, 0),
		island(0.5, 0, 0.7, 0),
		island(50, 0, 51, 0),
	}

	merged := MergeIslands(islands, 1.0)
	if len(merged) != 2 {
		t.Fatalf("merged = %d islands, want 2", len(merged))
	}

	first := merged[0]
	if first.Entry.X != 0 || first.Exit.X != 0.7 {
		t.Errorf("composite entry/exit = %f/%f, want 0/0.7", first.Entry.X, first.Exit.X)
	}
	// Two originals plus the bridging travel.
	if len(first.Commands) != 3 {
		t.Errorf("composite commands = %d, want 3", len(first.Commands))
	}
	if first.Commands[1].Kind != gcode.KindMoveTravel {
		t.Errorf("bridge command kind = %v", first.Commands[1].Kind)
	}
}

func TestMergeThresholdIsStrict(t *testing.T) {
	islands := []Island{
		island(0, 0, 0, 0),
		island(1, 0, 1, 0),
	}

	if got := MergeIslands(islands, 1.0); len(got) != 2 {
		t.Errorf("distance equal to threshold must not merge, got %d", len(got))
	}
	if got := MergeIslands(islands, 1.001); len(got) != 1 {
		t.Errorf("distance below threshold must merge, got %d", len(got))
	}
}

func TestMergeDisabledByZeroThreshold(t *testing.T) {
	islands := []Island{
		island(0, 0, 0, 0),
		island(0, 0, 0, 0),
	}

	if got := MergeIslands(islands, 0); len(got) != 2 {
		t.Errorf("zero threshold should never merge, got %d", len(got))
	}
}

func TestMergeChainUsesCompositeEntry(t *testing.T) {
	// The second merge compares against the composite entry, not the
	// most recent island's entry.
	islands := []Island{
		island(0, 0, 0, 0),
		island(0.5, 0, 0.5, 0),
		island(1.2, 0, 1.2, 0),
	}

	merged := MergeIslands(islands, 1.0)
	if len(merged) != 2 {
		t.Fatalf("merged = %d islands, want 2", len(merged))
	}
	if merged[1].Entry.X != 1.2 {
		t.Errorf("third island should stand alone, entry = %f", merged[1].Entry.X)
	}
}

func TestMergeSingleIsland(t *testing.T) {
	islands := []Island{island(0, 0, 1, 1)}
	if got := MergeIslands(islands, 10); len(got) != 1 {
		t.Errorf("single island should pass through, got %d", len(got))
	}
}
