// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package toolpath

import "gcodeopt/pkg/gcode"

// MergeIslands greedily fuses islands that are adjacent in input order
// when the entry-to-entry plane distance is strictly below maxDist.
// Merging keeps both command sequences intact with a synthesized
// travel bridging them; the composite takes the first island's entry
// and the last island's exit. Input order is the tie-break so results
// are reproducible.
func MergeIslands(islands []Island, maxDist float64) []Island {
	if len(islands) < 2 {
		return islands
	}
	merged := make([]Island, 0, len(islands))
	cur := islands[0]
	for _, next := range islands[1:] {
		if cur.Entry.PlaneDistanceTo(next.Entry) < maxDist {
			cur = join(cur, next)
			continue
		}
		merged = append(merged, cur)
		cur = next
	}
	return append(merged, cur)
}

func join(a, b Island) Island {
	bridge := gcode.Command{
		Kind:  gcode.KindMoveTravel,
		Word:  "G0",
		Raw:   gcode.FormatTravel(a.Exit, b.Entry),
		Start: a.Exit,
		End:   b.Entry,
	}
	cmds := make([]gcode.Command, 0, len(a.Commands)+len(b.Commands)+1)
	cmds = append(cmds, a.Commands...)
	cmds = append(cmds, bridge)
	cmds = append(cmds, b.Commands...)
	return Island{Commands: cmds, Entry: a.Entry, Exit: b.Exit}
}
