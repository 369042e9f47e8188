// External route solver invocation
//
// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package solver

import (
	"context"
	"path/filepath"
	"strings"
)

// Solver runs one routing problem and returns the path of the result
// file it produced. Implementations must respect ctx cancellation.
type Solver interface {
	Solve(ctx context.Context, problemPath string, runs int) (string, error)
}

// ResultPath is the agreed location of a problem's result file: the
// problem path with its extension replaced by .tour.
func ResultPath(problemPath string) string {
	return strings.TrimSuffix(problemPath, filepath.Ext(problemPath)) + ".tour"
}
