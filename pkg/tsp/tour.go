// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package tsp

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"gcodeopt/pkg/errors"
)

// Tour is a validated solver result: a permutation of 1-based node
// indices rotated so the virtual start node leads.
type Tour struct {
	Order []int
}

// ReadTourFile parses and validates a solver result file against the
// expected node count.
func ReadTourFile(path string, dimension int) (*Tour, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTourInvalid, "reading tour file")
	}
	defer f.Close()
	return ParseTour(f, dimension)
}

// ParseTour reads one node index per line, optionally preceded by
// TOUR_SECTION-style headers and terminated by -1 or EOF. The indices
// must form an exact permutation of 1..dimension.
func ParseTour(r io.Reader, dimension int) (*Tour, error) {
	var order []int
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line == "EOF" {
			continue
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			// Header lines are only legal before the first index.
			if len(order) > 0 {
				return nil, errors.TourValidationError("unexpected line " + strconv.Quote(line))
			}
			continue
		}
		if n == -1 {
			break
		}
		order = append(order, n)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrTourInvalid, "reading tour file")
	}

	if len(order) != dimension {
		return nil, errors.TourValidationError(
			"tour has " + strconv.Itoa(len(order)) + " nodes, expected " + strconv.Itoa(dimension))
	}
	seen := make([]bool, dimension+1)
	for _, n := range order {
		if n < 1 || n > dimension || seen[n] {
			return nil, errors.TourValidationError("node " + strconv.Itoa(n) + " is out of range or repeated")
		}
		seen[n] = true
	}

	return &Tour{Order: rotateToStart(order)}, nil
}

// rotateToStart shifts the permutation so node 1 comes first. The
// solver may report the cycle from any starting node.
func rotateToStart(order []int) []int {
	for i, n := range order {
		if n == 1 {
			if i == 0 {
				return order
			}
			rotated := make([]int, 0, len(order))
			rotated = append(rotated, order[i:]...)
			rotated = append(rotated, order[:i]...)
			return rotated
		}
	}
	return order
}

// IslandOrder maps the tour to 0-based island indices, dropping the
// virtual start node.
func (t *Tour) IslandOrder() []int {
	out := make([]int, 0, len(t.Order)-1)
	for _, n := range t.Order[1:] {
		out = append(out, n-2)
	}
	return out
}
