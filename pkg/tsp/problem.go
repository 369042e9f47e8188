// Routing problem construction
//
// A layer's islands become a symmetric Euclidean routing problem in
// the TSPLIB text format the external solver consumes. Node 1 is a
// virtual start fixed at the tool position entering the layer, so the
// solver optimizes an open path from the current position rather than
// a closed loop. The remaining nodes are island entry points scaled
// to integer coordinates.
//
// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package tsp

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gcodeopt/pkg/errors"
	"gcodeopt/pkg/gcode"
)

// Node is a scaled integer coordinate pair.
type Node struct {
	X, Y int64
}

// Problem is one layer's routing instance. Nodes[0] is the virtual
// start node; Nodes[1:] correspond to islands in input order.
type Problem struct {
	Name      string
	Comment   string
	Dimension int
	Runs      int
	Nodes     []Node
}

// Scale converts a floating coordinate to the solver's integer grid.
func Scale(v float64, precision int) int64 {
	return int64(math.Round(v * float64(precision)))
}

// Unscale converts a grid coordinate back to model units.
func Unscale(v int64, precision int) float64 {
	return float64(v) / float64(precision)
}

// BuildProblem assembles the routing problem for one layer. start is
// the tool position when the layer begins; entries are the island
// entry positions in input order. Returns nil when there is nothing
// to route.
func BuildProblem(name string, start gcode.Position, entries []gcode.Position, precision, runs int) *Problem {
	if len(entries) == 0 {
		return nil
	}
	nodes := make([]Node, 0, len(entries)+1)
	nodes = append(nodes, Node{X: Scale(start.X, precision), Y: Scale(start.Y, precision)})
	for _, e := range entries {
		nodes = append(nodes, Node{X: Scale(e.X, precision), Y: Scale(e.Y, precision)})
	}
	return &Problem{
		Name:      name,
		Comment:   fmt.Sprintf("open path from tool position, %d islands", len(entries)),
		Dimension: len(nodes),
		Runs:      runs,
		Nodes:     nodes,
	}
}

// Distance is the rounded Euclidean distance between two nodes, the
// EUC_2D edge weight the solver computes from the same coordinates.
func (p *Problem) Distance(i, j int) int64 {
	dx := float64(p.Nodes[i].X - p.Nodes[j].X)
	dy := float64(p.Nodes[i].Y - p.Nodes[j].Y)
	return int64(math.Round(math.Hypot(dx, dy)))
}

// TourLength sums edge weights along a tour of 1-based node indices.
func (p *Problem) TourLength(order []int) int64 {
	var total int64
	for i := 1; i < len(order); i++ {
		total += p.Distance(order[i-1]-1, order[i]-1)
	}
	return total
}

// Write emits the problem in TSPLIB format. The run count travels in
// a COMMENT line so the instance is self-describing.
func (p *Problem) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "NAME: %s\n", p.Name)
	fmt.Fprintf(bw, "COMMENT: %s\n", p.Comment)
	fmt.Fprintf(bw, "COMMENT: RUNS=%d\n", p.Runs)
	fmt.Fprintf(bw, "TYPE: TSP\n")
	fmt.Fprintf(bw, "DIMENSION: %d\n", p.Dimension)
	fmt.Fprintf(bw, "EDGE_WEIGHT_TYPE: EUC_2D\n")
	fmt.Fprintf(bw, "NODE_COORD_SECTION\n")
	for i, n := range p.Nodes {
		fmt.Fprintf(bw, "%d %d %d\n", i+1, n.X, n.Y)
	}
	fmt.Fprintf(bw, "EOF\n")
	return bw.Flush()
}

// WriteFile writes the problem to path, truncating any existing file.
func (p *Problem) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrSolverInvocation, "writing problem file")
	}
	if err := p.Write(f); err != nil {
		f.Close()
		return errors.Wrap(err, errors.ErrSolverInvocation, "writing problem file")
	}
	return f.Close()
}

// ReadProblemFile parses a TSPLIB problem file written by Write. Used
// by tests and by in-process solver stand-ins.
func ReadProblemFile(path string) (*Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInput, "reading problem file")
	}
	defer f.Close()
	return readProblem(f)
}

func readProblem(r io.Reader) (*Problem, error) {
	p := &Problem{}
	inCoords := false

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if inCoords {
			if line == "EOF" {
				break
			}
			fields := strings.Fields(line)
			if len(fields) != 3 {
				return nil, errors.Newf(errors.ErrInput, "malformed node line %q", line)
			}
			x, errX := strconv.ParseInt(fields[1], 10, 64)
			y, errY := strconv.ParseInt(fields[2], 10, 64)
			if errX != nil || errY != nil {
				return nil, errors.Newf(errors.ErrInput, "malformed node line %q", line)
			}
			p.Nodes = append(p.Nodes, Node{X: x, Y: y})
			continue
		}

		key, value, _ := strings.Cut(line, ":")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "NAME":
			p.Name = value
		case "COMMENT":
			if runs, ok := strings.CutPrefix(value, "RUNS="); ok {
				p.Runs, _ = strconv.Atoi(runs)
			} else {
				p.Comment = value
			}
		case "DIMENSION":
			d, err := strconv.Atoi(value)
			if err != nil {
				return nil, errors.Newf(errors.ErrInput, "bad DIMENSION %q", value)
			}
			p.Dimension = d
		case "NODE_COORD_SECTION":
			inCoords = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrInput, "reading problem file")
	}
	if p.Dimension == 0 || len(p.Nodes) != p.Dimension {
		return nil, errors.Newf(errors.ErrInput,
			"node count %d does not match DIMENSION %d", len(p.Nodes), p.Dimension)
	}
	return p, nil
}
