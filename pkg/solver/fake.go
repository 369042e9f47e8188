// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package solver

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"gcodeopt/pkg/errors"
	"gcodeopt/pkg/tsp"
)

// Fake is an in-process solver for tests. It produces a deterministic
// nearest-neighbor tour from the virtual start node, can be scripted
// to fail, and records how many invocations ran at once.
type Fake struct {
	// Fail makes every invocation report a nonzero-exit failure.
	Fail bool
	// OmitResult completes the invocation without writing a result.
	OmitResult bool
	// Delay stalls each invocation, for exercising timeouts and
	// concurrency limits.
	Delay time.Duration

	mu        sync.Mutex
	active    int
	maxActive int
	calls     int
}

func (f *Fake) Solve(ctx context.Context, problemPath string, runs int) (string, error) {
	f.enter()
	defer f.leave()

	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return "", errors.SolverTimeoutError(f.Delay.Seconds())
		}
	}
	if f.Fail {
		return "", errors.SolverInvocationError("scripted failure", nil)
	}
	if f.OmitResult {
		return "", errors.SolverInvocationError("solver exited cleanly but produced no result file", nil)
	}

	problem, err := tsp.ReadProblemFile(problemPath)
	if err != nil {
		return "", errors.SolverInvocationError("unreadable problem file", err)
	}

	order := nearestNeighbor(problem)
	resultPath := ResultPath(problemPath)
	if err := writeTour(resultPath, order); err != nil {
		return "", errors.SolverInvocationError("writing result file", err)
	}
	return resultPath, nil
}

// MaxActive reports the highest number of concurrently running
// invocations observed.
func (f *Fake) MaxActive() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxActive
}

// Calls reports the total number of invocations.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *Fake) enter() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
}

func (f *Fake) leave() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active--
}

// nearestNeighbor greedily visits nodes from the virtual start,
// breaking ties toward the lower index so results are reproducible.
func nearestNeighbor(p *tsp.Problem) []int {
	visited := make([]bool, p.Dimension)
	order := make([]int, 0, p.Dimension)

	cur := 0
	visited[0] = true
	order = append(order, 1)
	for len(order) < p.Dimension {
		next, best := -1, int64(0)
		for i := 0; i < p.Dimension; i++ {
			if visited[i] {
				continue
			}
			d := p.Distance(cur, i)
			if next == -1 || d < best {
				next, best = i, d
			}
		}
		visited[next] = true
		order = append(order, next+1)
		cur = next
	}
	return order
}

func writeTour(path string, order []int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	fmt.Fprintln(f, "TOUR_SECTION")
	for _, n := range order {
		fmt.Fprintln(f, n)
	}
	fmt.Fprintln(f, -1)
	return f.Close()
}
