// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package solver

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"gcodeopt/pkg/errors"
	"gcodeopt/pkg/log"
)

// Process invokes an external solver binary once per problem. The
// binary receives the problem file path and the run count as
// arguments and is expected to write its result next to the problem
// file (see ResultPath). Each invocation is bounded by the configured
// timeout; cancelling the caller's context kills the child early.
type Process struct {
	program string
	timeout time.Duration
	log     *log.Logger
}

// NewProcess returns a Process solver for the given binary. A zero
// timeout means invocations run until they finish or ctx is done.
func NewProcess(program string, timeout time.Duration) *Process {
	return &Process{
		program: program,
		timeout: timeout,
		log:     log.GetLogger("solver"),
	}
}

func (s *Process) Solve(ctx context.Context, problemPath string, runs int) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resultPath := ResultPath(problemPath)

	cmd := exec.CommandContext(ctx, s.program, problemPath, strconv.Itoa(runs))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	s.log.Debug("running %s %s runs=%d", s.program, problemPath, runs)
	err := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return "", errors.SolverTimeoutError(s.timeout.Seconds())
	}
	if err != nil {
		reason := err.Error()
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			reason = msg
		}
		return "", errors.SolverInvocationError(reason, err)
	}
	if _, err := os.Stat(resultPath); err != nil {
		return "", errors.SolverInvocationError("solver exited cleanly but produced no result file", err)
	}
	return resultPath, nil
}
