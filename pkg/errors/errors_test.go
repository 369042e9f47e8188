// Unit tests for the error taxonomy
//
// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package errors

import (
	"fmt"
	"syscall"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := ConfigValidationError("precision", "must be positive")
	want := "[CONFIG_VALIDATION] option 'precision': must be positive"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestLayerScopedFormatting(t *testing.T) {
	err := TourValidationError("missing node 3").ForLayer(7)
	want := "[TOUR_INVALID] layer 7: invalid tour: missing node 3"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("exit status 1")
	err := SolverInvocationError("solver exited abnormally", cause)
	if err.Unwrap() != cause {
		t.Error("Unwrap did not return the wrapped error")
	}
}

func TestIsMatchesWrappedCode(t *testing.T) {
	err := fmt.Errorf("while routing: %w", SolverTimeoutError(60))
	if !Is(err, ErrSolverTimeout) {
		t.Error("Is should see through fmt.Errorf wrapping")
	}
	if Is(err, ErrTourInvalid) {
		t.Error("Is matched the wrong code")
	}
}

func TestClassification(t *testing.T) {
	recoverable := []error{
		SolverInvocationError("no result file", nil),
		SolverTimeoutError(5),
		TourValidationError("duplicate node"),
	}
	for _, err := range recoverable {
		if !IsLayerRecoverable(err) {
			t.Errorf("%v should be layer-recoverable", err)
		}
		if IsFatal(err) {
			t.Errorf("%v should not be fatal", err)
		}
	}

	fatal := []error{
		ConfigOptionError("program"),
		InputError("part.gcode", "file is empty"),
		ResourceError(syscall.EMFILE),
	}
	for _, err := range fatal {
		if !IsFatal(err) {
			t.Errorf("%v should be fatal", err)
		}
		if IsLayerRecoverable(err) {
			t.Errorf("%v should not be layer-recoverable", err)
		}
	}
}

func TestIsResourceExhaustion(t *testing.T) {
	wrapped := fmt.Errorf("writing problem file: %w", syscall.EMFILE)
	if !IsResourceExhaustion(wrapped) {
		t.Error("EMFILE should be detected through wrapping")
	}
	if IsResourceExhaustion(fmt.Errorf("plain error")) {
		t.Error("plain error misclassified as resource exhaustion")
	}
}
