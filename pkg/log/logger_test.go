// Unit tests for the leveled logger
//
// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func newTestLogger(prefix string) (*Logger, *bytes.Buffer) {
	l := New(prefix)
	buf := &bytes.Buffer{}
	l.SetWriter(buf)
	l.SetColorize(false)
	return l, buf
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newTestLogger("test")
	l.SetLevel(WARN)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below WARN should be suppressed, got: %s", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("WARN and ERROR messages missing, got: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   DEBUG,
		"INFO":    INFO,
		"Warning": WARN,
		"error":   ERROR,
		"bogus":   INFO,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPrefixInOutput(t *testing.T) {
	l, buf := newTestLogger("solver")
	l.Info("starting")

	if !strings.Contains(buf.String(), "solver: starting") {
		t.Errorf("prefix missing in output: %s", buf.String())
	}
}

func TestFormattedMessage(t *testing.T) {
	l, buf := newTestLogger("test")
	l.Info("layer %d of %d", 3, 12)

	if !strings.Contains(buf.String(), "layer 3 of 12") {
		t.Errorf("formatting not applied: %s", buf.String())
	}
}

func TestFieldsSortedInTextOutput(t *testing.T) {
	l, buf := newTestLogger("test")
	l.WithFields(Fields{"layer": 5, "islands": 12}).Warn("fallback")

	out := buf.String()
	if !strings.Contains(out, "{islands=12, layer=5}") {
		t.Errorf("fields not sorted or missing: %s", out)
	}
}

func TestJSONFormat(t *testing.T) {
	l, buf := newTestLogger("test")
	l.SetFormat(FormatJSON)
	l.WithField("layer", 2).Error("solver failed")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v (%s)", err, buf.String())
	}
	if entry["level"] != "ERROR" {
		t.Errorf("level = %v, want ERROR", entry["level"])
	}
	if entry["message"] != "solver failed" {
		t.Errorf("message = %v", entry["message"])
	}
	fields, ok := entry["fields"].(map[string]interface{})
	if !ok || fields["layer"] != float64(2) {
		t.Errorf("fields missing or wrong: %v", entry["fields"])
	}
}

func TestWithPrefixSharesWriter(t *testing.T) {
	l, buf := newTestLogger("parent")
	child := l.WithPrefix("child")
	child.Info("hello")

	if !strings.Contains(buf.String(), "child: hello") {
		t.Errorf("derived logger did not write to parent writer: %s", buf.String())
	}
}

func TestWithErrorField(t *testing.T) {
	l, buf := newTestLogger("test")
	l.WithError(errString("boom")).Error("failed")

	if !strings.Contains(buf.String(), "error=boom") {
		t.Errorf("error field missing: %s", buf.String())
	}
}

type errString string

func (e errString) Error() string { return string(e) }
