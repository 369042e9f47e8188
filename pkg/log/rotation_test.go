// Unit tests for log file rotation
//
// Copyright (C) 2026  Gcodeopt Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRotatingWriterRequiresFilename(t *testing.T) {
	if _, err := NewRotatingFileWriter(RotationConfig{}); err == nil {
		t.Fatal("expected error for empty filename")
	}
}

func TestRotatingWriterWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.log")

	w, err := NewRotatingFileWriter(RotationConfig{Filename: path})
	if err != nil {
		t.Fatalf("NewRotatingFileWriter: %v", err)
	}
	defer w.Close()

	if _, err := w.Write([]byte("hello\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello\n" {
		t.Errorf("unexpected contents: %q", data)
	}
}

func TestRotationCreatesBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.log")

	w, err := NewRotatingFileWriter(RotationConfig{Filename: path, MaxSize: 1})
	if err != nil {
		t.Fatalf("NewRotatingFileWriter: %v", err)
	}
	defer w.Close()

	// Exceed 1 MB to force a rotation
	chunk := strings.Repeat("x", 64*1024)
	for i := 0; i < 20; i++ {
		if _, err := w.Write([]byte(chunk)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}

	backups := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "run.log.") {
			backups++
		}
	}
	if backups == 0 {
		t.Error("expected at least one backup file after rotation")
	}
}
