// Package clitest provides helpers for tests that exercise subprocess
// handling against fake CLI binaries implemented as shell scripts.
package clitest

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
)

// WriteScript writes an executable /bin/sh script into dir and returns
// its absolute path. Tests on platforms without /bin/sh are skipped.
func WriteScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake CLI scripts require /bin/sh")
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("Failed to write script %s: %v", name, err)
	}
	return path
}

// Binary writes a fake CLI that prints output on stdout and exits with
// the given code, ignoring its arguments.
func Binary(t *testing.T, dir, name, output string, exitCode int) string {
	t.Helper()
	body := "printf '%s\\n' " + shellQuote(output) + "\nexit " + strconv.Itoa(exitCode)
	return WriteScript(t, dir, name, body)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
