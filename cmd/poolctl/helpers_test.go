package main

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/joshuapare/quadpool/mempool"
)

// resetFlags restores every global flag to its default.
func resetFlags() {
	verbose, quiet, jsonOut, noColor = false, false, false, true
	logDir = ""
	preset = ""
	maxBlock = mempool.ConfigDefault.MaxBlockSize
	nMax = mempool.ConfigDefault.NumMax
	numLevels = mempool.ConfigDefault.NumLevels
	kindName, backingName, lockPages = "kernel", "heap", false

	simSteps, simSeed, simFreeRatio, simMaxSize = 200, 1, 0.4, 0
	stressWorkers, stressOps, stressHold, stressMaxSize, stressSeed = 4, 500, 8, 0, 1
	mapAllocs, mapWidth, mapMaxBlocks = nil, 64, 256
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	// Save original stdout
	origStdout := os.Stdout

	// Create a pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	// Redirect stdout to pipe; drain concurrently so large output cannot block
	os.Stdout = w
	done := make(chan struct{})
	var buf bytes.Buffer
	go func() {
		buf.ReadFrom(r)
		close(done)
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	<-done

	return buf.String(), fnErr
}

// decodeJSON unmarshals output into v
func decodeJSON(t *testing.T, output string, v interface{}) {
	t.Helper()
	if err := json.Unmarshal([]byte(output), v); err != nil {
		t.Fatalf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}
