package reload

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func waitMarkerLines(t *testing.T, path string, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		b, err := os.ReadFile(path)
		if err == nil && strings.Count(string(b), "\n") >= n {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %d runs", n)
}

func TestRun_RestartsOnChangeAndStopsOnCancel(t *testing.T) {
	d := t.TempDir()
	marker := filepath.Join(t.TempDir(), "marker")
	script := filepath.Join(d, "app.sh")
	content := "#!/bin/sh\necho run >> \"$MARKER\"\nexec sleep 60\n"
	if err := os.WriteFile(script, []byte(content), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}

	opts := Options{
		File:      script,
		AbsFile:   script,
		Dir:       d,
		Runner:    []string{"sh"},
		Poll:      50 * time.Millisecond,
		Grace:     time.Second,
		Env:       map[string]string{"MARKER": marker},
		Stdout:    io.Discard,
		LogOutput: io.Discard,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- Run(ctx, opts) }()

	waitMarkerLines(t, marker, 1)

	// Bump the mtime well past filesystem granularity to register a change.
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(script, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	waitMarkerLines(t, marker, 2)

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timeout waiting for shutdown")
	}
}

func TestRun_ChildExitKeepsLoopAlive(t *testing.T) {
	d := t.TempDir()
	marker := filepath.Join(t.TempDir(), "marker")
	script := filepath.Join(d, "app.sh")
	content := "#!/bin/sh\necho run >> \"$MARKER\"\nexit 0\n"
	if err := os.WriteFile(script, []byte(content), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}

	opts := Options{
		File:      script,
		AbsFile:   script,
		Dir:       d,
		Runner:    []string{"sh"},
		Poll:      50 * time.Millisecond,
		Grace:     time.Second,
		Env:       map[string]string{"MARKER": marker},
		Stdout:    io.Discard,
		LogOutput: io.Discard,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- Run(ctx, opts) }()

	waitMarkerLines(t, marker, 1)

	// The child is gone; a change must still bring it back.
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(script, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	waitMarkerLines(t, marker, 2)

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timeout waiting for shutdown")
	}
}
