package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"

	"clipfetch/internal/config"
	"clipfetch/internal/fetch"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTool is a scripted test double for the external tool collaborators.
type fakeTool struct {
	name     string
	probeErr error
	probes   int
	runs     [][]string
	onRun    func(args []string) error
}

func (f *fakeTool) Name() string { return f.name }

func (f *fakeTool) Probe(ctx context.Context) error {
	f.probes++
	return f.probeErr
}

func (f *fakeTool) Run(ctx context.Context, args ...string) error {
	f.runs = append(f.runs, args)
	if f.onRun != nil {
		return f.onRun(args)
	}
	return nil
}

// invocations counts every process the fake tool would have spawned.
func (f *fakeTool) invocations() int {
	return f.probes + len(f.runs)
}

// producingRun returns an onRun hook that mimics a fetch tool writing the
// requested output file, while letting the dry-run probe pass untouched.
func producingRun(content string) func(args []string) error {
	return func(args []string) error {
		if len(args) > 0 && args[0] == "--simulate" {
			return nil
		}
		for i, a := range args {
			if a == "--output" && i+1 < len(args) {
				return os.WriteFile(args[i+1], []byte(content), 0644)
			}
		}
		return errors.New("no --output argument")
	}
}

// newTestService wires a fetch service around fake tools with a per-test
// working directory.
func newTestService(t *testing.T, fetcher, transcoder *fakeTool) (*fetch.Service, string) {
	t.Helper()
	workDir := t.TempDir()
	svc := fetch.NewService(fetcher, transcoder, config.DownloadConfig{
		WorkDir:        workDir,
		DefaultQuality: 720,
	}, testLogger())
	return svc, workDir
}
