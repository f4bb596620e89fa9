package tool

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"clipfetch/internal/domain"
)

// ExecTool runs an external program via os/exec.
type ExecTool struct {
	name      string
	command   string
	probeArgs []string
}

// NewExecTool creates a tool adapter for the given command. The command is
// resolved from PATH at invocation time, not at construction, so a tool
// installed after startup is picked up and a removed one is reported by the
// next probe.
func NewExecTool(name, command string, probeArgs ...string) *ExecTool {
	if command == "" {
		command = name
	}
	return &ExecTool{
		name:      name,
		command:   command,
		probeArgs: probeArgs,
	}
}

// NewFetchTool returns the video fetch tool (yt-dlp). An empty command uses
// the default name.
func NewFetchTool(command string) *ExecTool {
	return NewExecTool("yt-dlp", command, "--version")
}

// NewTranscoder returns the media transcoder (ffmpeg). An empty command uses
// the default name.
func NewTranscoder(command string) *ExecTool {
	return NewExecTool("ffmpeg", command, "-version")
}

func (t *ExecTool) Name() string {
	return t.name
}

// Probe runs the tool with its version flag and reports whether it is
// installed and runnable.
func (t *ExecTool) Probe(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, t.command, t.probeArgs...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return domain.NewToolError(t.name, "probe "+strings.Join(t.probeArgs, " "), stderr.String(), err)
	}
	return nil
}

// Run invokes the tool and waits for it to exit. Stderr is captured and
// attached to the error on non-zero exit.
func (t *ExecTool) Run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, t.command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		op := "run"
		if len(args) > 0 {
			op = "run " + args[0]
		}
		return domain.NewToolError(t.name, op, stderr.String(), err)
	}
	return nil
}
