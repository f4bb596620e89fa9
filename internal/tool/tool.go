// Package tool wraps the external command-line programs the service
// delegates to. Each collaborator is addressed only through its command
// line: exit code and stderr are the whole error channel.
package tool

import "context"

// Tool is one external command-line collaborator.
type Tool interface {
	// Name returns the command name, as passed on the command line and
	// used in diagnostics.
	Name() string

	// Probe checks that the tool is installed and runnable by invoking
	// its version flag.
	Probe(ctx context.Context) error

	// Run invokes the tool with the given arguments. On non-zero exit the
	// returned error carries the tool's stderr text.
	Run(ctx context.Context, args ...string) error
}
