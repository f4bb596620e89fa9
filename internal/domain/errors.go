package domain

import (
	"errors"
	"strings"
)

// Domain errors.
var (
	// ErrInvalidURL is returned when the submitted URL is not a recognized
	// video-host link or fails the dry-run probe.
	ErrInvalidURL = errors.New("invalid or unsupported video URL")

	// ErrMissingDependency is returned when a required external tool is
	// absent or unrunnable.
	ErrMissingDependency = errors.New("required external tool is not available")

	// ErrMissingSegmentBounds is returned when segment mode is requested
	// without both time bounds.
	ErrMissingSegmentBounds = errors.New("segment mode requires start_time and end_time")

	// ErrInvalidSegmentBounds is returned when the segment bounds do not
	// describe a positive-length interval.
	ErrInvalidSegmentBounds = errors.New("end_time must be greater than start_time")

	// ErrInvalidMode is returned for a download mode other than full or segment.
	ErrInvalidMode = errors.New(`mode must be "full" or "segment"`)

	// ErrInvalidFilename is returned for a caller-supplied filename that is
	// not a bare file name.
	ErrInvalidFilename = errors.New("filename must be a bare file name")

	// ErrFetchFailed is returned when the external fetch process exits non-zero.
	ErrFetchFailed = errors.New("video fetch failed")

	// ErrEmptyOutput is returned when the fetch tool exits zero but the
	// output file is missing or empty.
	ErrEmptyOutput = errors.New("fetch produced no output file")
)

// ToolError wraps a failed external tool invocation with the tool's
// diagnostic output.
type ToolError struct {
	Tool   string
	Op     string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	msg := e.Tool + " " + e.Op + ": " + e.Err.Error()
	if diag := strings.TrimSpace(e.Stderr); diag != "" {
		msg += ": " + diag
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// NewToolError creates a new ToolError.
func NewToolError(tool, op, stderr string, err error) *ToolError {
	return &ToolError{
		Tool:   tool,
		Op:     op,
		Stderr: stderr,
		Err:    err,
	}
}
