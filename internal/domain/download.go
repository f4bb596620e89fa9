package domain

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Mode selects how much of the source video is fetched.
type Mode string

const (
	// ModeFull downloads the entire video.
	ModeFull Mode = "full"

	// ModeSegment downloads only the [start, end) interval.
	ModeSegment Mode = "segment"
)

// ParseMode parses a case-insensitive mode string. An empty string maps to
// ModeFull.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full":
		return ModeFull, nil
	case "segment":
		return ModeSegment, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidMode, s)
	}
}

// DefaultQuality is the target maximum vertical resolution when the caller
// does not specify one.
const DefaultQuality = 720

// DownloadRequest describes a single fetch job.
type DownloadRequest struct {
	URL       string
	Quality   int
	Mode      Mode
	StartTime *int
	EndTime   *int
	Filename  string
}

// ValidateSegmentBounds enforces the segment invariant: both bounds present,
// start non-negative, end strictly greater than start.
func (r *DownloadRequest) ValidateSegmentBounds() error {
	if r.Mode != ModeSegment {
		return nil
	}
	if r.StartTime == nil || r.EndTime == nil {
		return ErrMissingSegmentBounds
	}
	if *r.StartTime < 0 {
		return fmt.Errorf("%w: start_time must be non-negative", ErrInvalidSegmentBounds)
	}
	if *r.EndTime <= *r.StartTime {
		return ErrInvalidSegmentBounds
	}
	return nil
}

// ValidateFilename rejects caller-supplied names that would resolve outside
// the request's scratch directory or corrupt the download response headers.
func ValidateFilename(name string) error {
	if name == "" {
		return nil
	}
	if name == "." || name == ".." ||
		strings.ContainsAny(name, `/\"`) ||
		name != filepath.Base(name) {
		return fmt.Errorf("%w: got %q", ErrInvalidFilename, name)
	}
	return nil
}

// FullVideoFilename is the default output name for full-mode downloads.
const FullVideoFilename = "full_video.mp4"

// SegmentFilename is the default output name for segment-mode downloads,
// encoding the requested time bounds.
func SegmentFilename(start, end int) string {
	return fmt.Sprintf("video_segment_%ds_to_%ds.mp4", start, end)
}

// OutputFilename returns the caller-supplied filename, or the default name
// derived from the request mode and time bounds.
func (r *DownloadRequest) OutputFilename() string {
	if r.Filename != "" {
		return r.Filename
	}
	if r.Mode == ModeSegment && r.StartTime != nil && r.EndTime != nil {
		return SegmentFilename(*r.StartTime, *r.EndTime)
	}
	return FullVideoFilename
}

// FetchResult is a handle to a produced video file on transient storage.
// Dir is the request-scoped scratch directory that contains the file; the
// whole directory is removed on cleanup.
type FetchResult struct {
	Dir      string
	Path     string
	Filename string
}

// Cleanup removes the scratch directory and everything in it. Removing an
// already-removed directory is not an error.
func (f *FetchResult) Cleanup() error {
	if f.Dir == "" {
		return nil
	}
	return os.RemoveAll(f.Dir)
}
