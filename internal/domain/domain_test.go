package domain

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func intp(v int) *int { return &v }

func TestParseMode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Mode
		wantErr bool
	}{
		{"empty defaults to full", "", ModeFull, false},
		{"full", "full", ModeFull, false},
		{"segment", "segment", ModeSegment, false},
		{"uppercase full", "FULL", ModeFull, false},
		{"mixed case segment", "Segment", ModeSegment, false},
		{"surrounding whitespace", " segment ", ModeSegment, false},
		{"unknown mode", "partial", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMode(%q) should fail", tt.input)
				}
				if !errors.Is(err, ErrInvalidMode) {
					t.Errorf("error = %v, want ErrInvalidMode", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMode(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDownloadRequest_ValidateSegmentBounds(t *testing.T) {
	tests := []struct {
		name    string
		req     DownloadRequest
		wantErr error
	}{
		{"full mode ignores bounds", DownloadRequest{Mode: ModeFull}, nil},
		{"segment with both bounds", DownloadRequest{Mode: ModeSegment, StartTime: intp(10), EndTime: intp(25)}, nil},
		{"segment missing both", DownloadRequest{Mode: ModeSegment}, ErrMissingSegmentBounds},
		{"segment missing start", DownloadRequest{Mode: ModeSegment, EndTime: intp(25)}, ErrMissingSegmentBounds},
		{"segment missing end", DownloadRequest{Mode: ModeSegment, StartTime: intp(10)}, ErrMissingSegmentBounds},
		{"segment end equals start", DownloadRequest{Mode: ModeSegment, StartTime: intp(10), EndTime: intp(10)}, ErrInvalidSegmentBounds},
		{"segment end before start", DownloadRequest{Mode: ModeSegment, StartTime: intp(25), EndTime: intp(10)}, ErrInvalidSegmentBounds},
		{"segment negative start", DownloadRequest{Mode: ModeSegment, StartTime: intp(-5), EndTime: intp(10)}, ErrInvalidSegmentBounds},
		{"segment starting at zero", DownloadRequest{Mode: ModeSegment, StartTime: intp(0), EndTime: intp(1)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.ValidateSegmentBounds()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateSegmentBounds() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateSegmentBounds() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDownloadRequest_OutputFilename(t *testing.T) {
	tests := []struct {
		name string
		req  DownloadRequest
		want string
	}{
		{"full default", DownloadRequest{Mode: ModeFull}, "full_video.mp4"},
		{"segment default encodes bounds", DownloadRequest{Mode: ModeSegment, StartTime: intp(10), EndTime: intp(25)}, "video_segment_10s_to_25s.mp4"},
		{"segment from zero", DownloadRequest{Mode: ModeSegment, StartTime: intp(0), EndTime: intp(90)}, "video_segment_0s_to_90s.mp4"},
		{"caller-supplied wins", DownloadRequest{Mode: ModeSegment, StartTime: intp(1), EndTime: intp(2), Filename: "clip.mp4"}, "clip.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.OutputFilename(); got != tt.want {
				t.Errorf("OutputFilename() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty means default", "", false},
		{"bare name", "clip.mp4", false},
		{"dotted name", "my.video.mp4", false},
		{"parent traversal", "../../escaped.mp4", true},
		{"absolute path", "/etc/cron.d/job", true},
		{"nested path", "videos/clip.mp4", true},
		{"backslash path", `..\..\escaped.mp4`, true},
		{"dot", ".", true},
		{"dot dot", "..", true},
		{"embedded quote", `a"b.mp4`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilename(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFilename) {
					t.Errorf("ValidateFilename(%q) = %v, want ErrInvalidFilename", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateFilename(%q) error = %v", tt.input, err)
			}
		})
	}
}

func TestFetchResult_Cleanup(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scratch")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "full_video.mp4")
	if err := os.WriteFile(path, []byte("video bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	res := &FetchResult{Dir: dir, Path: path, Filename: "full_video.mp4"}

	if err := res.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("scratch dir should be removed, stat err = %v", err)
	}

	// Removing an already-removed result must not be an error.
	if err := res.Cleanup(); err != nil {
		t.Errorf("second Cleanup() error = %v", err)
	}
}

func TestFetchResult_Cleanup_EmptyDir(t *testing.T) {
	res := &FetchResult{}
	if err := res.Cleanup(); err != nil {
		t.Errorf("Cleanup() on zero value error = %v", err)
	}
}

func TestToolError(t *testing.T) {
	underlying := errors.New("exit status 1")
	err := NewToolError("yt-dlp", "run --format", "ERROR: unable to extract\n", underlying)

	msg := err.Error()
	if !strings.Contains(msg, "yt-dlp") {
		t.Errorf("message %q should name the tool", msg)
	}
	if !strings.Contains(msg, "unable to extract") {
		t.Errorf("message %q should carry the diagnostic text", msg)
	}
	if !errors.Is(err, underlying) {
		t.Error("ToolError should unwrap to the underlying error")
	}
}

func TestToolError_NoStderr(t *testing.T) {
	err := NewToolError("ffmpeg", "probe -version", "  \n", errors.New("file not found"))
	if strings.HasSuffix(err.Error(), ": ") {
		t.Errorf("message %q should not have a trailing empty diagnostic", err.Error())
	}
}
