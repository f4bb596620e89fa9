// Package fetch orchestrates the external fetch tool and transcoder: it
// validates submitted URLs, probes tool availability, and maps download
// requests onto tool command lines.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"clipfetch/internal/config"
	"clipfetch/internal/domain"
	"clipfetch/internal/tool"
)

// allowedHosts are the recognized video-host domains. Matching is a
// case-insensitive suffix match, so subdomains like www.youtube.com pass.
var allowedHosts = []string{"youtube.com", "youtu.be"}

// Service builds and runs fetch tool invocations for full and segment
// downloads.
type Service struct {
	fetcher        tool.Tool
	transcoder     tool.Tool
	workDir        string
	defaultQuality int
	logger         *slog.Logger
}

// NewService creates a fetch service. The fetcher resolves video URLs and
// writes media to disk; the transcoder is handed to it as an external
// downloader for segment extraction.
func NewService(fetcher, transcoder tool.Tool, cfg config.DownloadConfig, logger *slog.Logger) *Service {
	return &Service{
		fetcher:        fetcher,
		transcoder:     transcoder,
		workDir:        cfg.WorkDir,
		defaultQuality: cfg.DefaultQuality,
		logger:         logger,
	}
}

// CheckDependencies probes both external tools. It is called before every
// validation probe; availability is deliberately not cached across requests,
// so a tool removed between requests is reported immediately.
func (s *Service) CheckDependencies(ctx context.Context) error {
	for _, t := range []tool.Tool{s.fetcher, s.transcoder} {
		if err := t.Probe(ctx); err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrMissingDependency, t.Name(), err)
		}
	}
	return nil
}

// hostAllowed reports whether the URL host is a recognized video-host
// domain or its short-link domain (case-insensitive suffix match).
func hostAllowed(host string) bool {
	host = strings.ToLower(host)
	for _, allowed := range allowedHosts {
		if strings.HasSuffix(host, allowed) {
			return true
		}
	}
	return false
}

// Validate checks that the URL is a recognized video-host link and that the
// fetch tool can resolve it. The host check runs first so an unsupported URL
// never spawns a process; the dry-run probe then confirms the link is
// actually downloadable.
func (s *Service) Validate(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: missing scheme or host", domain.ErrInvalidURL)
	}
	if !hostAllowed(u.Hostname()) {
		return fmt.Errorf("%w: unrecognized host %q", domain.ErrInvalidURL, u.Hostname())
	}

	if err := s.CheckDependencies(ctx); err != nil {
		return err
	}

	if err := s.fetcher.Run(ctx, "--simulate", "--skip-download", "--quiet", "--no-warnings", rawURL); err != nil {
		return fmt.Errorf("%w: not downloadable: %w", domain.ErrInvalidURL, err)
	}
	return nil
}

// FetchFull downloads the entire video at the best stream whose vertical
// resolution does not exceed quality.
func (s *Service) FetchFull(ctx context.Context, rawURL string, quality int, filename string) (*domain.FetchResult, error) {
	// Reject escaping filenames before any process spawns.
	if err := domain.ValidateFilename(filename); err != nil {
		return nil, err
	}
	if err := s.Validate(ctx, rawURL); err != nil {
		return nil, err
	}
	if filename == "" {
		filename = domain.FullVideoFilename
	}

	res, err := s.newScratchFile(filename)
	if err != nil {
		return nil, err
	}

	args := []string{
		"--format", s.formatSelector(quality),
		"--output", res.Path,
		rawURL,
	}
	return s.runFetch(ctx, res, args)
}

// FetchSegment downloads only the [start, end) interval. The byte extraction
// is delegated to the transcoder, which the fetch tool invokes as its
// external downloader with a seek offset and duration.
func (s *Service) FetchSegment(ctx context.Context, rawURL string, start, end, quality int, filename string) (*domain.FetchResult, error) {
	// Reject escaping filenames before any process spawns.
	if err := domain.ValidateFilename(filename); err != nil {
		return nil, err
	}
	if err := s.Validate(ctx, rawURL); err != nil {
		return nil, err
	}
	duration := end - start
	if filename == "" {
		filename = domain.SegmentFilename(start, end)
	}

	res, err := s.newScratchFile(filename)
	if err != nil {
		return nil, err
	}

	args := []string{
		"--format", s.formatSelector(quality),
		"--external-downloader", s.transcoder.Name(),
		"--external-downloader-args", fmt.Sprintf("%s:-ss %d -t %d", s.transcoder.Name(), start, duration),
		"--output", res.Path,
		rawURL,
	}
	return s.runFetch(ctx, res, args)
}

func (s *Service) formatSelector(quality int) string {
	if quality <= 0 {
		quality = s.defaultQuality
	}
	return fmt.Sprintf("best[height<=%d]", quality)
}

// newScratchFile allocates a request-scoped scratch directory under the
// working directory. Each request gets its own directory, so concurrent
// requests with identical default filenames cannot race on one output path.
func (s *Service) newScratchFile(filename string) (*domain.FetchResult, error) {
	dir := filepath.Join(s.workDir, uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}
	return &domain.FetchResult{
		Dir:      dir,
		Path:     filepath.Join(dir, filename),
		Filename: filename,
	}, nil
}

// runFetch executes the fetch tool and verifies that it actually produced
// output. The scratch directory is removed on every failure path so a failed
// fetch leaves nothing behind.
func (s *Service) runFetch(ctx context.Context, res *domain.FetchResult, args []string) (*domain.FetchResult, error) {
	if err := s.fetcher.Run(ctx, args...); err != nil {
		if cleanupErr := res.Cleanup(); cleanupErr != nil {
			s.logger.Warn("scratch cleanup failed", "dir", res.Dir, "error", cleanupErr)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}

	// A tool that exits zero but writes nothing would otherwise surface as
	// a file-not-found when the response is streamed.
	fi, err := os.Stat(res.Path)
	if err != nil || fi.Size() == 0 {
		if cleanupErr := res.Cleanup(); cleanupErr != nil {
			s.logger.Warn("scratch cleanup failed", "dir", res.Dir, "error", cleanupErr)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyOutput, res.Filename)
	}

	s.logger.Info("fetch complete",
		"filename", res.Filename,
		"size", fi.Size(),
	)
	return res, nil
}
