package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"clipfetch/internal/domain"
	"clipfetch/internal/fetch"
)

// DownloadHandler handles video download requests.
type DownloadHandler struct {
	svc    *fetch.Service
	logger *slog.Logger
}

// NewDownloadHandler creates a new download handler.
func NewDownloadHandler(svc *fetch.Service, logger *slog.Logger) *DownloadHandler {
	return &DownloadHandler{
		svc:    svc,
		logger: logger,
	}
}

// DownloadRequest is the JSON request body for POST /download.
type DownloadRequest struct {
	URL       string `json:"url"`
	Quality   int    `json:"quality"`
	Mode      string `json:"mode"`
	StartTime *int   `json:"start_time"`
	EndTime   *int   `json:"end_time"`
	Filename  string `json:"filename,omitempty"`
}

// errorResponse is the structured error body for both client and server
// failures.
type errorResponse struct {
	Detail string `json:"detail"`
}

// Download handles POST /download. On success the produced file is streamed
// as the response body and removed from transient storage afterward; the
// cleanup runs whether or not the transmission itself succeeded.
func (h *DownloadHandler) Download(w http.ResponseWriter, r *http.Request) {
	var body DownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mode, err := domain.ParseMode(body.Mode)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := domain.DownloadRequest{
		URL:       body.URL,
		Quality:   body.Quality,
		Mode:      mode,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		Filename:  body.Filename,
	}

	// Bounds are checked before any external process is spawned.
	if err := req.ValidateSegmentBounds(); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var result *domain.FetchResult
	if mode == domain.ModeSegment {
		result, err = h.svc.FetchSegment(r.Context(), req.URL, *req.StartTime, *req.EndTime, req.Quality, req.Filename)
	} else {
		result, err = h.svc.FetchFull(r.Context(), req.URL, req.Quality, req.Filename)
	}
	if err != nil {
		h.writeFetchError(w, err)
		return
	}

	defer func() {
		if err := result.Cleanup(); err != nil {
			h.logger.Warn("cleanup failed", "dir", result.Dir, "error", err)
		}
	}()

	h.stream(w, result)
}

// stream sends the produced file as a binary video response.
func (h *DownloadHandler) stream(w http.ResponseWriter, result *domain.FetchResult) {
	f, err := os.Open(result.Path)
	if err != nil {
		h.logger.Error("open output file", "path", result.Path, "error", err)
		h.writeError(w, http.StatusInternalServerError, fmt.Sprintf("output file unavailable: %v", err))
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	if fi, err := f.Stat(); err == nil {
		w.Header().Set("Content-Length", strconv.FormatInt(fi.Size(), 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, f); err != nil {
		// Response already started; nothing to send the caller. The
		// deferred cleanup still removes the file.
		h.logger.Warn("response transmission failed", "filename", result.Filename, "error", err)
	}
}

// writeFetchError maps orchestrator failures onto the two HTTP error shapes:
// validation-class failures are client errors, everything else is a server
// error. The underlying diagnostic text is carried as the detail message.
func (h *DownloadHandler) writeFetchError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrInvalidURL) ||
		errors.Is(err, domain.ErrMissingSegmentBounds) ||
		errors.Is(err, domain.ErrInvalidSegmentBounds) ||
		errors.Is(err, domain.ErrInvalidFilename) {
		status = http.StatusBadRequest
	} else {
		h.logger.Error("fetch failed", "error", err)
	}
	h.writeError(w, status, err.Error())
}

func (h *DownloadHandler) writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Detail: detail})
}
