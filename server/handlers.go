package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	sferrors "github.com/randalmurphal/storyflow/errors"
	sfhttp "github.com/randalmurphal/storyflow/http"
	"github.com/randalmurphal/storyflow/thumbnail"
)

// VerifyResponse is the body of a face verification response.
type VerifyResponse struct {
	Match bool `json:"match"`
}

// EventResponse is the body of a thumbnail event response.
type EventResponse struct {
	Results []thumbnail.Result `json:"results"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok\n")); err != nil {
		s.logger.Error("failed to write healthz response", "error", err)
	}
}

// handleVerifyFaces expects multipart form files "reference" and "candidate".
func (s *Server) handleVerifyFaces(w http.ResponseWriter, r *http.Request) {
	if s.verifier == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, errors.New("face verification is not configured"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	reference, err := formFile(r, "reference")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	candidate, err := formFile(r, "candidate")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	match, err := s.verifier.Verify(r.Context(), reference, candidate)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case sferrors.IsMediaError(err):
			status = http.StatusUnprocessableEntity
		case sfhttp.IsRetryable(err):
			status = http.StatusServiceUnavailable
		}
		s.writeError(w, r, status, err)
		return
	}

	s.writeJSON(w, http.StatusOK, VerifyResponse{Match: match})
}

// handleThumbnailEvent processes the objects named by an upload event.
// Per-object failures are reported in the results; the request fails only
// when the event cannot be parsed.
func (s *Server) handleThumbnailEvent(w http.ResponseWriter, r *http.Request) {
	if s.thumbnails == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, errors.New("thumbnails are not configured"))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	refs, err := thumbnail.ParseEvent(body)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	results := thumbnail.ProcessAll(r.Context(), s.thumbnails, refs)
	s.writeJSON(w, http.StatusOK, EventResponse{Results: results})
}

func formFile(r *http.Request, field string) ([]byte, error) {
	f, _, err := r.FormFile(field)
	if err != nil {
		return nil, errors.New("missing form file " + field)
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	reqID := middleware.GetReqID(r.Context())
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "status", status, "request_id", reqID, "error", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "request_id", reqID, "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error(), RequestID: reqID})
}
