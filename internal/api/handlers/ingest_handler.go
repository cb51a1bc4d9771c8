package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/courseforge-ai/courseforge/internal/core"
	"github.com/courseforge-ai/courseforge/internal/models"
)

// Ingestor is the slice of the ingest service this handler needs.
type Ingestor interface {
	Ingest(ctx context.Context, fileBytes []byte, fileName string, fileSize int64, userID string) (*models.IngestResult, error)
}

type IngestHandler struct {
	svc Ingestor
	log *zap.SugaredLogger
}

func NewIngestHandler(svc Ingestor, log *zap.SugaredLogger) *IngestHandler {
	return &IngestHandler{svc: svc, log: log}
}

type ingestResponse struct {
	Success bool `json:"success"`
	models.IngestResult
	Message string `json:"message"`
}

// IngestContent accepts a multipart upload and runs the ingestion pipeline.
func (h *IngestHandler) IngestContent(w http.ResponseWriter, r *http.Request) {
	// The size check proper happens in the service; this just bounds memory.
	_ = r.ParseMultipartForm(32 << 20)

	userID := userIDFromRequest(r)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	result, err := h.svc.Ingest(r.Context(), data, header.Filename, int64(len(data)), userID)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{
		Success:      true,
		IngestResult: *result,
		Message:      fmt.Sprintf("Course %q created with %d chapters!", result.Title, result.ChapterCount),
	})
}

// userIDFromRequest trusts the gateway-provided header; identity verification
// happens upstream of this service.
func userIDFromRequest(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return "anonymous"
}

// statusForError maps pipeline failure kinds to HTTP statuses. Validation
// problems are the caller's fault; exhausted model capacity is transient;
// everything else is a server-side failure.
func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrUnsupportedFormat), errors.Is(err, core.ErrFileTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrAllModelsRateLimited):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrCourseNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
