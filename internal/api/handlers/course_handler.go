package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/courseforge-ai/courseforge/internal/models"
)

// CourseReader is the slice of the course service this handler needs.
type CourseReader interface {
	ListCourses(ctx context.Context, userID string) ([]models.CourseListItem, error)
	GetCourse(ctx context.Context, courseID, userID string) (*models.CourseDetail, error)
}

type CourseHandler struct {
	svc CourseReader
	log *zap.SugaredLogger
}

func NewCourseHandler(svc CourseReader, log *zap.SugaredLogger) *CourseHandler {
	return &CourseHandler{svc: svc, log: log}
}

// ListCourses returns the user's ingested courses, newest first.
func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromRequest(r)

	courses, err := h.svc.ListCourses(r.Context(), userID)
	if err != nil {
		h.log.Errorw("list courses failed", "user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch courses")
		return
	}
	if courses == nil {
		courses = []models.CourseListItem{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"courses": courses})
}

// GetCourse returns one course with its chapters.
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromRequest(r)
	courseID := chi.URLParam(r, "courseID")

	detail, err := h.svc.GetCourse(r.Context(), courseID, userID)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, detail)
}
