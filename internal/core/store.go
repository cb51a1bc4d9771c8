package core

import (
	"context"

	"github.com/courseforge-ai/courseforge/internal/models"
)

// CourseStore defines all persistence operations the services need.
// It abstracts Postgres so higher layers never depend on a specific DB.
type CourseStore interface {
	// CreateCourseWithChapters persists the course and all of its chapters in
	// a single transaction and returns the server-assigned course id. Either
	// every document lands or none do.
	CreateCourseWithChapters(ctx context.Context, course *models.Course, chapters []models.Chapter) (string, error)

	GetCourseByID(ctx context.Context, id string) (*models.Course, error)
	ListCoursesByUser(ctx context.Context, userID string) ([]models.Course, error)
	GetChaptersByCourse(ctx context.Context, courseID string) ([]models.Chapter, error)

	Close() error
}
