package services

import (
	"context"
	"fmt"

	"github.com/courseforge-ai/courseforge/internal/core"
	"github.com/courseforge-ai/courseforge/internal/models"
)

// CourseService covers the read side of ingested courses.
type CourseService struct {
	store core.CourseStore
}

func NewCourseService(store core.CourseStore) *CourseService {
	return &CourseService{store: store}
}

// ListCourses returns the user's courses, newest first, in the compact list shape.
func (s *CourseService) ListCourses(ctx context.Context, userID string) ([]models.CourseListItem, error) {
	courses, err := s.store.ListCoursesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]models.CourseListItem, len(courses))
	for i, c := range courses {
		items[i] = models.CourseListItem{
			ID:                   c.ID,
			Title:                c.Title,
			Description:          c.Description,
			ChapterCount:         c.Metadata.ChapterCount,
			TotalWords:           c.Metadata.TotalWords,
			EstimatedReadingTime: c.Metadata.EstimatedReadingTime,
			FileName:             c.Source.FileName,
			FileType:             c.Source.FileType,
			Status:               c.Status,
			CreatedAt:            c.CreatedAt,
		}
	}
	return items, nil
}

// GetCourse returns one course with its full chapters. Only the owner may
// read it.
func (s *CourseService) GetCourse(ctx context.Context, courseID, userID string) (*models.CourseDetail, error) {
	course, err := s.store.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, fmt.Errorf("%w: %s", core.ErrCourseNotFound, courseID)
	}
	if course.UserID != userID {
		return nil, core.ErrForbidden
	}

	chapters, err := s.store.GetChaptersByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return &models.CourseDetail{Course: course, Chapters: chapters}, nil
}
