package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/google/uuid"

	"github.com/courseforge-ai/courseforge/internal/config"
	"github.com/courseforge-ai/courseforge/internal/core"
	"github.com/courseforge-ai/courseforge/internal/models"
)

var _ core.CourseStore = (*DatabaseClient)(nil)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	dsn := cfg.DatabaseURL
	if cfg.SslCertPath != "" {
		u, err := url.Parse(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
		q := u.Query()
		q.Set("sslmode", "verify-ca")
		q.Set("sslrootcert", cfg.SslCertPath)
		u.RawQuery = q.Encode()
		dsn = u.String()
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// CreateCourseWithChapters writes the course row and every chapter row inside
// one transaction. This is the pipeline's single atomicity boundary: a failed
// chapter insert rolls the course back too.
func (c *DatabaseClient) CreateCourseWithChapters(ctx context.Context, course *models.Course, chapters []models.Chapter) (string, error) {
	if course == nil {
		return "", errors.New("nil course")
	}
	if len(chapters) == 0 {
		return "", errors.New("no chapters to persist")
	}

	extractionMeta, err := json.Marshal(course.Metadata.ExtractionMetadata)
	if err != nil {
		return "", fmt.Errorf("marshal extraction metadata: %w", err)
	}

	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	courseID := uuid.NewString()

	const courseQ = `
		INSERT INTO ingested_courses
			(id, user_id, title, description,
			 file_name, file_type, file_size, uploaded_at,
			 chapter_count, total_words, estimated_reading_time, extraction_metadata,
			 status, type, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, now(), $8, $9, $10, $11, $12, $13, now(), now())
	`
	if _, err := tx.ExecContext(ctx, courseQ,
		courseID, course.UserID, course.Title, course.Description,
		course.Source.FileName, course.Source.FileType, course.Source.FileSize,
		course.Metadata.ChapterCount, course.Metadata.TotalWords, course.Metadata.EstimatedReadingTime, extractionMeta,
		course.Status, course.Type,
	); err != nil {
		return "", fmt.Errorf("insert course: %w", err)
	}

	const chapterQ = `
		INSERT INTO course_chapters
			(id, course_id, chapter_number, title, content, summary, word_count, sort_order, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
	`
	stmt, err := tx.PrepareContext(ctx, chapterQ)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i := range chapters {
		ch := &chapters[i]
		key := fmt.Sprintf("chapter-%d", ch.ChapterNumber)
		if _, err := stmt.ExecContext(ctx,
			key, courseID, ch.ChapterNumber, ch.Title, ch.Content, ch.Summary, ch.WordCount, ch.ChapterNumber,
		); err != nil {
			return "", fmt.Errorf("insert chapter %d: %w", ch.ChapterNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit course: %w", err)
	}
	return courseID, nil
}

func (c *DatabaseClient) GetCourseByID(ctx context.Context, id string) (*models.Course, error) {
	const q = `
		SELECT id, user_id, title, description,
		       file_name, file_type, file_size, uploaded_at,
		       chapter_count, total_words, estimated_reading_time, extraction_metadata,
		       status, type, created_at, updated_at
		FROM ingested_courses
		WHERE id = $1
	`
	var (
		course models.Course
		meta   []byte
	)
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&course.ID, &course.UserID, &course.Title, &course.Description,
		&course.Source.FileName, &course.Source.FileType, &course.Source.FileSize, &course.Source.UploadedAt,
		&course.Metadata.ChapterCount, &course.Metadata.TotalWords, &course.Metadata.EstimatedReadingTime, &meta,
		&course.Status, &course.Type, &course.CreatedAt, &course.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &course.Metadata.ExtractionMetadata); err != nil {
			return nil, fmt.Errorf("unmarshal extraction metadata: %w", err)
		}
	}
	return &course, nil
}

func (c *DatabaseClient) ListCoursesByUser(ctx context.Context, userID string) ([]models.Course, error) {
	const q = `
		SELECT id, user_id, title, description,
		       file_name, file_type, file_size, uploaded_at,
		       chapter_count, total_words, estimated_reading_time,
		       status, type, created_at, updated_at
		FROM ingested_courses
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Course
	for rows.Next() {
		var course models.Course
		if err := rows.Scan(
			&course.ID, &course.UserID, &course.Title, &course.Description,
			&course.Source.FileName, &course.Source.FileType, &course.Source.FileSize, &course.Source.UploadedAt,
			&course.Metadata.ChapterCount, &course.Metadata.TotalWords, &course.Metadata.EstimatedReadingTime,
			&course.Status, &course.Type, &course.CreatedAt, &course.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, course)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) GetChaptersByCourse(ctx context.Context, courseID string) ([]models.Chapter, error) {
	const q = `
		SELECT id, course_id, chapter_number, title, content, summary, word_count, sort_order, created_at
		FROM course_chapters
		WHERE course_id = $1
		ORDER BY chapter_number ASC
	`
	rows, err := c.db.QueryContext(ctx, q, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Chapter
	for rows.Next() {
		var ch models.Chapter
		if err := rows.Scan(
			&ch.ID, &ch.CourseID, &ch.ChapterNumber, &ch.Title, &ch.Content, &ch.Summary, &ch.WordCount, &ch.Order, &ch.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}
