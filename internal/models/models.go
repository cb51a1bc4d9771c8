package models

import (
	"time"
)

// CourseSource records where an ingested course came from.
type CourseSource struct {
	FileName   string    `db:"file_name" json:"fileName"`
	FileType   string    `db:"file_type" json:"fileType"`
	FileSize   int64     `db:"file_size" json:"fileSize"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploadedAt"`
}

// CourseMetadata holds the aggregates computed at ingestion time.
type CourseMetadata struct {
	ChapterCount         int               `db:"chapter_count" json:"chapterCount"`
	TotalWords           int               `db:"total_words" json:"totalWords"`
	EstimatedReadingTime int               `db:"estimated_reading_time" json:"estimatedReadingTime"` // minutes
	ExtractionMetadata   map[string]string `db:"extraction_metadata" json:"extractionMetadata"`
}

// Course is one structured learning unit produced from an ingested document.
type Course struct {
	ID          string         `db:"id" json:"id"`
	UserID      string         `db:"user_id" json:"userId"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	Source      CourseSource   `json:"source"`
	Metadata    CourseMetadata `json:"metadata"`
	Status      string         `db:"status" json:"status"` // processed
	Type        string         `db:"type" json:"type"`     // ingested
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

// Chapter is one logical section of a course. Chapters are keyed
// "chapter-{chapterNumber}" under their course and ordered by number.
type Chapter struct {
	ID            string    `db:"id" json:"id"`
	CourseID      string    `db:"course_id" json:"-"`
	ChapterNumber int       `db:"chapter_number" json:"chapterNumber"`
	Title         string    `db:"title" json:"title"`
	Content       string    `db:"content" json:"content"`
	Summary       string    `db:"summary" json:"summary"`
	WordCount     int       `db:"word_count" json:"wordCount"`
	Order         int       `db:"sort_order" json:"order"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// ChapterSummary is the compact chapter shape returned from ingestion;
// chapter content stays in storage to bound response size.
type ChapterSummary struct {
	ID            string `json:"id"`
	ChapterNumber int    `json:"chapterNumber"`
	Title         string `json:"title"`
	Summary       string `json:"summary"`
	WordCount     int    `json:"wordCount"`
}

// IngestResult is the summary payload returned to the caller after a
// successful ingestion.
type IngestResult struct {
	CourseID             string           `json:"courseId"`
	Title                string           `json:"title"`
	Description          string           `json:"description"`
	ChapterCount         int              `json:"chapterCount"`
	TotalWords           int              `json:"totalWords"`
	EstimatedReadingTime int              `json:"estimatedReadingTime"`
	Chapters             []ChapterSummary `json:"chapters"`
}

// CourseListItem is the compact shape used when listing a user's courses.
type CourseListItem struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	ChapterCount         int       `json:"chapterCount"`
	TotalWords           int       `json:"totalWords"`
	EstimatedReadingTime int       `json:"estimatedReadingTime"`
	FileName             string    `json:"fileName"`
	FileType             string    `json:"fileType"`
	Status               string    `json:"status"`
	CreatedAt            time.Time `json:"createdAt"`
}

// CourseDetail is one course together with its full chapters.
type CourseDetail struct {
	Course   *Course   `json:"course"`
	Chapters []Chapter `json:"chapters"`
}
