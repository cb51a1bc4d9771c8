package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/courseforge-ai/courseforge/internal/core"
	"github.com/courseforge-ai/courseforge/internal/models"
)

const (
	// maxFileSize is the upload ceiling, boundary inclusive.
	maxFileSize = 10 * 1024 * 1024
	// minTextLength is the minimum number of extracted characters worth
	// building a course from.
	minTextLength = 100
	// wordsPerMinute drives the reading-time estimate. Fixed average with no
	// locale adjustment.
	wordsPerMinute = 200
)

// allowedTypes is the set of formats ingestion accepts. Detection may know
// more formats than this; those fail validation as unsupported.
var allowedTypes = []string{"pdf", "txt", "epub"}

const titlePrompt = `Generate a concise, engaging course title (maximum 10 words) for a course built from the document below. The original file was named %q. Return only the title, no quotes or commentary.

Document:

%s`

const descriptionPrompt = `Write a 2-3 sentence course description for a course built from the document below. Describe what a learner will get out of it. Return only the description, no commentary.

Document:

%s`

// IngestService runs the content-ingestion pipeline: validate, extract,
// generate title/description, chunk into chapters, aggregate and persist.
type IngestService struct {
	store     core.CourseStore
	extractor core.TextExtractor
	gen       core.TextGenerator
	chunker   core.ContentChunker
	log       *zap.SugaredLogger
}

func NewIngestService(store core.CourseStore, extractor core.TextExtractor, gen core.TextGenerator, chunker core.ContentChunker, log *zap.SugaredLogger) *IngestService {
	return &IngestService{store: store, extractor: extractor, gen: gen, chunker: chunker, log: log}
}

// validateFile checks name and size before any expensive work. Pure check, no
// side effects; it must run before extraction, AI calls or DB writes.
func (s *IngestService) validateFile(fileName string, fileSize int64) (string, error) {
	fileType := s.extractor.DetectFileType(fileName)
	if fileType == "" {
		return "", fmt.Errorf("%w: %q, supported: %s",
			core.ErrUnsupportedFormat, fileName, strings.ToUpper(strings.Join(allowedTypes, ", ")))
	}

	allowed := false
	for _, t := range allowedTypes {
		if fileType == t {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", fmt.Errorf("%w: .%s, supported: %s",
			core.ErrUnsupportedFormat, fileType, strings.ToUpper(strings.Join(allowedTypes, ", ")))
	}

	if fileSize > maxFileSize {
		return "", fmt.Errorf("%w: %.1fMB, maximum allowed: 10MB",
			core.ErrFileTooLarge, float64(fileSize)/1024/1024)
	}

	return fileType, nil
}

// Ingest runs the whole pipeline for one uploaded file and returns the
// summary payload. Chapter content is left out of the result; it lives only
// in storage. Any step's failure aborts the call and nothing is persisted.
func (s *IngestService) Ingest(ctx context.Context, fileBytes []byte, fileName string, fileSize int64, userID string) (*models.IngestResult, error) {
	log := s.log.With("file", fileName, "user", userID)

	// Step 1: validate.
	fileType, err := s.validateFile(fileName, fileSize)
	if err != nil {
		log.Warnw("file rejected", "step", "validate", "error", err)
		return nil, err
	}

	// Step 2: extract text.
	extraction, err := s.extractor.ExtractText(ctx, fileBytes, fileType)
	if err != nil {
		log.Errorw("extraction failed", "step", "extract", "error", err)
		return nil, fmt.Errorf("%w: %v", core.ErrExtractionFailed, err)
	}
	text := extraction.Text
	if utf8.RuneCountInString(text) < minTextLength {
		log.Warnw("extracted text too short", "step", "extract", "characters", utf8.RuneCountInString(text))
		return nil, core.ErrInsufficientContent
	}

	// Step 3: title and description, concurrently. Both must succeed.
	var title, description string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := s.gen.Generate(gctx, fmt.Sprintf(titlePrompt, fileName, text), core.GenConfig{Temperature: 0.7, MaxOutputTokens: 1024})
		if err != nil {
			return err
		}
		title = out
		return nil
	})
	g.Go(func() error {
		out, err := s.gen.Generate(gctx, fmt.Sprintf(descriptionPrompt, text), core.GenConfig{Temperature: 0.7, MaxOutputTokens: 1024})
		if err != nil {
			return err
		}
		description = out
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Errorw("course metadata generation failed", "step", "generate", "error", err)
		return nil, err
	}

	// Step 4: chunk into chapters. Independent of step 3's output; it runs
	// after only for simplicity, not correctness.
	chapters, err := s.chunker.Chunk(ctx, text, fileName)
	if err != nil {
		log.Errorw("chunking failed", "step", "chunk", "error", err)
		return nil, err
	}

	// Step 5: aggregates.
	totalWords := 0
	for _, ch := range chapters {
		totalWords += ch.WordCount
	}
	estimatedReadingTime := (totalWords + wordsPerMinute - 1) / wordsPerMinute

	// Step 6: persist course + chapters in one transaction.
	course := &models.Course{
		UserID:      userID,
		Title:       title,
		Description: description,
		Source: models.CourseSource{
			FileName: fileName,
			FileType: fileType,
			FileSize: fileSize,
		},
		Metadata: models.CourseMetadata{
			ChapterCount:         len(chapters),
			TotalWords:           totalWords,
			EstimatedReadingTime: estimatedReadingTime,
			ExtractionMetadata:   extraction.Metadata,
		},
		Status: "processed",
		Type:   "ingested",
	}

	started := time.Now()
	courseID, err := s.store.CreateCourseWithChapters(ctx, course, chapters)
	if err != nil {
		log.Errorw("persist failed", "step", "persist", "chapters", len(chapters), "error", err)
		return nil, fmt.Errorf("%w: %v", core.ErrPersistenceFailed, err)
	}
	log.Infow("course created",
		"courseId", courseID, "chapters", len(chapters), "totalWords", totalWords,
		"persistTime", time.Since(started))

	// Step 7: summary payload.
	summaries := make([]models.ChapterSummary, len(chapters))
	for i, ch := range chapters {
		summaries[i] = models.ChapterSummary{
			ID:            fmt.Sprintf("chapter-%d", ch.ChapterNumber),
			ChapterNumber: ch.ChapterNumber,
			Title:         ch.Title,
			Summary:       ch.Summary,
			WordCount:     ch.WordCount,
		}
	}

	return &models.IngestResult{
		CourseID:             courseID,
		Title:                title,
		Description:          description,
		ChapterCount:         len(chapters),
		TotalWords:           totalWords,
		EstimatedReadingTime: estimatedReadingTime,
		Chapters:             summaries,
	}, nil
}
