package core

import "errors"

// Failure kinds surfaced by the ingestion pipeline. Handlers map these to
// HTTP statuses; everything else stays a 500. Wrap with fmt.Errorf("%w: ...")
// to attach detail without losing the kind.
var (
	ErrUnsupportedFormat    = errors.New("unsupported file format")
	ErrFileTooLarge         = errors.New("file too large")
	ErrExtractionFailed     = errors.New("text extraction failed")
	ErrInsufficientContent  = errors.New("document does not contain enough readable text to create a course")
	ErrAllModelsRateLimited = errors.New("all models are rate-limited, try again in a minute")
	ErrProvider             = errors.New("ai provider error")
	ErrEmptyResponse        = errors.New("empty response from model")
	ErrChunkingFailed       = errors.New("could not split the document into chapters")
	ErrPersistenceFailed    = errors.New("failed to store course")

	ErrCourseNotFound = errors.New("course not found")
	ErrForbidden      = errors.New("course belongs to another user")
)
