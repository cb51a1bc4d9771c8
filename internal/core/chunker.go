package core

import (
	"context"

	"github.com/courseforge-ai/courseforge/internal/models"
)

// ContentChunker splits extracted text into an ordered chapter sequence,
// numbered contiguously from 1.
type ContentChunker interface {
	Chunk(ctx context.Context, text, fileName string) ([]models.Chapter, error)
}
