package core

import "context"

// ExtractionResult is the output of one text extraction pass.
type ExtractionResult struct {
	Text     string
	Metadata map[string]string
}

// TextExtractor turns raw uploaded bytes into plain text.
type TextExtractor interface {
	// DetectFileType maps a file name to a known type ("pdf", "txt", ...).
	// Returns "" when the extension is not recognized at all.
	DetectFileType(fileName string) string

	// ExtractText parses the bytes according to the detected file type.
	ExtractText(ctx context.Context, data []byte, fileType string) (*ExtractionResult, error)
}
