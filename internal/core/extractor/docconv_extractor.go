package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"code.sajari.com/docconv"

	"github.com/courseforge-ai/courseforge/internal/core"
)

// mimeTypes maps the extensions we can parse to the content type docconv
// expects. Detection knows more formats than ingestion allows; the allowed
// set is enforced by the validator, not here.
var mimeTypes = map[string]string{
	"pdf":  "application/pdf",
	"txt":  "text/plain",
	"epub": "application/epub+zip",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"doc":  "application/msword",
	"rtf":  "application/rtf",
	"html": "text/html",
	"odt":  "application/vnd.oasis.opendocument.text",
}

var _ core.TextExtractor = (*DocconvExtractor)(nil)

// DocconvExtractor extracts plain text from uploaded documents via docconv.
type DocconvExtractor struct {
	useReadability bool
}

func NewDocconvExtractor(useReadability bool) *DocconvExtractor {
	return &DocconvExtractor{useReadability: useReadability}
}

// DetectFileType derives the file type from the file name extension.
func (e *DocconvExtractor) DetectFileType(fileName string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if _, ok := mimeTypes[ext]; ok {
		return ext
	}
	return ""
}

// ExtractText converts the raw bytes into plain text plus extraction metadata.
func (e *DocconvExtractor) ExtractText(ctx context.Context, data []byte, fileType string) (*core.ExtractionResult, error) {
	if fileType == "epub" {
		return e.extractEPUB(ctx, data)
	}

	mime, ok := mimeTypes[fileType]
	if !ok {
		return nil, fmt.Errorf("no extractor for file type %q", fileType)
	}

	res, err := docconv.Convert(bytes.NewReader(data), mime, e.useReadability)
	if err != nil {
		return nil, fmt.Errorf("docconv %s: %w", fileType, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(res.Body)

	meta := map[string]string{
		"extractor":  "docconv",
		"fileType":   fileType,
		"characters": strconv.Itoa(len([]rune(text))),
	}
	for k, v := range res.Meta {
		meta[k] = v
	}

	return &core.ExtractionResult{Text: text, Metadata: meta}, nil
}

// extractEPUB walks the EPUB container (a zip of XHTML sections) and converts
// each section through docconv's HTML path. Sections come out in archive
// order, which matches the spine for every mainstream packager.
func (e *DocconvExtractor) extractEPUB(ctx context.Context, data []byte) (*core.ExtractionResult, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open epub: %w", err)
	}

	var parts []string
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := strings.ToLower(f.Name)
		if !strings.HasSuffix(name, ".xhtml") && !strings.HasSuffix(name, ".html") && !strings.HasSuffix(name, ".htm") {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open epub section %s: %w", f.Name, err)
		}
		res, err := docconv.Convert(rc, "text/html", e.useReadability)
		_ = rc.Close()
		if err != nil {
			// One broken section shouldn't sink the whole book.
			continue
		}
		if t := strings.TrimSpace(res.Body); t != "" {
			parts = append(parts, t)
		}
	}

	if len(parts) == 0 {
		return nil, fmt.Errorf("epub contains no readable sections")
	}

	text := strings.Join(parts, "\n\n")
	meta := map[string]string{
		"extractor":  "docconv",
		"fileType":   "epub",
		"sections":   strconv.Itoa(len(parts)),
		"characters": strconv.Itoa(len([]rune(text))),
	}
	return &core.ExtractionResult{Text: text, Metadata: meta}, nil
}
