package chunker

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/courseforge-ai/courseforge/internal/core"
	"github.com/courseforge-ai/courseforge/internal/models"
)

const chunkPrompt = `You are a course designer. Split the following document into logically coherent chapters.

Return ONLY a JSON array. Each element must have exactly these fields:
- "chapterNumber": sequential integer starting at 1
- "title": a short descriptive chapter title
- "summary": 1-2 sentence summary of the chapter
- "content": the full text of that chapter, copied from the document

Do not add commentary before or after the JSON.

Document (from file %q):

%s`

var _ core.ContentChunker = (*Chunker)(nil)

// Chunker asks the model to split extracted text into chapters, then repairs
// whatever comes back. Model output is not bit-reliable: fenced payloads,
// broken numbering and missing fields are all tolerated; word counts are
// always recomputed from content.
type Chunker struct {
	gen core.TextGenerator
	log *zap.SugaredLogger
}

func New(gen core.TextGenerator, log *zap.SugaredLogger) *Chunker {
	return &Chunker{gen: gen, log: log}
}

// Chunk returns the chapter sequence for text, strictly ordered 1..N with no
// gaps. Fails with ErrChunkingFailed only when zero usable chapters remain
// after repair.
func (c *Chunker) Chunk(ctx context.Context, text, fileName string) ([]models.Chapter, error) {
	prompt := fmt.Sprintf(chunkPrompt, fileName, text)

	out, err := c.gen.Generate(ctx, prompt, core.GenConfig{Temperature: 0.3, MaxOutputTokens: 8192})
	if err != nil {
		return nil, err
	}

	raw, err := decodeChapters(out)
	if err != nil {
		c.log.Errorw("chapter payload unparsable after repair", "file", fileName, "error", err)
		return nil, fmt.Errorf("%w: %v", core.ErrChunkingFailed, err)
	}

	chapters := normalizeChapters(raw)
	if len(chapters) == 0 {
		return nil, fmt.Errorf("%w: model returned no usable chapters", core.ErrChunkingFailed)
	}

	// Chapter spans are not guaranteed to cover the source text; warn when a
	// large share went missing so truncated courses are diagnosable.
	covered := 0
	for _, ch := range chapters {
		covered += len(ch.Content)
	}
	if covered < len(text)/2 {
		c.log.Warnw("chapters cover less than half of the source text",
			"file", fileName, "sourceBytes", len(text), "chapterBytes", covered, "chapters", len(chapters))
	}

	return chapters, nil
}

// normalizeChapters applies the post-parse repairs: drop entries with no
// content, renumber sequentially from 1 in returned order, synthesize a title
// from the first content line when missing, and recompute word counts.
func normalizeChapters(raw []rawChapter) []models.Chapter {
	chapters := make([]models.Chapter, 0, len(raw))
	for _, r := range raw {
		content := strings.TrimSpace(r.Content)
		if content == "" {
			continue
		}

		n := len(chapters) + 1
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = titleFromContent(content)
		}

		chapters = append(chapters, models.Chapter{
			ID:            fmt.Sprintf("chapter-%d", n),
			ChapterNumber: n,
			Title:         title,
			Content:       content,
			Summary:       strings.TrimSpace(r.Summary),
			WordCount:     countWords(content),
			Order:         n,
		})
	}
	return chapters
}

// titleFromContent derives a fallback title from the first non-empty line.
func titleFromContent(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		const maxTitleLen = 80
		runes := []rune(line)
		if len(runes) > maxTitleLen {
			return string(runes[:maxTitleLen])
		}
		return line
	}
	return "Untitled chapter"
}

// countWords is the deterministic whitespace-delimited token count used for
// every chapter; model-provided counts are never trusted.
func countWords(s string) int {
	return len(strings.Fields(s))
}
