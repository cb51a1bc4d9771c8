package chunker

import (
	"encoding/json"
	"fmt"
	"strings"
)

// rawChapter is the shape we expect per element of the model's JSON payload.
// Unknown and missing fields are tolerated; wordCount is deliberately absent
// because we never read it.
type rawChapter struct {
	ChapterNumber int    `json:"chapterNumber"`
	Title         string `json:"title"`
	Summary       string `json:"summary"`
	Content       string `json:"content"`
}

// chapterEnvelope matches payloads wrapped as {"chapters": [...]}.
type chapterEnvelope struct {
	Chapters []rawChapter `json:"chapters"`
}

// decodeChapters parses the model output in two phases: a strict parse first,
// then a bounded set of named repairs with one re-attempt each. Returns an
// error only when nothing yields chapters.
func decodeChapters(payload string) ([]rawChapter, error) {
	candidates := []string{
		payload,
		stripCodeFence(payload),
		extractJSONArray(payload),
	}

	var lastErr error
	for _, cand := range candidates {
		cand = strings.TrimSpace(cand)
		if cand == "" {
			continue
		}
		raw, err := parseChapterJSON(cand)
		if err == nil && len(raw) > 0 {
			return raw, nil
		}
		if err != nil {
			lastErr = err
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no chapter array found")
	}
	return nil, lastErr
}

// parseChapterJSON accepts either a bare array or a {"chapters": [...]} object.
func parseChapterJSON(s string) ([]rawChapter, error) {
	var arr []rawChapter
	if err := json.Unmarshal([]byte(s), &arr); err == nil {
		return arr, nil
	}

	var env chapterEnvelope
	if err := json.Unmarshal([]byte(s), &env); err != nil {
		return nil, fmt.Errorf("parse chapters: %w", err)
	}
	return env.Chapters, nil
}

// stripCodeFence removes a surrounding markdown fence (``` or ```json) plus
// any prose outside of it. Returns the input unchanged when no fence exists.
func stripCodeFence(s string) string {
	start := strings.Index(s, "```")
	if start == -1 {
		return s
	}
	body := s[start+3:]
	// Drop an optional language tag on the fence line.
	if nl := strings.IndexByte(body, '\n'); nl != -1 {
		firstLine := strings.TrimSpace(body[:nl])
		if firstLine == "" || !strings.ContainsAny(firstLine, "[{") {
			body = body[nl+1:]
		}
	}
	if end := strings.LastIndex(body, "```"); end != -1 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// extractJSONArray slices from the first '[' to the matching last ']' so a
// payload buried in prose still parses. Returns "" when no array is present.
func extractJSONArray(s string) string {
	start := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}
