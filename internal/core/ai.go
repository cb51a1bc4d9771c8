package core

import "context"

// GenConfig carries the per-prompt generation knobs forwarded to the provider.
type GenConfig struct {
	Temperature     float32
	MaxOutputTokens int32
}

// TextGenerator is the AI structuring capability used for title, description
// and chapter generation. Implementations own retry and model-fallback policy;
// callers treat Generate as one blocking call.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, cfg GenConfig) (string, error)
}
