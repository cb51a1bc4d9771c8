package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/courseforge-ai/courseforge/internal/core"
)

const (
	// maxRetries is how many times a rate-limited call is retried on the same
	// model before advancing to the next one in the list.
	maxRetries = 3
	// baseDelay is the first backoff; it doubles on every retry (2s, 4s, 8s).
	baseDelay = 2 * time.Second
)

var _ core.TextGenerator = (*Client)(nil)

// Client generates text through an ordered list of candidate models: primary
// first, then degraded fallbacks. Rate limits are retried with exponential
// backoff per model; all other provider errors fail the call immediately.
// The model list is read-only after construction, so concurrent calls are safe.
type Client struct {
	provider Provider
	models   []string
	limiter  *rate.Limiter
	log      *zap.SugaredLogger

	// sleep is swapped out in tests to observe backoff without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewClient(provider Provider, models []string, log *zap.SugaredLogger) *Client {
	return &Client{
		provider: provider,
		models:   models,
		limiter:  rate.NewLimiter(rate.Every(time.Second), 4),
		log:      log,
		sleep:    sleepCtx,
	}
}

// Generate runs one prompt through the model list with the retry/fallback
// policy. All retry state is local to the call.
func (c *Client) Generate(ctx context.Context, prompt string, cfg core.GenConfig) (string, error) {
	for _, model := range c.models {
		for attempt := 0; ; attempt++ {
			if c.limiter != nil {
				if err := c.limiter.Wait(ctx); err != nil {
					return "", err
				}
			}

			text, err := c.provider.GenerateContent(ctx, model, prompt, cfg)
			if err == nil {
				if strings.TrimSpace(text) == "" {
					return "", core.ErrEmptyResponse
				}
				return strings.TrimSpace(text), nil
			}

			if !isRateLimited(err) {
				return "", fmt.Errorf("%w: %v", core.ErrProvider, err)
			}

			if attempt >= maxRetries {
				c.log.Warnw("rate limited, switching model", "model", model, "retries", maxRetries)
				break
			}

			delay := baseDelay << attempt
			c.log.Warnw("rate limited, backing off",
				"model", model, "delay", delay, "attempt", attempt+1, "maxRetries", maxRetries)
			if err := c.sleep(ctx, delay); err != nil {
				return "", err
			}
		}
	}
	return "", core.ErrAllModelsRateLimited
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
