// Package llm wraps the Gemini API used to elaborate topics and
// generate animation code.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"eduvid-pipeline/config"
)

// Client is the minimal text-completion boundary the pipeline depends on.
// Prompt in, completion out; implementations may fail with rate limits.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrRateLimitExceeded is returned once all rate-limit retries are exhausted.
var ErrRateLimitExceeded = errors.New("API rate limit exceeded, please wait a few minutes and try again")

// GeminiClient calls the Gemini API with rate-limit retry
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float64
	maxRetries  int
}

// NewGeminiClient creates a Gemini client from GEMINI_API_KEY
func NewGeminiClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = cfg.LLM.Model
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	log.Infof("[llm] Using model: %s", model)

	return &GeminiClient{
		client:      client,
		model:       model,
		temperature: cfg.LLM.Temperature,
		maxRetries:  cfg.LLM.MaxRetries,
	}, nil
}

// Complete sends one prompt and returns the trimmed completion text.
// Rate-limit errors (429 / resource exhausted) are retried with exponential
// backoff starting at 2s; any other error is surfaced immediately.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	var genCfg *genai.GenerateContentConfig
	if c.temperature > 0 {
		genCfg = &genai.GenerateContentConfig{Temperature: genai.Ptr(float32(c.temperature))}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0

	attempt := 0
	var text string
	err := backoff.Retry(func() error {
		attempt++
		resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), genCfg)
		if err != nil {
			if isRateLimit(err) {
				log.Warnf("[llm] Rate limit hit on attempt %d/%d, backing off...", attempt, c.maxRetries)
				return err
			}
			return backoff.Permanent(err)
		}
		text = strings.TrimSpace(resp.Text())
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxRetries-1)), ctx))

	if err != nil {
		if isRateLimit(err) {
			return "", ErrRateLimitExceeded
		}
		return "", fmt.Errorf("gemini completion: %w", err)
	}
	return text, nil
}

// isRateLimit reports whether an API error is the retryable 429 class
func isRateLimit(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == 429 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(strings.ToLower(msg), "resource exhausted") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

// StripCodeFence removes a surrounding ```python / ``` markdown fence from a
// completion, returning the inner code. Completions without a fence pass
// through unchanged.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```python"); i >= 0 {
		s = s[i+len("```python"):]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
		return strings.TrimSpace(s)
	}
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
		return strings.TrimSpace(s)
	}
	return s
}
