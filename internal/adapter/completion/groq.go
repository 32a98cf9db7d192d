// Package completion provides the text completion backends: an
// OpenAI-compatible chat client used by the retrieval-augmented
// answerer and a web-grounded Gemini client used for fallback search.
package completion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ragtutor/internal/domain"
	"ragtutor/internal/logger"

	"github.com/tmc/langchaingo/llms"
	openaiLLM "github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

const (
	defaultMaxAttempts = 5
	defaultBaseDelay   = time.Second
)

// GroqCompletion implements domain.CompletionService against any
// OpenAI-compatible endpoint. Transient transport failures are retried
// with exponential backoff; rate-limit conditions are surfaced
// immediately as domain.ErrRateLimited and never retried.
type GroqCompletion struct {
	llm         llms.Model
	temperature float64
	maxAttempts int
	baseDelay   time.Duration
}

// NewGroqCompletion creates a completion client for the given
// OpenAI-compatible endpoint.
func NewGroqCompletion(apiKey, modelName, baseURL string) (*GroqCompletion, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("groq API key cannot be empty")
	}
	if modelName == "" {
		modelName = "llama-3.1-8b-instant"
	}

	opts := []openaiLLM.Option{
		openaiLLM.WithToken(apiKey),
		openaiLLM.WithModel(modelName),
	}
	if baseURL != "" {
		opts = append(opts, openaiLLM.WithBaseURL(baseURL))
	}

	llm, err := openaiLLM.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo client: %w", err)
	}

	return &GroqCompletion{
		llm:         llm,
		temperature: 0.7,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
	}, nil
}

// Complete generates text for the prompt, retrying transient failures
// with a doubling delay (bounded attempts).
func (s *GroqCompletion) Complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	delay := s.baseDelay

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		out, err := llms.GenerateFromSinglePrompt(ctx, s.llm, prompt, llms.WithTemperature(s.temperature))
		if err == nil {
			return strings.TrimSpace(out), nil
		}
		if isRateLimited(err) {
			return "", fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
		}

		lastErr = err
		logger.Get().Warn("Completion attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		if attempt == s.maxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return "", fmt.Errorf("completion failed after %d attempts: %w", s.maxAttempts, lastErr)
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota")
}

var _ domain.CompletionService = (*GroqCompletion)(nil)
