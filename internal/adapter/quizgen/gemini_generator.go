// Package quizgen generates quiz batches and summaries from document
// text using the Gemini API.
package quizgen

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"ragtutor/internal/domain"
	"ragtutor/internal/logger"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// contextLimit caps how much document text is sent per generation call.
const contextLimit = 25000

const quizPromptTemplate = `
CRITICAL RULES:
- NO PREAMBLE
- ONLY JSON OUTPUT
- USE ONLY PROVIDED TEXT
- EXACTLY %d QUESTIONS
- RANDOMIZE CORRECT ANSWERS (Do not always make 'A' the answer)

TEXT:
%s

JSON SCHEMA:
{
  "questions": [
    {
      "question": "string",
      "options": {
        "A": "string",
        "B": "string",
        "C": "string",
        "D": "string"
      },
      "answer": "A|B|C|D",
      "reason": "string",
      "type": "True/False | Numerical | Theory | MCQ",
      "difficulty": "Easy | Medium | Hard"
    }
  ]
}
`

const summaryPrompt = "Summarize the following content in simple, student-friendly language:\n\n%s"

// GeminiGenerator implements domain.QuizGenerationService and
// domain.Summarizer using the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiGenerator creates a new GeminiGenerator.
func NewGeminiGenerator(ctx context.Context, apiKey, modelName string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key cannot be empty")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash-lite"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.7)
	model.SetTopP(0.9)

	return &GeminiGenerator{client: client, model: model}, nil
}

// Close releases the underlying client.
func (g *GeminiGenerator) Close() {
	g.client.Close()
}

// GenerateQuizBatch requests a batch of questions generated from text,
// instructing the model to avoid every previously asked question.
func (g *GeminiGenerator) GenerateQuizBatch(ctx context.Context, text string, avoid []string) ([]domain.QuizQuestion, error) {
	prompt := fmt.Sprintf(quizPromptTemplate, domain.QuizBatchSize, clip(text, contextLimit))
	if len(avoid) > 0 {
		prompt = fmt.Sprintf("DO NOT repeat these questions:\n%s\n\n%s", strings.Join(avoid, "\n"), prompt)
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if isQuotaError(err) {
			return nil, fmt.Errorf("%w: quiz generation", domain.ErrRateLimited)
		}
		return nil, domain.NewCompletionError(err)
	}

	raw := extractText(resp)
	if raw == "" {
		return nil, domain.NewQuizParseError(fmt.Errorf("model returned no content"))
	}

	questions, err := ParseQuizResponse(raw)
	if err != nil {
		return nil, err
	}

	logger.Get().Info("Generated quiz batch",
		zap.Int("questions", len(questions)),
		zap.Int("avoided", len(avoid)),
	)
	return questions, nil
}

// Summarize produces a student-friendly summary of the text.
func (g *GeminiGenerator) Summarize(ctx context.Context, text string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(fmt.Sprintf(summaryPrompt, clip(text, contextLimit))))
	if err != nil {
		if isQuotaError(err) {
			return "", fmt.Errorf("%w: summary generation", domain.ErrRateLimited)
		}
		return "", domain.NewCompletionError(err)
	}

	summary := strings.TrimSpace(extractText(resp))
	if summary == "" {
		return "", domain.NewCompletionError(fmt.Errorf("model returned no content"))
	}
	return summary, nil
}

var codeFencePattern = regexp.MustCompile("```json|```")

type quizPayload struct {
	Questions []domain.QuizQuestion `json:"questions"`
}

// ParseQuizResponse parses the model's JSON quiz output. Markdown code
// fences are stripped first. Entries failing validation are skipped with
// a warning; a response with no valid entries is a parse error.
func ParseQuizResponse(raw string) ([]domain.QuizQuestion, error) {
	cleaned := strings.TrimSpace(codeFencePattern.ReplaceAllString(raw, ""))

	var payload quizPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, domain.NewQuizParseError(err)
	}
	if len(payload.Questions) == 0 {
		return nil, domain.NewQuizParseError(fmt.Errorf("response contains no questions"))
	}

	questions := make([]domain.QuizQuestion, 0, len(payload.Questions))
	for i := range payload.Questions {
		q := payload.Questions[i]
		if err := q.Validate(); err != nil {
			logger.Get().Warn("Skipping malformed generated question",
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, domain.NewQuizParseError(fmt.Errorf("no valid questions in response"))
	}
	return questions, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return b.String()
}

func isQuotaError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate limit")
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var (
	_ domain.QuizGenerationService = (*GeminiGenerator)(nil)
	_ domain.Summarizer            = (*GeminiGenerator)(nil)
)
