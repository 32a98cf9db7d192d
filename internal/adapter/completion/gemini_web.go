package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ragtutor/internal/domain"
	"ragtutor/internal/logger"

	"go.uber.org/zap"
)

const defaultGenerativeLanguageURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiWebCompletion implements domain.WebCompletionService against the
// Generative Language REST API with the google_search grounding tool
// enabled. The SDK clients do not expose grounding attributions, so this
// adapter speaks the REST surface directly.
type GeminiWebCompletion struct {
	apiKey            string
	model             string
	baseURL           string
	systemInstruction string
	httpClient        *http.Client
	maxAttempts       int
	baseDelay         time.Duration
}

// NewGeminiWebCompletion creates a web-grounded completion client.
// systemInstruction may be empty.
func NewGeminiWebCompletion(apiKey, modelName, systemInstruction string) (*GeminiWebCompletion, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key cannot be empty")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash-lite"
	}
	return &GeminiWebCompletion{
		apiKey:            apiKey,
		model:             modelName,
		baseURL:           defaultGenerativeLanguageURL,
		systemInstruction: systemInstruction,
		httpClient:        &http.Client{Timeout: 60 * time.Second},
		maxAttempts:       defaultMaxAttempts,
		baseDelay:         defaultBaseDelay,
	}, nil
}

type glPart struct {
	Text string `json:"text"`
}

type glContent struct {
	Role  string   `json:"role,omitempty"`
	Parts []glPart `json:"parts"`
}

type glTool struct {
	GoogleSearch struct{} `json:"google_search"`
}

type glRequest struct {
	Contents          []glContent `json:"contents"`
	SystemInstruction *glContent  `json:"systemInstruction,omitempty"`
	Tools             []glTool    `json:"tools,omitempty"`
}

type glResponse struct {
	Candidates []struct {
		Content struct {
			Parts []glPart `json:"parts"`
		} `json:"content"`
		GroundingMetadata struct {
			GroundingAttributions []struct {
				Web struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingAttributions"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
}

// CompleteWithSearch asks the model to answer with Google Search
// grounding and returns the generated text plus source attributions.
// Transient failures retry with a doubling delay; HTTP 429 surfaces as
// domain.ErrRateLimited without retrying.
func (s *GeminiWebCompletion) CompleteWithSearch(ctx context.Context, prompt string) (string, []domain.Source, error) {
	reqBody := glRequest{
		Contents: []glContent{{Role: "user", Parts: []glPart{{Text: prompt}}}},
		Tools:    []glTool{{}},
	}
	if s.systemInstruction != "" {
		reqBody.SystemInstruction = &glContent{Parts: []glPart{{Text: s.systemInstruction}}}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)

	var lastErr error
	delay := s.baseDelay
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		text, sources, err := s.doRequest(ctx, url, payload)
		if err == nil {
			return text, sources, nil
		}
		if err == domain.ErrRateLimited || isRateLimited(err) {
			return "", nil, fmt.Errorf("%w: web search completion", domain.ErrRateLimited)
		}

		lastErr = err
		logger.Get().Warn("Web-grounded completion attempt failed",
			zap.Int("attempt", attempt+1),
			zap.String("model", s.model),
			zap.Error(err),
		)
		if attempt == s.maxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return "", nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return "", nil, fmt.Errorf("web search completion failed after %d attempts: %w", s.maxAttempts, lastErr)
}

func (s *GeminiWebCompletion) doRequest(ctx context.Context, url string, payload []byte) (string, []domain.Source, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, err
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", nil, domain.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed glResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", nil, fmt.Errorf("no content generated")
	}

	var text string
	for _, part := range parsed.Candidates[0].Content.Parts {
		text += part.Text
	}

	var sources []domain.Source
	for _, attr := range parsed.Candidates[0].GroundingMetadata.GroundingAttributions {
		if attr.Web.URI != "" && attr.Web.Title != "" {
			sources = append(sources, domain.Source{Title: attr.Web.Title, URL: attr.Web.URI})
		}
	}

	return text, sources, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ domain.WebCompletionService = (*GeminiWebCompletion)(nil)
