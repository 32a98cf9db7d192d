package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"ragtutor/internal/domain"
	"ragtutor/internal/logger"
)

const learningPathPromptTemplate = `Create a detailed, step-by-step learning path for a student wanting to learn '%s' within the subject of '%s'.

User Profile:
- Current Knowledge: %s
- Total Duration: %s
- Time Commitment: %d hours per week.

Requirements:
1. Break down the timeline into Weeks (e.g., Week 1, Week 2...).
2. For each week, define specific Learning Objectives and Topics to cover.
3. Provide a list of high-quality, free online resources (URLs to documentation, video tutorials, courses) for each topic.
4. Include a "Practical Exercise" or "Project" for each week to reinforce learning.
5. Structure the response clearly using Markdown headings and bullet points.
6. The links should be visible and not embedded into any text.`

// LearningPathProfile describes the student a study schedule is built for.
type LearningPathProfile struct {
	Subject        string
	Topic          string
	KnowledgeLevel string
	Duration       string
	HoursPerWeek   int
}

// LearningPath is a generated study schedule with its web attributions.
type LearningPath struct {
	Schedule string
	Sources  []domain.Source
}

// QuizResultExport is one scored quiz line included in a docs export.
type QuizResultExport struct {
	Question string `json:"question"`
	Chosen   string `json:"chosen"`
	Correct  string `json:"correct"`
}

// StudyService covers the study extras: document summaries, personalized
// learning paths and best-effort export to an external docs webhook.
type StudyService struct {
	summarizer domain.Summarizer
	architect  domain.WebCompletionService
	webhookURL string
	httpClient *http.Client
}

func NewStudyService(summarizer domain.Summarizer, architect domain.WebCompletionService, webhookURL string) *StudyService {
	return &StudyService{
		summarizer: summarizer,
		architect:  architect,
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Summarize produces a student-friendly summary of the given text.
func (s *StudyService) Summarize(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", domain.NewInvalidInputError("nothing to summarize")
	}
	return s.summarizer.Summarize(ctx, text)
}

// GenerateLearningPath builds a web-grounded study schedule for the
// profile, with source links for the recommended materials.
func (s *StudyService) GenerateLearningPath(ctx context.Context, profile LearningPathProfile) (*LearningPath, error) {
	if profile.Subject == "" || profile.Topic == "" {
		return nil, domain.NewInvalidInputError("subject and topic are required")
	}

	prompt := fmt.Sprintf(learningPathPromptTemplate,
		profile.Topic,
		profile.Subject,
		profile.KnowledgeLevel,
		profile.Duration,
		profile.HoursPerWeek,
	)

	text, sources, err := s.architect.CompleteWithSearch(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return &LearningPath{Schedule: text, Sources: sources}, nil
}

// ExportToDocs posts the summary and quiz results to the configured
// webhook. It is best-effort: failures are logged and reported as
// false, never as an error.
func (s *StudyService) ExportToDocs(ctx context.Context, title, summary string, results []QuizResultExport) bool {
	if s.webhookURL == "" {
		return false
	}

	payload := map[string]any{"title": title}
	if summary != "" {
		payload["summary"] = summary
	}
	if len(results) > 0 {
		payload["quiz_results"] = results
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logger.Get().Warn("Failed to encode docs export payload", zap.Error(err))
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		logger.Get().Warn("Failed to build docs export request", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.Get().Warn("Docs export failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		logger.Get().Warn("Docs export rejected", zap.Int("status", resp.StatusCode))
		return false
	}
	return true
}
