package domain

import "context"

// Source is a web attribution returned by a grounded completion call.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// CompletionService is a black-box text completion backend.
type CompletionService interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// WebCompletionService is a completion backend with web-search grounding.
// Returned sources attribute the pages the answer was grounded on.
type WebCompletionService interface {
	CompleteWithSearch(ctx context.Context, prompt string) (string, []Source, error)
}

// QuizGenerationService generates a batch of multiple-choice questions
// from source text, avoiding literal repetition of the given questions.
type QuizGenerationService interface {
	GenerateQuizBatch(ctx context.Context, text string, avoid []string) ([]QuizQuestion, error)
}

// Summarizer produces a student-friendly summary of source text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}
