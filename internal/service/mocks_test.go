package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ragtutor/internal/domain"
)

type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) Extract(filename, declaredType string, data []byte) (string, error) {
	args := m.Called(filename, declaredType, data)
	return args.String(0), args.Error(1)
}

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockEmbedder) Descriptor() string {
	return "mock/embedder"
}

type MockCompletionService struct {
	mock.Mock
}

func (m *MockCompletionService) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type MockWebCompletionService struct {
	mock.Mock
}

func (m *MockWebCompletionService) CompleteWithSearch(ctx context.Context, prompt string) (string, []domain.Source, error) {
	args := m.Called(ctx, prompt)
	var sources []domain.Source
	if args.Get(1) != nil {
		sources = args.Get(1).([]domain.Source)
	}
	return args.String(0), sources, args.Error(2)
}

type MockQuizGenerationService struct {
	mock.Mock
}

func (m *MockQuizGenerationService) GenerateQuizBatch(ctx context.Context, text string, avoid []string) ([]domain.QuizQuestion, error) {
	args := m.Called(ctx, text, avoid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.QuizQuestion), args.Error(1)
}

type MockSummarizer struct {
	mock.Mock
}

func (m *MockSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}
