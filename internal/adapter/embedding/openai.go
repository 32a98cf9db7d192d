package embedding

import (
	"context"
	"fmt"

	"ragtutor/internal/domain"

	"github.com/tmc/langchaingo/embeddings"
	openaiLLM "github.com/tmc/langchaingo/llms/openai"
)

// OpenAIEmbedder implements the domain.Embedder interface using OpenAI.
type OpenAIEmbedder struct {
	embedder  embeddings.Embedder
	modelName string
}

// NewOpenAIEmbedder creates a new OpenAIEmbedder.
func NewOpenAIEmbedder(apiKey, modelName string) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key cannot be empty")
	}
	if modelName == "" {
		modelName = "text-embedding-3-small"
	}

	llm, err := openaiLLM.New(
		openaiLLM.WithToken(apiKey),
		openaiLLM.WithEmbeddingModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo OpenAI client for embedder: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create generic embedder from OpenAI LLM: %w", err)
	}

	return &OpenAIEmbedder{embedder: embedder, modelName: modelName}, nil
}

// EmbedDocuments embeds a batch of passage texts.
func (s *OpenAIEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("input texts cannot be empty for embedding")
	}
	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings using OpenAI: %w", err)
	}
	return vectors, nil
}

// EmbedQuery creates an embedding for the given text using the OpenAI embedder.
func (s *OpenAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("input text cannot be empty for embedding")
	}
	vector, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding using OpenAI: %w", err)
	}
	return vector, nil
}

// Descriptor identifies the backend and model this embedder uses.
func (s *OpenAIEmbedder) Descriptor() string {
	return "openai/" + s.modelName
}

var _ domain.Embedder = (*OpenAIEmbedder)(nil)
