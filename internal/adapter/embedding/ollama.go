package embedding

import (
	"context"
	"fmt"

	"ragtutor/internal/domain"

	"github.com/tmc/langchaingo/embeddings"
	ollamaLLM "github.com/tmc/langchaingo/llms/ollama"
)

// OllamaEmbedder implements the domain.Embedder interface using Ollama.
type OllamaEmbedder struct {
	embedder  embeddings.Embedder
	modelName string
}

// NewOllamaEmbedder creates a new OllamaEmbedder.
// It requires the Ollama server URL and model name.
func NewOllamaEmbedder(serverURL, modelName string) (*OllamaEmbedder, error) {
	if serverURL == "" {
		return nil, fmt.Errorf("ollama server URL cannot be empty")
	}
	if modelName == "" {
		return nil, fmt.Errorf("ollama model name cannot be empty")
	}

	llm, err := ollamaLLM.New(
		ollamaLLM.WithModel(modelName),
		ollamaLLM.WithServerURL(serverURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo Ollama client for embedder: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create generic embedder from Ollama LLM: %w", err)
	}

	return &OllamaEmbedder{embedder: embedder, modelName: modelName}, nil
}

// EmbedDocuments embeds a batch of passage texts.
func (s *OllamaEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("input texts cannot be empty for embedding")
	}
	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings using Ollama: %w", err)
	}
	return vectors, nil
}

// EmbedQuery creates an embedding for the given text using the Ollama embedder.
func (s *OllamaEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("input text cannot be empty for embedding")
	}
	vector, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding using Ollama: %w", err)
	}
	return vector, nil
}

// Descriptor identifies the backend and model this embedder uses.
func (s *OllamaEmbedder) Descriptor() string {
	return "ollama/" + s.modelName
}

var _ domain.Embedder = (*OllamaEmbedder)(nil)
