package domain

import "context"

// Passage is one chunk of source document text, the unit of retrieval.
// Immutable once created; SourceOrder preserves document ordering.
type Passage struct {
	Text        string `json:"text"`
	SourceOrder int    `json:"source_order"`
}

// SearchResult is a retrieved passage with its cosine similarity score.
type SearchResult struct {
	Passage Passage
	Score   float64
}

// Embedder maps passage or query text to fixed-dimension vectors.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Descriptor identifies the embedding backend and model, e.g.
	// "openai/text-embedding-3-small". Stored in archives so a resolved
	// store can be checked against the embedder it was built with.
	Descriptor() string
}

// TextExtractor converts an uploaded binary blob of a declared type
// into a single extracted text string.
type TextExtractor interface {
	Extract(filename string, declaredType string, data []byte) (string, error)
}

// BlobStore is an opaque byte store keyed by path.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error

	// Get returns ErrBlobNotFound when no blob exists at key.
	Get(ctx context.Context, key string) ([]byte, error)
}

// ErrBlobNotFound is returned by BlobStore.Get for unknown keys.
// Callers must treat it as "invalid or unknown identifier" and not retry.
var ErrBlobNotFound = NewNotFoundError("no blob stored at the given key")
