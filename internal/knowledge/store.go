// Package knowledge implements the in-memory nearest-neighbor store over
// (passage, vector) pairs, its self-contained archive format and the
// remote registry that persists archives by opaque identifier.
package knowledge

import (
	"context"
	"fmt"
	"math"
	"sort"

	"ragtutor/internal/domain"
)

// DefaultTopK is the retrieval depth used when the caller passes k <= 0.
const DefaultTopK = 2

// Store is an immutable nearest-neighbor structure over passages.
// Built once per upload; never mutated afterwards, so concurrent queries
// need no locking.
type Store struct {
	passages []domain.Passage
	vectors  [][]float32
	dim      int
	embedder string

	// minScore is advisory retrieval metadata. Query does not filter
	// by it: all top-k matches are returned regardless of score.
	minScore float64
}

// Build embeds every passage in one batch and assembles the store.
// Building is all-or-nothing: any embedding failure or inconsistent
// vector dimension returns an error and no store.
func Build(ctx context.Context, passages []domain.Passage, embedder domain.Embedder) (*Store, error) {
	if len(passages) == 0 {
		return nil, domain.NewInvalidInputError("cannot build a knowledge store from zero passages")
	}

	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}

	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, domain.NewEmbeddingError("embedding call failed", err)
	}
	if len(vectors) != len(passages) {
		return nil, domain.NewEmbeddingError(
			fmt.Sprintf("embedder returned %d vectors for %d passages", len(vectors), len(passages)), nil)
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, domain.NewEmbeddingError("embedder returned a zero-dimension vector", nil)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, domain.NewEmbeddingError(
				fmt.Sprintf("vector %d has dimension %d, expected %d", i, len(v), dim), nil)
		}
	}

	stored := make([]domain.Passage, len(passages))
	copy(stored, passages)

	return &Store{
		passages: stored,
		vectors:  vectors,
		dim:      dim,
		embedder: embedder.Descriptor(),
	}, nil
}

// Len returns the number of indexed passages.
func (s *Store) Len() int { return len(s.passages) }

// Dimension returns the declared vector dimension.
func (s *Store) Dimension() int { return s.dim }

// EmbedderDescriptor names the embedding backend the store was built with.
func (s *Store) EmbedderDescriptor() string { return s.embedder }

// Passages returns the indexed passages in source order.
func (s *Store) Passages() []domain.Passage { return s.passages }

// SetMinScore records the advisory similarity threshold on the store.
func (s *Store) SetMinScore(score float64) { s.minScore = score }

// MinScore returns the advisory similarity threshold.
func (s *Store) MinScore() float64 { return s.minScore }

// Query embeds the question and returns up to k passages ordered by
// descending cosine similarity. k <= 0 falls back to DefaultTopK.
//
// The configured minimum score is deliberately not enforced here: the
// source system configures a threshold on the retriever but keeps every
// top-k match regardless of score, and callers depend on that.
func (s *Store) Query(ctx context.Context, question string, embedder domain.Embedder, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	qv, err := embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, domain.NewEmbeddingError("failed to embed query", err)
	}
	if len(qv) != s.dim {
		return nil, domain.NewEmbeddingError(
			fmt.Sprintf("query vector dimension %d does not match store dimension %d", len(qv), s.dim), nil)
	}

	results := make([]domain.SearchResult, 0, len(s.vectors))
	for i, v := range s.vectors {
		results = append(results, domain.SearchResult{
			Passage: s.passages[i],
			Score:   cosine(qv, v),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
