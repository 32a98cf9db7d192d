package embedding

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"time"

	"ragtutor/internal/cache"
	"ragtutor/internal/domain"
	"ragtutor/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultEmbeddingTTL = 168 * time.Hour // 7 days

// CachedEmbedder wraps another embedder with a query-embedding cache.
// Query vectors are stable for a given backend/model and text, so they
// are cached by content hash; concurrent misses for the same key are
// collapsed with singleflight. Document batches are not cached: a batch
// is embedded once per upload and never repeated.
type CachedEmbedder struct {
	inner   domain.Embedder
	cache   domain.Cache
	ttl     time.Duration
	sfGroup singleflight.Group
}

// NewCachedEmbedder wraps inner with the given cache. A zero ttl falls
// back to seven days.
func NewCachedEmbedder(inner domain.Embedder, cacheStore domain.Cache, ttl time.Duration) *CachedEmbedder {
	if ttl <= 0 {
		ttl = defaultEmbeddingTTL
	}
	return &CachedEmbedder{inner: inner, cache: cacheStore, ttl: ttl}
}

// EmbedDocuments delegates directly to the wrapped embedder.
func (s *CachedEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return s.inner.EmbedDocuments(ctx, texts)
}

// EmbedQuery returns a cached vector when available, otherwise embeds
// the text and caches the result.
func (s *CachedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	cacheKey := cache.GenerateCacheKey("embedding", s.inner.Descriptor(), hashString(text))

	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		var vector []float32
		decoder := gob.NewDecoder(bytes.NewReader([]byte(cached)))
		if decodeErr := decoder.Decode(&vector); decodeErr == nil {
			return vector, nil
		}
		logger.Get().Warn("Failed to decode cached embedding, regenerating",
			zap.String("cache_key", cacheKey))
	} else if err != domain.ErrCacheMiss {
		logger.Get().Warn("Embedding cache read failed", zap.Error(err), zap.String("cache_key", cacheKey))
	}

	result, err, _ := s.sfGroup.Do(cacheKey, func() (interface{}, error) {
		vector, fetchErr := s.inner.EmbedQuery(ctx, text)
		if fetchErr != nil {
			return nil, fetchErr
		}

		var buffer bytes.Buffer
		if encodeErr := gob.NewEncoder(&buffer).Encode(vector); encodeErr != nil {
			// Return the vector even if caching fails.
			return vector, nil
		}
		if setErr := s.cache.Set(ctx, cacheKey, buffer.String(), s.ttl); setErr != nil {
			logger.Get().Warn("Failed to cache embedding", zap.Error(setErr), zap.String("cache_key", cacheKey))
		}
		return vector, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]float32), nil
}

// Descriptor reports the wrapped embedder's descriptor so archived
// stores record the real backend, not the cache layer.
func (s *CachedEmbedder) Descriptor() string {
	return s.inner.Descriptor()
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

var _ domain.Embedder = (*CachedEmbedder)(nil)
