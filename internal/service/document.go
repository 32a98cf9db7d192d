package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"ragtutor/internal/chunker"
	"ragtutor/internal/domain"
	"ragtutor/internal/knowledge"
	"ragtutor/internal/logger"
	"ragtutor/internal/session"
)

// DocumentService runs the upload pipeline: extract text, chunk it,
// embed it into a knowledge store and publish the store remotely.
type DocumentService struct {
	extractor domain.TextExtractor
	chunker   *chunker.Chunker
	embedder  domain.Embedder
	registry  *knowledge.Registry
}

func NewDocumentService(
	extractor domain.TextExtractor,
	chunker *chunker.Chunker,
	embedder domain.Embedder,
	registry *knowledge.Registry,
) *DocumentService {
	return &DocumentService{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		registry:  registry,
	}
}

// Ingest converts an uploaded document into a published knowledge store
// and attaches it to the session, which also resets any quiz built on
// the previous document. Any stage failure aborts the pipeline; no
// store is published and the session keeps its previous state.
func (s *DocumentService) Ingest(ctx context.Context, sess *session.Session, filename, declaredType string, data []byte) (string, error) {
	text, err := s.extractor.Extract(filename, declaredType, data)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", domain.NewExtractionError("document contains no extractable text", nil)
	}

	passages, err := s.chunker.Split(text)
	if err != nil {
		return "", err
	}
	if len(passages) == 0 {
		return "", domain.NewExtractionError("document produced no passages", nil)
	}

	store, err := knowledge.Build(ctx, passages, s.embedder)
	if err != nil {
		return "", err
	}

	storeID, err := s.registry.Publish(ctx, store)
	if err != nil {
		return "", err
	}

	sess.AttachStore(storeID, text)

	logger.Get().Info("Document ingested",
		zap.String("session_id", sess.ID),
		zap.String("store_id", storeID),
		zap.String("filename", filename),
		zap.Int("passages", len(passages)),
	)
	return storeID, nil
}

// Attach resolves an existing published store by identifier and makes
// it the session's active store. The extracted text is reconstructed
// from the stored passages so quiz and summary generation keep working
// for re-attached documents.
func (s *DocumentService) Attach(ctx context.Context, sess *session.Session, storeID string) error {
	store, err := s.registry.Resolve(ctx, storeID)
	if err != nil {
		return err
	}

	passages := store.Passages()
	parts := make([]string, len(passages))
	for i, p := range passages {
		parts[i] = p.Text
	}
	sess.AttachStore(storeID, strings.Join(parts, "\n"))
	return nil
}
