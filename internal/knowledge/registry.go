package knowledge

import (
	"context"
	"errors"
	"fmt"

	"ragtutor/internal/domain"
	"ragtutor/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Registry persists serialized stores in a blob store and resolves
// opaque identifiers back to materialized stores. Identifiers are
// UUIDs; the blob key is derived deterministically from the identifier
// and is the only path convention used.
type Registry struct {
	blobs domain.BlobStore
}

func NewRegistry(blobs domain.BlobStore) *Registry {
	return &Registry{blobs: blobs}
}

// StoreKey derives the blob key for a store identifier.
func StoreKey(id string) string {
	return fmt.Sprintf("stores/%s.zip", id)
}

// Publish serializes the store, assigns it a fresh identifier and
// uploads the archive. No identifier is returned on failure, so a
// partial publish is never observable.
func (r *Registry) Publish(ctx context.Context, store *Store) (string, error) {
	data, err := Serialize(store)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	if err := r.blobs.Put(ctx, StoreKey(id), data); err != nil {
		return "", domain.NewPersistenceError("failed to upload serialized store", err)
	}

	logger.Get().Info("Published knowledge store",
		zap.String("store_id", id),
		zap.Int("passages", store.Len()),
		zap.Int("archive_bytes", len(data)),
	)
	return id, nil
}

// Resolve downloads and deserializes the store named by id.
//
// An unknown identifier yields a NOT_FOUND error; callers must treat it
// as an invalid identifier, not a transient fault, and must not retry.
func (r *Registry) Resolve(ctx context.Context, id string) (*Store, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NewNotFoundError("invalid store identifier: " + id)
	}

	data, err := r.blobs.Get(ctx, StoreKey(id))
	if err != nil {
		if errors.Is(err, domain.ErrBlobNotFound) || domain.IsCode(err, domain.ErrNotFound) {
			return nil, domain.NewNotFoundError("no knowledge store found for identifier " + id)
		}
		return nil, domain.NewPersistenceError("failed to download store "+id, err)
	}

	store, err := Deserialize(data)
	if err != nil {
		return nil, err
	}

	logger.Get().Debug("Resolved knowledge store",
		zap.String("store_id", id),
		zap.Int("passages", store.Len()),
	)
	return store, nil
}
