package knowledge

import (
	"context"
	"testing"

	"ragtutor/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

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
	return "mock/test-embedder"
}

func testPassages(texts ...string) []domain.Passage {
	passages := make([]domain.Passage, len(texts))
	for i, t := range texts {
		passages[i] = domain.Passage{Text: t, SourceOrder: i}
	}
	return passages
}

// --- Build ---

func TestBuildAssemblesParallelVectors(t *testing.T) {
	embedder := new(MockEmbedder)
	passages := testPassages("alpha", "beta", "gamma")
	embedder.On("EmbedDocuments", mock.Anything, []string{"alpha", "beta", "gamma"}).
		Return([][]float32{{1, 0}, {0, 1}, {1, 1}}, nil)

	store, err := Build(context.Background(), passages, embedder)
	require.NoError(t, err)

	assert.Equal(t, 3, store.Len())
	assert.Equal(t, 2, store.Dimension())
	assert.Equal(t, "mock/test-embedder", store.EmbedderDescriptor())
	assert.Equal(t, passages, store.Passages())
	embedder.AssertExpectations(t)
}

func TestBuildFailsOnEmbeddingError(t *testing.T) {
	embedder := new(MockEmbedder)
	embedder.On("EmbedDocuments", mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	store, err := Build(context.Background(), testPassages("alpha"), embedder)
	assert.Nil(t, store)
	assert.True(t, domain.IsCode(err, domain.ErrEmbedding))
}

func TestBuildFailsOnInconsistentDimension(t *testing.T) {
	embedder := new(MockEmbedder)
	embedder.On("EmbedDocuments", mock.Anything, mock.Anything).
		Return([][]float32{{1, 0}, {0, 1, 1}}, nil)

	store, err := Build(context.Background(), testPassages("alpha", "beta"), embedder)
	assert.Nil(t, store)
	assert.True(t, domain.IsCode(err, domain.ErrEmbedding))
}

func TestBuildRejectsEmptyInput(t *testing.T) {
	embedder := new(MockEmbedder)
	store, err := Build(context.Background(), nil, embedder)
	assert.Nil(t, store)
	assert.True(t, domain.IsCode(err, domain.ErrInvalidInput))
}

// --- Query ---

func queryStore(t *testing.T) (*Store, *MockEmbedder) {
	t.Helper()
	embedder := new(MockEmbedder)
	embedder.On("EmbedDocuments", mock.Anything, mock.Anything).
		Return([][]float32{{1, 0}, {0, 1}, {0.7, 0.7}}, nil).Once()
	store, err := Build(context.Background(), testPassages("east", "north", "northeast"), embedder)
	require.NoError(t, err)
	return store, embedder
}

func TestQueryOrdersByDescendingSimilarity(t *testing.T) {
	store, embedder := queryStore(t)
	embedder.On("EmbedQuery", mock.Anything, "which way is east").
		Return([]float32{1, 0}, nil)

	results, err := store.Query(context.Background(), "which way is east", embedder, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "east", results[0].Passage.Text)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.GreaterOrEqual(t, results[1].Score, results[2].Score)
}

func TestQueryDefaultsToTopTwo(t *testing.T) {
	store, embedder := queryStore(t)
	embedder.On("EmbedQuery", mock.Anything, mock.Anything).
		Return([]float32{1, 0}, nil)

	results, err := store.Query(context.Background(), "east?", embedder, 0)
	require.NoError(t, err)
	assert.Len(t, results, DefaultTopK)
}

func TestQueryDoesNotEnforceMinScore(t *testing.T) {
	// The configured similarity threshold is advisory metadata only:
	// matches below it must still be returned.
	store, embedder := queryStore(t)
	store.SetMinScore(0.5)
	embedder.On("EmbedQuery", mock.Anything, mock.Anything).
		Return([]float32{0, -1}, nil)

	results, err := store.Query(context.Background(), "south?", embedder, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Less(t, results[2].Score, store.MinScore())
}

func TestQueryRejectsDimensionMismatch(t *testing.T) {
	store, embedder := queryStore(t)
	embedder.On("EmbedQuery", mock.Anything, mock.Anything).
		Return([]float32{1, 0, 0}, nil)

	_, err := store.Query(context.Background(), "east?", embedder, 2)
	assert.True(t, domain.IsCode(err, domain.ErrEmbedding))
}
