package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ragtutor/internal/adapter/blobstore"
	"ragtutor/internal/config"
	"ragtutor/internal/domain"
	"ragtutor/internal/knowledge"
	"ragtutor/internal/session"
)

type answerFixture struct {
	svc      *AnswerService
	sessions *session.Manager
	storeID  string
	embedder *MockEmbedder
	chat     *MockCompletionService
	web      *MockWebCompletionService
}

func newAnswerFixture(t *testing.T) *answerFixture {
	t.Helper()

	embedder := new(MockEmbedder)
	embedder.On("EmbedDocuments", mock.Anything, mock.Anything).Return([][]float32{
		{1, 0, 0},
		{0, 1, 0},
	}, nil).Once()

	registry := knowledge.NewRegistry(blobstore.NewMemory())
	store, err := knowledge.Build(context.Background(), []domain.Passage{
		{Text: "Goroutines are lightweight threads.", SourceOrder: 0},
		{Text: "Channels synchronize goroutines.", SourceOrder: 1},
	}, embedder)
	require.NoError(t, err)
	storeID, err := registry.Publish(context.Background(), store)
	require.NoError(t, err)

	chat := new(MockCompletionService)
	web := new(MockWebCompletionService)

	svc := NewAnswerService(registry, embedder, chat, web, config.RetrievalConfig{
		TopK:            2,
		FallbackPhrases: config.DefaultFallbackPhrases,
	})

	return &answerFixture{
		svc:      svc,
		sessions: session.NewManager(),
		storeID:  storeID,
		embedder: embedder,
		chat:     chat,
		web:      web,
	}
}

func (f *answerFixture) expectQueryEmbedding() {
	f.embedder.On("EmbedQuery", mock.Anything, mock.Anything).Return([]float32{1, 0, 0}, nil).Once()
}

func TestAnswerFromStore(t *testing.T) {
	f := newAnswerFixture(t)
	sess := f.sessions.Create()
	f.expectQueryEmbedding()

	f.chat.On("Complete", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "Goroutines are lightweight threads.") &&
			strings.Contains(prompt, "QUESTION: what are goroutines?")
	})).Return("Goroutines are lightweight threads.", nil).Once()

	result, err := f.svc.Answer(context.Background(), sess, f.storeID, "what are goroutines?")
	require.NoError(t, err)

	assert.Equal(t, "Goroutines are lightweight threads.", result.Answer)
	assert.False(t, result.WebFallback)
	assert.Empty(t, result.Warning)
	f.web.AssertNotCalled(t, "CompleteWithSearch", mock.Anything, mock.Anything)

	history := sess.History()
	require.Len(t, history, 2)
	assert.Equal(t, domain.RoleUser, history[0].Role)
	assert.Equal(t, domain.RoleAssistant, history[1].Role)
	assert.Equal(t, result.Answer, history[1].Content)
}

func TestAnswerFallsBackToWebOnInsufficiencyPhrase(t *testing.T) {
	f := newAnswerFixture(t)
	sess := f.sessions.Create()
	f.expectQueryEmbedding()

	f.chat.On("Complete", mock.Anything, mock.Anything).
		Return("I don't have info on quantum entanglement, switching back to Internet search.", nil).Once()
	f.web.On("CompleteWithSearch", mock.Anything, "what is quantum entanglement?").
		Return("Entanglement links particle states.", []domain.Source{{Title: "Wiki", URL: "https://example.org"}}, nil).Once()

	result, err := f.svc.Answer(context.Background(), sess, f.storeID, "what is quantum entanglement?")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Answer, "Information unavailable in file uploaded"))
	assert.Equal(t, "Information unavailable in file uploaded\nInternet Search result:\nEntanglement links particle states.", result.Answer)
	assert.True(t, result.WebFallback)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "https://example.org", result.Sources[0].URL)
}

func TestAnswerFallbackMatchingIsCaseInsensitive(t *testing.T) {
	f := newAnswerFixture(t)
	sess := f.sessions.Create()
	f.expectQueryEmbedding()

	f.chat.On("Complete", mock.Anything, mock.Anything).
		Return("That topic is NOT PRESENT IN THE DOCUMENT you uploaded.", nil).Once()
	f.web.On("CompleteWithSearch", mock.Anything, mock.Anything).
		Return("web answer", nil, nil).Once()

	result, err := f.svc.Answer(context.Background(), sess, f.storeID, "tell me about X")
	require.NoError(t, err)
	assert.True(t, result.WebFallback)
}

func TestAnswerFallbackMatchesMixedCaseConfiguredPhrase(t *testing.T) {
	svc := NewAnswerService(nil, nil, nil, nil, config.RetrievalConfig{
		FallbackPhrases: []string{"I Don't Have Info"},
	})

	assert.True(t, svc.needsWebFallback("i don't have info on X, switching back to Internet search."))
	assert.True(t, svc.needsWebFallback("I DON'T HAVE INFO on that topic."))
	assert.False(t, svc.needsWebFallback("Goroutines are lightweight threads."))
}

func TestAnswerWithoutFallbackPhraseSkipsWeb(t *testing.T) {
	f := newAnswerFixture(t)
	sess := f.sessions.Create()
	f.expectQueryEmbedding()

	f.chat.On("Complete", mock.Anything, mock.Anything).
		Return("Channels synchronize goroutines.", nil).Once()

	result, err := f.svc.Answer(context.Background(), sess, f.storeID, "what do channels do?")
	require.NoError(t, err)
	assert.False(t, result.WebFallback)
	f.web.AssertNotCalled(t, "CompleteWithSearch", mock.Anything, mock.Anything)
}

func TestAnswerDegradesOnRateLimit(t *testing.T) {
	f := newAnswerFixture(t)
	sess := f.sessions.Create()
	f.expectQueryEmbedding()

	f.chat.On("Complete", mock.Anything, mock.Anything).
		Return("", domain.ErrRateLimited).Once()

	result, err := f.svc.Answer(context.Background(), sess, f.storeID, "anything")
	require.NoError(t, err)
	assert.Empty(t, result.Answer)
	assert.Equal(t, warnQuotaExceeded, result.Warning)

	// Session survives and keeps accepting turns.
	assert.Len(t, sess.History(), 2)
}

func TestAnswerDegradesOnCompletionFailure(t *testing.T) {
	f := newAnswerFixture(t)
	sess := f.sessions.Create()
	f.expectQueryEmbedding()

	f.chat.On("Complete", mock.Anything, mock.Anything).
		Return("", domain.NewCompletionError(assert.AnError)).Once()

	result, err := f.svc.Answer(context.Background(), sess, f.storeID, "anything")
	require.NoError(t, err)
	assert.Empty(t, result.Answer)
	assert.Equal(t, warnCompletionFailed, result.Warning)
}

func TestAnswerWithoutStoreGoesStraightToWeb(t *testing.T) {
	f := newAnswerFixture(t)
	sess := f.sessions.Create()

	f.web.On("CompleteWithSearch", mock.Anything, "hello").
		Return("Hi there!", nil, nil).Once()

	result, err := f.svc.AnswerWithoutStore(context.Background(), sess, "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi there!", result.Answer)
	assert.True(t, result.WebFallback)
	f.chat.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestAnswerUnknownStoreIsNotFound(t *testing.T) {
	f := newAnswerFixture(t)
	sess := f.sessions.Create()

	_, err := f.svc.Answer(context.Background(), sess, "0e4fa1f2-0000-4000-8000-000000000000", "question")
	assert.True(t, domain.IsCode(err, domain.ErrNotFound))
}

func TestAnswerRejectsEmptyQuestion(t *testing.T) {
	f := newAnswerFixture(t)
	sess := f.sessions.Create()

	_, err := f.svc.Answer(context.Background(), sess, f.storeID, "   ")
	assert.True(t, domain.IsCode(err, domain.ErrInvalidInput))
}
