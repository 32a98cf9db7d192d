// Package service implements the application use cases on top of the
// domain ports: document ingestion, retrieval-augmented answering with
// web fallback, quiz progression and study extras.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ragtutor/internal/config"
	"ragtutor/internal/domain"
	"ragtutor/internal/knowledge"
	"ragtutor/internal/logger"
	"ragtutor/internal/session"
)

// answerUnavailableMarker prefixes every answer produced through the
// web fallback path. Clients rely on the exact text.
const answerUnavailableMarker = "Information unavailable in file uploaded\nInternet Search result:\n"

// User-facing warning texts surfaced alongside degraded answers.
const (
	warnQuotaExceeded    = "You exceeded your current quota, please try again later or use a new API key"
	warnCompletionFailed = "The answer service is temporarily unavailable, please try again"
)

const answerPromptTemplate = `Given the following context and a question, generate an answer based on this context.
NO PREAMBLE, do not repeat the question in the answer.
In the answer try to provide as much text as possible from the source document context without making many changes.
If the answer is not found in the context but is related to the document topic, kindly state "I don't have info on (use appropriate words, end with full stop), switching back to Internet search". Don't try to make up an answer.
If the question is completely unrelated and makes no sense with the document context, tell the user "I can only assist you with the information of file uploaded".
If the intent of the question is not related to the topic, like greetings or short messages (hi, bye, thanks, okay), then reply normally as a chatbot.

CONTEXT: %s
QUESTION: %s`

// AnswerResult is the outcome of one question: the answer text, web
// attributions when the fallback ran, and a warning when the answer was
// degraded rather than failed.
type AnswerResult struct {
	Answer      string
	Sources     []domain.Source
	WebFallback bool
	Warning     string
}

// AnswerService answers questions against a session's knowledge store,
// falling back to web-grounded search when the store cannot answer.
type AnswerService struct {
	registry        *knowledge.Registry
	embedder        domain.Embedder
	chat            domain.CompletionService
	web             domain.WebCompletionService
	topK            int
	fallbackPhrases []string
}

func NewAnswerService(
	registry *knowledge.Registry,
	embedder domain.Embedder,
	chat domain.CompletionService,
	web domain.WebCompletionService,
	retrieval config.RetrievalConfig,
) *AnswerService {
	configured := retrieval.FallbackPhrases
	if len(configured) == 0 {
		configured = config.DefaultFallbackPhrases
	}
	// Matching is case-insensitive on both sides; normalize the
	// configured phrases once.
	phrases := make([]string, len(configured))
	for i, phrase := range configured {
		phrases[i] = strings.ToLower(phrase)
	}
	return &AnswerService{
		registry:        registry,
		embedder:        embedder,
		chat:            chat,
		web:             web,
		topK:            retrieval.TopK,
		fallbackPhrases: phrases,
	}
}

// needsWebFallback reports whether the answer contains any configured
// insufficiency phrase. Matching is case-insensitive substring search.
func (s *AnswerService) needsWebFallback(answer string) bool {
	lower := strings.ToLower(answer)
	for _, phrase := range s.fallbackPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Answer resolves the store named by storeID, retrieves context for the
// question and asks the chat model. An answer that signals insufficient
// context is replaced by a web-grounded one, prefixed with the
// unavailable marker. Completion failures degrade to an empty answer
// with a warning; they never fail the request or poison the session.
func (s *AnswerService) Answer(ctx context.Context, sess *session.Session, storeID, question string) (*AnswerResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.NewInvalidInputError("question must not be empty")
	}

	sess.AppendTurn(domain.RoleUser, question)

	if storeID == "" {
		result := s.answerFromWeb(ctx, question)
		sess.AppendTurn(domain.RoleAssistant, result.Answer)
		return result, nil
	}

	store, err := s.registry.Resolve(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if desc := store.EmbedderDescriptor(); desc != s.embedder.Descriptor() {
		logger.Get().Warn("Store was built with a different embedder, retrieval quality may suffer",
			zap.String("store_embedder", desc),
			zap.String("active_embedder", s.embedder.Descriptor()),
		)
	}

	results, err := store.Query(ctx, question, s.embedder, s.topK)
	if err != nil {
		return nil, err
	}

	contextParts := make([]string, 0, len(results))
	for _, r := range results {
		contextParts = append(contextParts, r.Passage.Text)
	}
	prompt := fmt.Sprintf(answerPromptTemplate, strings.Join(contextParts, "\n\n"), question)

	answer, err := s.chat.Complete(ctx, prompt)
	if err != nil {
		result := degradedResult(err, "chat completion failed")
		sess.AppendTurn(domain.RoleAssistant, result.Answer)
		return result, nil
	}

	result := &AnswerResult{Answer: answer}
	if s.needsWebFallback(answer) {
		logger.Get().Info("Answer signaled insufficient context, falling back to web search",
			zap.String("store_id", storeID),
		)
		web := s.answerFromWeb(ctx, question)
		result = &AnswerResult{
			Answer:      answerUnavailableMarker + web.Answer,
			Sources:     web.Sources,
			WebFallback: true,
			Warning:     web.Warning,
		}
	}

	sess.AppendTurn(domain.RoleAssistant, result.Answer)
	return result, nil
}

// AnswerWithoutStore answers a question through web-grounded search
// only, used when the session has no active document.
func (s *AnswerService) AnswerWithoutStore(ctx context.Context, sess *session.Session, question string) (*AnswerResult, error) {
	return s.Answer(ctx, sess, "", question)
}

func (s *AnswerService) answerFromWeb(ctx context.Context, question string) *AnswerResult {
	text, sources, err := s.web.CompleteWithSearch(ctx, question)
	if err != nil {
		result := degradedResult(err, "web-grounded completion failed")
		result.WebFallback = true
		return result
	}
	return &AnswerResult{Answer: text, Sources: sources, WebFallback: true}
}

// degradedResult maps a completion failure to an empty answer with the
// matching warning. Rate-limit failures get their own message.
func degradedResult(err error, what string) *AnswerResult {
	if errors.Is(err, domain.ErrRateLimited) {
		logger.Get().Warn(what+" due to rate limiting", zap.Error(err))
		return &AnswerResult{Warning: warnQuotaExceeded}
	}
	logger.Get().Warn(what, zap.Error(err))
	return &AnswerResult{Warning: warnCompletionFailed}
}
