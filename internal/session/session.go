// Package session keeps per-user conversational state in memory: chat
// history, the active knowledge store and the quiz state machine.
package session

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"ragtutor/internal/domain"
)

// Session is the mutable state of one user session. All access goes
// through the methods, which serialize on the internal mutex.
type Session struct {
	ID string

	mu            sync.Mutex
	history       []domain.ConversationTurn
	quiz          *domain.QuizSession
	activeStoreID string
	documentText  string
}

// ActiveStoreID returns the identifier of the knowledge store currently
// attached to the session, or "" when no document has been ingested.
func (s *Session) ActiveStoreID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeStoreID
}

// DocumentText returns the full extracted text of the active document.
func (s *Session) DocumentText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documentText
}

// AttachStore points the session at a new knowledge store and retains
// the extracted document text for quiz and summary generation. Any quiz
// built on the previous document is discarded.
func (s *Session) AttachStore(storeID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeStoreID = storeID
	s.documentText = text
	s.quiz.Reset()
}

// AppendTurn records one message in the conversation history.
func (s *Session) AppendTurn(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, domain.ConversationTurn{Role: role, Content: content})
}

// History returns a copy of the conversation so far.
func (s *Session) History() []domain.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ConversationTurn, len(s.history))
	copy(out, s.history)
	return out
}

// ClearHistory drops the conversation history, leaving quiz and store
// state intact.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

// WithQuiz runs fn with exclusive access to the session's quiz state.
func (s *Session) WithQuiz(fn func(q *domain.QuizSession) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.quiz)
}

// Manager owns the live sessions, keyed by ULID.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Create allocates a new session with a fresh identifier.
func (m *Manager) Create() *Session {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
	s := &Session{
		ID:   id,
		quiz: domain.NewQuizSession(),
	}
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s
}

// Get looks up a session by identifier.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.NewNotFoundError("session " + id + " not found")
	}
	return s, nil
}

// Delete removes a session. Deleting an unknown identifier is a no-op.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
