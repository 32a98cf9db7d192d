// Package handler wires the HTTP routes to the application services.
package handler

import (
	"github.com/gofiber/fiber/v2"

	"ragtutor/internal/dto"
	"ragtutor/internal/session"
)

// SessionHandler manages session lifecycle and conversation history.
type SessionHandler struct {
	sessions *session.Manager
}

func NewSessionHandler(sessions *session.Manager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Create handles POST /api/sessions
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	sess := h.sessions.Create()
	return c.Status(fiber.StatusCreated).JSON(dto.SessionResponse{SessionID: sess.ID})
}

// GetHistory handles GET /api/sessions/:id/history
func (h *SessionHandler) GetHistory(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return err
	}

	history := sess.History()
	messages := make([]dto.MessageResponse, len(history))
	for i, turn := range history {
		messages[i] = dto.MessageResponse{Role: turn.Role, Content: turn.Content}
	}
	return c.JSON(dto.HistoryResponse{Messages: messages})
}

// ClearHistory handles DELETE /api/sessions/:id/history
func (h *SessionHandler) ClearHistory(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return err
	}
	sess.ClearHistory()
	return c.SendStatus(fiber.StatusNoContent)
}
