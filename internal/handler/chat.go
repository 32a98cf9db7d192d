package handler

import (
	"github.com/gofiber/fiber/v2"

	"ragtutor/internal/domain"
	"ragtutor/internal/dto"
	"ragtutor/internal/service"
	"ragtutor/internal/session"
)

// ChatHandler answers questions against the session's active document.
type ChatHandler struct {
	sessions *session.Manager
	answers  *service.AnswerService
}

func NewChatHandler(sessions *session.Manager, answers *service.AnswerService) *ChatHandler {
	return &ChatHandler{sessions: sessions, answers: answers}
}

// Ask handles POST /api/sessions/:id/chat. With an active store the
// question goes through retrieval; without one it goes straight to
// web-grounded search.
func (h *ChatHandler) Ask(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return err
	}

	var req dto.AskRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	result, err := h.answers.Answer(c.Context(), sess, sess.ActiveStoreID(), req.Question)
	if err != nil {
		return err
	}

	resp := dto.AskResponse{
		Answer:      result.Answer,
		WebFallback: result.WebFallback,
		Warning:     result.Warning,
	}
	for _, src := range result.Sources {
		resp.Sources = append(resp.Sources, dto.SourceResponse{Title: src.Title, URL: src.URL})
	}
	return c.JSON(resp)
}
