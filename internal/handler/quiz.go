package handler

import (
	"github.com/gofiber/fiber/v2"

	"ragtutor/internal/domain"
	"ragtutor/internal/dto"
	"ragtutor/internal/service"
	"ragtutor/internal/session"
)

// QuizHandler drives the quiz endpoints for a session.
type QuizHandler struct {
	sessions *session.Manager
	quizzes  *service.QuizService
}

func NewQuizHandler(sessions *session.Manager, quizzes *service.QuizService) *QuizHandler {
	return &QuizHandler{sessions: sessions, quizzes: quizzes}
}

func batchResponse(result *service.QuizBatchResult) dto.QuizBatchResponse {
	questions := make([]dto.QuizQuestionResponse, len(result.Questions))
	for i, q := range result.Questions {
		questions[i] = dto.QuizQuestionResponse{
			Index:      i,
			Question:   q.Question,
			Options:    q.Options,
			Type:       q.Type,
			Difficulty: q.Difficulty,
		}
	}
	return dto.QuizBatchResponse{
		Questions: questions,
		Score:     result.HistoricalScore,
		Total:     result.HistoricalTotal,
		Warning:   result.Warning,
	}
}

// Start handles POST /api/sessions/:id/quiz, discarding any previous
// quiz run and generating the first batch.
func (h *QuizHandler) Start(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return err
	}

	result, err := h.quizzes.StartNewQuiz(c.Context(), sess)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(batchResponse(result))
}

// Check handles POST /api/sessions/:id/quiz/check
func (h *QuizHandler) Check(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return err
	}

	var req dto.QuizCheckRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	result, err := h.quizzes.CheckAnswer(sess, req.Index, req.Choice)
	if err != nil {
		return err
	}
	return c.JSON(dto.QuizCheckResponse{
		Correct:       result.Correct,
		CorrectAnswer: result.CorrectAnswer,
		Reason:        result.Reason,
	})
}

// Advance handles POST /api/sessions/:id/quiz/next, folding the current
// batch's score and installing the next batch.
func (h *QuizHandler) Advance(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return err
	}

	result, err := h.quizzes.AdvanceBatch(c.Context(), sess)
	if err != nil {
		return err
	}
	return c.JSON(batchResponse(result))
}

// Score handles GET /api/sessions/:id/quiz/score
func (h *QuizHandler) Score(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return err
	}

	score, total := h.quizzes.Score(sess)
	return c.JSON(dto.QuizScoreResponse{Score: score, Total: total})
}
