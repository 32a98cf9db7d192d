package handler

import (
	"github.com/gofiber/fiber/v2"

	"ragtutor/internal/domain"
	"ragtutor/internal/dto"
	"ragtutor/internal/service"
	"ragtutor/internal/session"
)

// StudyHandler serves the study extras: summaries, learning paths and
// docs export.
type StudyHandler struct {
	sessions *session.Manager
	study    *service.StudyService
}

func NewStudyHandler(sessions *session.Manager, study *service.StudyService) *StudyHandler {
	return &StudyHandler{sessions: sessions, study: study}
}

// Summarize handles POST /api/sessions/:id/summary, summarizing the
// session's active document.
func (h *StudyHandler) Summarize(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return err
	}

	text := sess.DocumentText()
	if text == "" {
		return domain.NewInvalidInputError("no document ingested for this session")
	}

	summary, err := h.study.Summarize(c.Context(), text)
	if err != nil {
		return err
	}
	return c.JSON(dto.SummaryResponse{Summary: summary})
}

// LearningPath handles POST /api/learning-path
func (h *StudyHandler) LearningPath(c *fiber.Ctx) error {
	var req dto.LearningPathRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	path, err := h.study.GenerateLearningPath(c.Context(), service.LearningPathProfile{
		Subject:        req.Subject,
		Topic:          req.Topic,
		KnowledgeLevel: req.KnowledgeLevel,
		Duration:       req.Duration,
		HoursPerWeek:   req.HoursPerWeek,
	})
	if err != nil {
		return err
	}

	resp := dto.LearningPathResponse{Schedule: path.Schedule}
	for _, src := range path.Sources {
		resp.Sources = append(resp.Sources, dto.SourceResponse{Title: src.Title, URL: src.URL})
	}
	return c.JSON(resp)
}

// ExportDocs handles POST /api/sessions/:id/export
func (h *StudyHandler) ExportDocs(c *fiber.Ctx) error {
	if _, err := h.sessions.Get(c.Params("id")); err != nil {
		return err
	}

	var req dto.DocsExportRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if req.Title == "" {
		return domain.NewInvalidInputError("title is required")
	}

	results := make([]service.QuizResultExport, len(req.QuizResults))
	for i, r := range req.QuizResults {
		results[i] = service.QuizResultExport{Question: r.Question, Chosen: r.Chosen, Correct: r.Correct}
	}

	saved := h.study.ExportToDocs(c.Context(), req.Title, req.Summary, results)
	return c.JSON(dto.DocsExportResponse{Saved: saved})
}
