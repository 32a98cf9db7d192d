package handler

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"ragtutor/internal/adapter/extractor"
	"ragtutor/internal/domain"
	"ragtutor/internal/dto"
	"ragtutor/internal/service"
	"ragtutor/internal/session"
)

// DocumentHandler handles document upload and store attachment.
type DocumentHandler struct {
	sessions  *session.Manager
	documents *service.DocumentService
}

func NewDocumentHandler(sessions *session.Manager, documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{sessions: sessions, documents: documents}
}

// Upload handles POST /api/sessions/:id/documents. The document comes
// as a multipart file with an optional "type" form field; when absent
// the type is inferred from the filename.
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return domain.NewInvalidInputError("a file upload is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return domain.NewInvalidInputError("uploaded file could not be opened")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return domain.NewInvalidInputError("uploaded file could not be read")
	}

	declaredType := c.FormValue("type")
	if declaredType == "" {
		declaredType = inferType(fileHeader.Filename)
	}

	storeID, err := h.documents.Ingest(c.Context(), sess, fileHeader.Filename, declaredType, data)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(dto.UploadResponse{
		StoreID:  storeID,
		Filename: fileHeader.Filename,
	})
}

func inferType(filename string) string {
	switch {
	case strings.HasSuffix(filename, ".pdf"):
		return extractor.TypePDF
	case strings.HasSuffix(filename, ".txt"):
		return extractor.TypeText
	case strings.HasSuffix(filename, ".docx"):
		return extractor.TypeDOCX
	default:
		return ""
	}
}

// Attach handles POST /api/sessions/:id/documents/attach, pointing the
// session at an already published store by its identifier.
func (h *DocumentHandler) Attach(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return err
	}

	var req dto.AttachRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if req.StoreID == "" {
		return domain.NewInvalidInputError("store_id is required")
	}

	if err := h.documents.Attach(c.Context(), sess, req.StoreID); err != nil {
		return err
	}
	return c.JSON(dto.UploadResponse{StoreID: req.StoreID})
}
