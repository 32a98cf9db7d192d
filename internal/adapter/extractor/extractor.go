// Package extractor converts uploaded document blobs into plain text.
package extractor

import (
	"archive/zip"
	"bytes"
	"io"
	"regexp"
	"strings"

	"ragtutor/internal/domain"

	"github.com/ledongthuc/pdf"
)

// Declared upload types accepted by Extract.
const (
	TypePDF  = "pdf"
	TypeText = "text"
	TypeDOCX = "docx"
)

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract converts the uploaded blob into a single text string according
// to its declared type. Unreadable or unsupported documents return an
// extraction error; no partial text escapes.
func (e *Extractor) Extract(filename, declaredType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", domain.NewExtractionError("uploaded file "+filename+" is empty", nil)
	}

	switch declaredType {
	case TypeText:
		return e.extractText(data)
	case TypePDF:
		return e.extractPDF(data)
	case TypeDOCX:
		return e.extractDOCX(data)
	default:
		return "", domain.NewExtractionError("unsupported file type: "+declaredType, nil)
	}
}

func (e *Extractor) extractText(data []byte) (string, error) {
	text := normalizeExtractedText(string(data))
	if text == "" {
		return "", domain.NewExtractionError("text file is empty", nil)
	}
	return text, nil
}

func (e *Extractor) extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.NewExtractionError("failed to open pdf", err)
	}

	var b strings.Builder
	totalPage := reader.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	text := normalizeExtractedText(b.String())
	if text == "" {
		return "", domain.NewExtractionError("no extractable text found in pdf", nil)
	}
	return text, nil
}

func (e *Extractor) extractDOCX(data []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.NewExtractionError("failed to open docx", err)
	}

	var documentXML []byte
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return "", domain.NewExtractionError("failed to read docx document.xml", err)
			}
			documentXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return "", domain.NewExtractionError("failed to read docx document.xml", err)
			}
			break
		}
	}

	if len(documentXML) == 0 {
		return "", domain.NewExtractionError("docx document.xml not found", nil)
	}

	text := normalizeExtractedText(stripDOCXML(documentXML))
	if text == "" {
		return "", domain.NewExtractionError("no extractable text found in docx", nil)
	}
	return text, nil
}

var (
	xmlParagraphEnd = regexp.MustCompile(`</w:p>`)
	xmlTagPattern   = regexp.MustCompile(`<[^>]+>`)
)

func stripDOCXML(documentXML []byte) string {
	withBreaks := xmlParagraphEnd.ReplaceAll(documentXML, []byte("\n"))
	return string(xmlTagPattern.ReplaceAll(withBreaks, nil))
}

func normalizeExtractedText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

var _ domain.TextExtractor = (*Extractor)(nil)
