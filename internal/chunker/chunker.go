package chunker

import (
	"strings"

	"ragtutor/internal/domain"

	"github.com/tmc/langchaingo/textsplitter"
)

// Chunker splits extracted document text into ordered passages.
//
// Splits prefer structural boundaries (paragraphs, then sentences and
// words) and fall back to hard character cuts when a unit exceeds the
// chunk size. Identical input and parameters always yield an identical
// passage sequence.
type Chunker struct {
	splitter textsplitter.RecursiveCharacter
}

// New returns a Chunker with the given size rules. Non-positive size
// falls back to 500 characters; negative overlap falls back to 0.
func New(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	return &Chunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
	}
}

// Split chunks text into passages with source ordering preserved.
// Empty or whitespace-only text yields an empty sequence, not an error.
func (c *Chunker) Split(text string) ([]domain.Passage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	chunks, err := c.splitter.SplitText(text)
	if err != nil {
		return nil, domain.NewInternalError("failed to split text", err)
	}

	passages := make([]domain.Passage, 0, len(chunks))
	for _, chunk := range chunks {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		passages = append(passages, domain.Passage{
			Text:        chunk,
			SourceOrder: len(passages),
		})
	}
	return passages, nil
}
