package quizgen

import (
	"fmt"
	"strings"
	"testing"

	"ragtutor/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questionJSON(i int, answer string) string {
	return fmt.Sprintf(`{
		"question": "Question %d?",
		"options": {"A": "a", "B": "b", "C": "c", "D": "d"},
		"answer": %q,
		"reason": "explanation",
		"type": "MCQ",
		"difficulty": "Medium"
	}`, i, answer)
}

func batchJSON(n int) string {
	entries := make([]string, n)
	for i := 0; i < n; i++ {
		entries[i] = questionJSON(i+1, "B")
	}
	return fmt.Sprintf(`{"questions": [%s]}`, strings.Join(entries, ","))
}

func TestParseQuizResponse(t *testing.T) {
	questions, err := ParseQuizResponse(batchJSON(5))
	require.NoError(t, err)
	require.Len(t, questions, 5)

	assert.Equal(t, "Question 1?", questions[0].Question)
	assert.Equal(t, "B", questions[0].Answer)
	assert.Equal(t, domain.QuestionMCQ, questions[0].Type)
	assert.Equal(t, "Medium", questions[0].Difficulty)
	assert.Len(t, questions[0].Options, 4)
}

func TestParseQuizResponseStripsCodeFences(t *testing.T) {
	raw := "```json\n" + batchJSON(5) + "\n```"
	questions, err := ParseQuizResponse(raw)
	require.NoError(t, err)
	assert.Len(t, questions, 5)
}

func TestParseQuizResponseMalformedJSON(t *testing.T) {
	_, err := ParseQuizResponse("here are your questions: 1) ...")
	assert.True(t, domain.IsCode(err, domain.ErrQuizParse))
}

func TestParseQuizResponseNoQuestions(t *testing.T) {
	_, err := ParseQuizResponse(`{"questions": []}`)
	assert.True(t, domain.IsCode(err, domain.ErrQuizParse))
}

func TestParseQuizResponseSkipsInvalidEntries(t *testing.T) {
	raw := fmt.Sprintf(`{"questions": [%s, {"question": "", "options": {}, "answer": "A"}, %s]}`,
		questionJSON(1, "A"), questionJSON(2, "C"))

	questions, err := ParseQuizResponse(raw)
	require.NoError(t, err)
	assert.Len(t, questions, 2)
}

func TestParseQuizResponseAllInvalid(t *testing.T) {
	_, err := ParseQuizResponse(`{"questions": [{"question": "", "options": {}, "answer": "Z"}]}`)
	assert.True(t, domain.IsCode(err, domain.ErrQuizParse))
}

// Batches shorter or longer than the target size parse cleanly; the
// service layer decides what to do with them.
func TestParseQuizResponseToleratesOffSizeBatches(t *testing.T) {
	short, err := ParseQuizResponse(batchJSON(3))
	require.NoError(t, err)
	assert.Len(t, short, 3)

	long, err := ParseQuizResponse(batchJSON(7))
	require.NoError(t, err)
	assert.Len(t, long, 7)
}
