package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBatch(n int) []QuizQuestion {
	questions := make([]QuizQuestion, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, QuizQuestion{
			Question: fmt.Sprintf("Question %d?", i+1),
			Options: map[string]string{
				"A": "first", "B": "second", "C": "third", "D": "fourth",
			},
			Answer:     "B",
			Reason:     "because",
			Type:       QuestionMCQ,
			Difficulty: "Easy",
		})
	}
	return questions
}

func TestQuizQuestionValidate(t *testing.T) {
	q := makeBatch(1)[0]
	require.NoError(t, q.Validate())

	missing := q
	missing.Options = map[string]string{"A": "a", "B": "b", "C": "c"}
	assert.Error(t, missing.Validate())

	badAnswer := makeBatch(1)[0]
	badAnswer.Answer = "E"
	assert.Error(t, badAnswer.Validate())

	empty := makeBatch(1)[0]
	empty.Question = ""
	assert.Error(t, empty.Validate())
}

func TestQuizSessionInstallBatchRecordsAsked(t *testing.T) {
	s := NewQuizSession()
	assert.False(t, s.Active())

	s.InstallBatch(makeBatch(5))
	assert.True(t, s.Active())
	assert.Len(t, s.Asked, 5)

	s.InstallBatch(makeBatch(5))
	assert.Len(t, s.Asked, 10)
}

func TestQuizSessionCheckIsPureLookup(t *testing.T) {
	s := NewQuizSession()
	s.InstallBatch(makeBatch(5))

	correct, q, err := s.Check(0, "B")
	require.NoError(t, err)
	assert.True(t, correct)
	assert.Equal(t, "because", q.Reason)

	wrong, _, err := s.Check(1, "A")
	require.NoError(t, err)
	assert.False(t, wrong)

	// No scoring side effect until the batch is folded.
	assert.Equal(t, 0, s.HistoricalScore)
	assert.Equal(t, 0, s.HistoricalTotal)

	_, _, err = s.Check(7, "A")
	assert.Error(t, err)
	_, _, err = s.Check(0, "Z")
	assert.Error(t, err)
}

func TestQuizSessionUncheckedQuestionsExcludedFromScore(t *testing.T) {
	s := NewQuizSession()
	s.InstallBatch(makeBatch(5))

	// Check exactly 3 of 5, answering 2 correctly.
	_, _, err := s.Check(0, "B")
	require.NoError(t, err)
	_, _, err = s.Check(1, "B")
	require.NoError(t, err)
	_, _, err = s.Check(2, "D")
	require.NoError(t, err)

	correct, checked := s.BatchScore()
	assert.Equal(t, 2, correct)
	assert.Equal(t, 3, checked)

	s.FoldBatch()
	assert.Equal(t, 2, s.HistoricalScore)
	assert.Equal(t, 3, s.HistoricalTotal)
	assert.LessOrEqual(t, s.HistoricalScore, s.HistoricalTotal)
}

func TestQuizSessionRecheckOverwritesChoice(t *testing.T) {
	s := NewQuizSession()
	s.InstallBatch(makeBatch(5))

	_, _, err := s.Check(0, "A")
	require.NoError(t, err)
	_, _, err = s.Check(0, "B")
	require.NoError(t, err)

	correct, checked := s.BatchScore()
	assert.Equal(t, 1, correct)
	assert.Equal(t, 1, checked)
}

func TestQuizSessionReset(t *testing.T) {
	s := NewQuizSession()
	s.InstallBatch(makeBatch(5))
	_, _, err := s.Check(0, "B")
	require.NoError(t, err)
	s.FoldBatch()

	s.Reset()
	assert.Equal(t, 0, s.HistoricalScore)
	assert.Equal(t, 0, s.HistoricalTotal)
	assert.Empty(t, s.Asked)
	assert.False(t, s.Active())

	_, ok := s.Checked(0)
	assert.False(t, ok)
}

func TestQuizSessionInstallClearsCheckedState(t *testing.T) {
	s := NewQuizSession()
	s.InstallBatch(makeBatch(5))
	_, _, err := s.Check(0, "B")
	require.NoError(t, err)

	s.InstallBatch(makeBatch(5))
	_, ok := s.Checked(0)
	assert.False(t, ok)
}
