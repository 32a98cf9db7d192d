package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ragtutor/internal/domain"
	"ragtutor/internal/logger"
	"ragtutor/internal/session"
)

// QuizService drives the quiz state machine for a session: batch
// generation, per-question checking and cumulative scoring.
type QuizService struct {
	generator domain.QuizGenerationService
}

func NewQuizService(generator domain.QuizGenerationService) *QuizService {
	return &QuizService{generator: generator}
}

// QuizBatchResult is an installed batch plus the cumulative score after
// the transition and an optional short-batch warning.
type QuizBatchResult struct {
	Questions       []domain.QuizQuestion
	HistoricalScore int
	HistoricalTotal int
	Warning         string
}

// CheckResult reports one checked answer.
type CheckResult struct {
	Correct       bool
	CorrectAnswer string
	Reason        string
}

// StartNewQuiz discards all quiz state for the session and generates
// the first batch from the active document's text.
func (s *QuizService) StartNewQuiz(ctx context.Context, sess *session.Session) (*QuizBatchResult, error) {
	text := sess.DocumentText()
	if text == "" {
		return nil, domain.NewInvalidInputError("no document ingested for this session")
	}

	var result *QuizBatchResult
	err := sess.WithQuiz(func(q *domain.QuizSession) error {
		q.Reset()
		batch, warning, err := s.generateBatch(ctx, text, q.Asked)
		if err != nil {
			return err
		}
		q.InstallBatch(batch)
		result = &QuizBatchResult{
			Questions:       batch,
			HistoricalScore: q.HistoricalScore,
			HistoricalTotal: q.HistoricalTotal,
			Warning:         warning,
		}
		return nil
	})
	return result, err
}

// CheckAnswer records the user's choice for one question of the active
// batch and reports correctness. Scores do not move until the batch is
// advanced.
func (s *QuizService) CheckAnswer(sess *session.Session, index int, choice string) (*CheckResult, error) {
	var result *CheckResult
	err := sess.WithQuiz(func(q *domain.QuizSession) error {
		if !q.Active() {
			return domain.NewInvalidInputError("no active quiz batch")
		}
		correct, question, err := q.Check(index, choice)
		if err != nil {
			return err
		}
		result = &CheckResult{
			Correct:       correct,
			CorrectAnswer: question.Answer,
			Reason:        question.Reason,
		}
		return nil
	})
	return result, err
}

// AdvanceBatch generates the next batch, folds the current batch's
// checked-only score into the cumulative counters and installs the new
// questions. Generation runs first: if it fails, scores, the current
// batch and checked state are all left untouched.
func (s *QuizService) AdvanceBatch(ctx context.Context, sess *session.Session) (*QuizBatchResult, error) {
	text := sess.DocumentText()
	if text == "" {
		return nil, domain.NewInvalidInputError("no document ingested for this session")
	}

	var result *QuizBatchResult
	err := sess.WithQuiz(func(q *domain.QuizSession) error {
		if !q.Active() {
			return domain.NewInvalidInputError("no active quiz batch to advance from")
		}

		batch, warning, err := s.generateBatch(ctx, text, q.Asked)
		if err != nil {
			return err
		}

		q.FoldBatch()
		q.InstallBatch(batch)
		result = &QuizBatchResult{
			Questions:       batch,
			HistoricalScore: q.HistoricalScore,
			HistoricalTotal: q.HistoricalTotal,
			Warning:         warning,
		}
		return nil
	})
	return result, err
}

// Score returns the cumulative counters, including the active batch's
// checked questions so far.
func (s *QuizService) Score(sess *session.Session) (score int, total int) {
	_ = sess.WithQuiz(func(q *domain.QuizSession) error {
		correct, checked := q.BatchScore()
		score = q.HistoricalScore + correct
		total = q.HistoricalTotal + checked
		return nil
	})
	return score, total
}

// generateBatch asks the generator for a batch, avoiding every question
// already asked. Oversized batches are truncated to the standard size;
// undersized ones are kept and reported through the warning.
func (s *QuizService) generateBatch(ctx context.Context, text string, asked []string) ([]domain.QuizQuestion, string, error) {
	batch, err := s.generator.GenerateQuizBatch(ctx, text, asked)
	if err != nil {
		return nil, "", err
	}
	if len(batch) == 0 {
		return nil, "", domain.NewQuizParseError(fmt.Errorf("generator returned no usable questions"))
	}

	warning := ""
	if len(batch) > domain.QuizBatchSize {
		logger.Get().Warn("Generator returned oversized quiz batch, truncating",
			zap.Int("got", len(batch)),
		)
		batch = batch[:domain.QuizBatchSize]
	} else if len(batch) < domain.QuizBatchSize {
		logger.Get().Warn("Generator returned short quiz batch",
			zap.Int("got", len(batch)),
		)
		warning = fmt.Sprintf("only %d of %d questions could be generated", len(batch), domain.QuizBatchSize)
	}
	return batch, warning, nil
}
