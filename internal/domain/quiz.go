package domain

import "fmt"

// QuizBatchSize is the number of questions requested per batch.
const QuizBatchSize = 5

// Question kinds as emitted by the generator.
const (
	QuestionTrueFalse = "True/False"
	QuestionNumerical = "Numerical"
	QuestionTheory    = "Theory"
	QuestionMCQ       = "MCQ"
)

// OptionLabels are the four recognized choice labels, in display order.
var OptionLabels = []string{"A", "B", "C", "D"}

// QuizQuestion is one generated multiple-choice question.
type QuizQuestion struct {
	Question   string            `json:"question"`
	Options    map[string]string `json:"options"`
	Answer     string            `json:"answer"`
	Reason     string            `json:"reason"`
	Type       string            `json:"type"`
	Difficulty string            `json:"difficulty"`
}

// Validate checks the question has text, four labeled options and a
// correct label that is one of them.
func (q *QuizQuestion) Validate() error {
	if q.Question == "" {
		return NewInvalidInputError("question text is required")
	}
	if len(q.Options) != len(OptionLabels) {
		return NewInvalidInputError(fmt.Sprintf("expected %d options, got %d", len(OptionLabels), len(q.Options)))
	}
	for _, label := range OptionLabels {
		if _, ok := q.Options[label]; !ok {
			return NewInvalidInputError("missing option label " + label)
		}
	}
	if _, ok := q.Options[q.Answer]; !ok {
		return NewInvalidInputError("answer label " + q.Answer + " is not an option")
	}
	return nil
}

// QuizSession holds the cumulative quiz state for one user session.
//
// Asked questions accumulate across batches so the generator can avoid
// repeats. Checked answers are recorded per question index of the active
// batch; only checked questions ever contribute to the historical
// counters. Invariant: HistoricalScore <= HistoricalTotal.
type QuizSession struct {
	Asked           []string
	Batch           []QuizQuestion
	HistoricalScore int
	HistoricalTotal int

	checked map[int]string
}

// NewQuizSession returns an empty quiz session (state NoQuiz).
func NewQuizSession() *QuizSession {
	return &QuizSession{checked: make(map[int]string)}
}

// Active reports whether a batch is currently installed.
func (s *QuizSession) Active() bool {
	return len(s.Batch) > 0
}

// Reset clears asked questions, checked state and both score counters.
func (s *QuizSession) Reset() {
	s.Asked = nil
	s.Batch = nil
	s.HistoricalScore = 0
	s.HistoricalTotal = 0
	s.checked = make(map[int]string)
}

// InstallBatch replaces the active batch, records the new question texts
// in the asked set and clears per-question checked state.
func (s *QuizSession) InstallBatch(questions []QuizQuestion) {
	for _, q := range questions {
		s.Asked = append(s.Asked, q.Question)
	}
	s.Batch = questions
	s.checked = make(map[int]string)
}

// Check records the user's choice for a question of the active batch and
// reports correctness. It is a pure lookup with no scoring side effect;
// scoring happens at batch advance.
func (s *QuizSession) Check(index int, choice string) (bool, *QuizQuestion, error) {
	if index < 0 || index >= len(s.Batch) {
		return false, nil, NewInvalidInputError(fmt.Sprintf("question index %d out of range", index))
	}
	q := &s.Batch[index]
	if _, ok := q.Options[choice]; !ok {
		return false, nil, NewInvalidInputError("choice " + choice + " is not a valid option label")
	}
	s.checked[index] = choice
	return choice == q.Answer, q, nil
}

// Checked reports whether the question at index has been checked and the
// recorded choice.
func (s *QuizSession) Checked(index int) (string, bool) {
	choice, ok := s.checked[index]
	return choice, ok
}

// BatchScore computes the active batch's score: the count of checked
// questions whose recorded choice equals the correct label, and the
// number of checked questions. Unchecked questions count toward neither.
func (s *QuizSession) BatchScore() (correct int, checked int) {
	for i, q := range s.Batch {
		choice, ok := s.checked[i]
		if !ok {
			continue
		}
		checked++
		if choice == q.Answer {
			correct++
		}
	}
	return correct, checked
}

// FoldBatch adds the active batch's checked-only score into the
// cumulative counters. Called exactly once per batch transition, before
// the next batch is installed.
func (s *QuizSession) FoldBatch() {
	correct, checked := s.BatchScore()
	s.HistoricalScore += correct
	s.HistoricalTotal += checked
}
