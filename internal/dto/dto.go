// Package dto defines the request and response bodies of the HTTP API.
package dto

// SessionResponse carries a newly created session identifier.
type SessionResponse struct {
	SessionID string `json:"session_id"`
}

// UploadResponse is returned after a successful document ingestion.
type UploadResponse struct {
	StoreID  string `json:"store_id"`
	Filename string `json:"filename"`
}

// AttachRequest points a session at a previously published store.
type AttachRequest struct {
	StoreID string `json:"store_id"`
}

// AskRequest is one chat question.
type AskRequest struct {
	Question string `json:"question"`
}

// SourceResponse is a web attribution for a grounded answer.
type SourceResponse struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// AskResponse is the answer to one question. Warning is set when the
// answer was degraded by an upstream failure; Sources are present only
// when the web fallback ran.
type AskResponse struct {
	Answer      string           `json:"answer"`
	WebFallback bool             `json:"web_fallback"`
	Sources     []SourceResponse `json:"sources,omitempty"`
	Warning     string           `json:"warning,omitempty"`
}

// MessageResponse is one turn of the conversation history.
type MessageResponse struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// HistoryResponse is the session's conversation so far.
type HistoryResponse struct {
	Messages []MessageResponse `json:"messages"`
}

// QuizQuestionResponse is one question as shown to the user. The
// correct answer and its explanation are withheld until the question is
// checked.
type QuizQuestionResponse struct {
	Index      int               `json:"index"`
	Question   string            `json:"question"`
	Options    map[string]string `json:"options"`
	Type       string            `json:"type"`
	Difficulty string            `json:"difficulty"`
}

// QuizBatchResponse is an installed quiz batch with the cumulative
// score after the transition.
type QuizBatchResponse struct {
	Questions []QuizQuestionResponse `json:"questions"`
	Score     int                    `json:"score"`
	Total     int                    `json:"total"`
	Warning   string                 `json:"warning,omitempty"`
}

// QuizCheckRequest records the user's choice for one question of the
// active batch.
type QuizCheckRequest struct {
	Index  int    `json:"index"`
	Choice string `json:"choice"`
}

// QuizCheckResponse reveals whether the choice was correct.
type QuizCheckResponse struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
	Reason        string `json:"reason"`
}

// QuizScoreResponse is the cumulative score including the active
// batch's checked questions.
type QuizScoreResponse struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

// SummaryResponse is a generated document summary.
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// LearningPathRequest describes the student profile a schedule is
// generated for.
type LearningPathRequest struct {
	Subject        string `json:"subject"`
	Topic          string `json:"topic"`
	KnowledgeLevel string `json:"knowledge_level"`
	Duration       string `json:"duration"`
	HoursPerWeek   int    `json:"hours_per_week"`
}

// LearningPathResponse is a generated study schedule with its source
// attributions.
type LearningPathResponse struct {
	Schedule string           `json:"schedule"`
	Sources  []SourceResponse `json:"sources,omitempty"`
}

// DocsExportRequest asks for a summary and quiz results to be exported
// to the configured docs webhook.
type DocsExportRequest struct {
	Title       string                 `json:"title"`
	Summary     string                 `json:"summary,omitempty"`
	QuizResults []DocsExportQuizResult `json:"quiz_results,omitempty"`
}

// DocsExportQuizResult is one scored question line in an export.
type DocsExportQuizResult struct {
	Question string `json:"question"`
	Chosen   string `json:"chosen"`
	Correct  string `json:"correct"`
}

// DocsExportResponse reports whether the export was accepted.
type DocsExportResponse struct {
	Saved bool `json:"saved"`
}
