package domain

// RoleUser and RoleAssistant are the two conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one message in a session's chat history.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
