package models

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single turn in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the relay endpoint.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
	Model    string        `json:"model,omitempty"`
}

// ChatResponse is the relayed assistant reply.
type ChatResponse struct {
	Content string `json:"content"`
}

// ErrorResponse is the JSON body of 400/401/404/429 responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
