package models

import "time"

// Chat message roles, matching the OpenAI chat completion roles.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is a single message in an assistant conversation.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatSession is an assistant conversation with its full history.
type ChatSession struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Messages  []ChatMessage `json:"messages"`
}

// ChatSessionInfo is the listing view of a session without message bodies.
type ChatSessionInfo struct {
	ID           string     `json:"id"`
	CreatedAt    time.Time  `json:"created_at"`
	MessageCount int        `json:"message_count"`
	LastMessage  *time.Time `json:"last_message,omitempty"`
}

// ChatMessageRequest is the payload for sending a message to the assistant.
type ChatMessageRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// Validate checks the chat message payload.
func (r *ChatMessageRequest) Validate() error {
	if r.Message == "" {
		return ErrEmptyMessage
	}
	if len(r.Message) > MaxChatMessageLength {
		return ErrMessageTooLong
	}
	return nil
}

// ChatResult is the assistant's reply plus session bookkeeping. LeadAnalysis
// is set only on the messages where the periodic requirements analysis ran.
type ChatResult struct {
	SessionID    string `json:"session_id"`
	Response     string `json:"response"`
	MessageCount int    `json:"message_count"`
	LeadAnalysis string `json:"lead_analysis,omitempty"`
	Error        string `json:"error,omitempty"`
}
