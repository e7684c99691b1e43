package models

import "time"

// Message roles. System is synthetic: the assembler injects it into model
// requests on first contact, it is never persisted.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn in a conversation session.
// Immutable after creation; deleted only via session deletion.
type Message struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
