package chat

import (
	"context"
	"fmt"

	"chatrelay/internal/domain/models"
	"chatrelay/internal/domain/repositories"
	"chatrelay/internal/llm"
)

// SystemPreamble is injected as a synthetic leading system message on a
// session's first exchange. It is sent to the model only, never stored.
const SystemPreamble = "You are a friendly AI assistant. Answer the user's questions directly and keep the conversation natural."

// ContextAssembler builds the ordered context window for one model request:
// a bounded slice of the session's history, oldest first, with the new user
// message appended last.
//
// The window is capped by message count (historyTurns*2 messages), not by
// tokens. Very long messages can therefore still exceed a provider's
// context limit; token-aware truncation is a known limitation.
type ContextAssembler struct {
	messages repositories.MessageRepository
}

// NewContextAssembler creates a context assembler over the message store.
func NewContextAssembler(messages repositories.MessageRepository) *ContextAssembler {
	return &ContextAssembler{messages: messages}
}

// Build assembles the context window for a session and new user text.
// Returns the window plus the number of historical messages included.
// Pure read + transform: nothing is persisted and the result is the exact
// payload forwarded to the provider gateway.
func (a *ContextAssembler) Build(ctx context.Context, sessionID, userText string, historyTurns int) ([]llm.ChatMessage, int, error) {
	limit := historyTurns * 2
	history, err := a.messages.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch history: %w", err)
	}

	window := make([]llm.ChatMessage, 0, len(history)+2)

	// First contact gets the system preamble; established sessions do not.
	if len(history) == 0 {
		window = append(window, llm.ChatMessage{
			Role:    models.RoleSystem,
			Content: SystemPreamble,
		})
	}

	for _, msg := range history {
		window = append(window, llm.ChatMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	window = append(window, llm.ChatMessage{
		Role:    models.RoleUser,
		Content: userText,
	})

	return window, len(history), nil
}
