package llm

import (
	"context"
	"strings"
	"unicode"
)

// StubProvider is a network-free provider returning canned replies.
// It is the fallback when no real credential is configured or the selected
// provider name is unrecognized, and it doubles as the test provider.
type StubProvider struct{}

// NewStubProvider creates a stub provider. It requires no credentials.
func NewStubProvider() *StubProvider {
	return &StubProvider{}
}

// Name returns the provider name.
func (p *StubProvider) Name() string {
	return "stub"
}

// Chat matches the last user message against a small set of trigger
// substrings and returns one of three canned replies.
func (p *StubProvider) Chat(_ context.Context, messages []ChatMessage, _ int) *Result {
	userMsg := strings.ToLower(lastUserContent(messages))

	switch {
	case containsWord(userMsg, "hello") || containsWord(userMsg, "hi"):
		return ok("Hello! I'm your AI desktop robot, still under active development.")
	case strings.Contains(userMsg, "what can you do") || strings.Contains(userMsg, "feature"):
		return ok("Right now I can hold a conversation. Voice, vision and movement are on the way!")
	default:
		return ok("This is a canned reply. To get real AI responses, configure a valid API key in your .env file.")
	}
}

// containsWord reports whether s contains w as a whole word. A plain
// substring match on "hi" would fire on words like "this" or "shiny".
func containsWord(s, w string) bool {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, field := range fields {
		if field == w {
			return true
		}
	}
	return false
}

// lastUserContent returns the content of the last user-role message,
// falling back to the last message of any role.
func lastUserContent(messages []ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	if len(messages) > 0 {
		return messages[len(messages)-1].Content
	}
	return ""
}
