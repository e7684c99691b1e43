package llm

import "context"

// ChatMessage is one role/content pair in a context window.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FailureCategory classifies why a provider call degraded.
type FailureCategory string

const (
	FailureTimeout   FailureCategory = "timeout"
	FailureAuth      FailureCategory = "auth"
	FailureRateLimit FailureCategory = "rate_limit"
	FailureUpstream  FailureCategory = "upstream"
	FailureTransport FailureCategory = "transport"
)

// Result is the tagged outcome of a chat call. Text is always non-empty
// and renderable as an assistant reply. Degraded marks replies synthesized
// from a failure; Category and Detail carry the root cause for logging
// while the chat flow only consumes Text.
type Result struct {
	Text     string
	Degraded bool
	Category FailureCategory
	Detail   string
}

// Provider generates a reply from an assembled context window.
// Chat is total: upstream failures come back as degraded results, never as
// errors, so a chat turn is always completable. maxTokens bounds the reply
// length; maxTokens <= 0 selects the provider's configured default.
type Provider interface {
	Name() string
	Chat(ctx context.Context, messages []ChatMessage, maxTokens int) *Result
}

func ok(text string) *Result {
	return &Result{Text: text}
}

func degraded(category FailureCategory, detail, text string) *Result {
	return &Result{Text: text, Degraded: true, Category: category, Detail: detail}
}
