package llm

import (
	"context"
	"strings"
	"testing"
)

func TestStubProviderTriggers(t *testing.T) {
	p := NewStubProvider()

	tests := []struct {
		name     string
		message  string
		wantPart string
	}{
		{"greeting", "Hello!", "AI desktop robot"},
		{"greeting lowercase", "hi there", "AI desktop robot"},
		{"capability question", "What can you do?", "hold a conversation"},
		{"feature question", "tell me about your features", "hold a conversation"},
		{"anything else", "explain quantum entanglement", "canned reply"},
		{"hi inside a word", "is this something you know?", "canned reply"},
		{"shiny is not a greeting", "that looks shiny", "canned reply"},
		{"hi with punctuation", "hi! anyone home?", "AI desktop robot"},
		{"empty window", "", "canned reply"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var window []ChatMessage
			if tt.message != "" {
				window = []ChatMessage{{Role: "user", Content: tt.message}}
			}

			result := p.Chat(context.Background(), window, 0)
			if result.Degraded {
				t.Error("stub result marked degraded")
			}
			if result.Text == "" {
				t.Fatal("stub returned empty text")
			}
			if !strings.Contains(result.Text, tt.wantPart) {
				t.Errorf("reply %q does not contain %q", result.Text, tt.wantPart)
			}
		})
	}
}

func TestStubProviderMatchesLastUserMessage(t *testing.T) {
	p := NewStubProvider()

	window := []ChatMessage{
		{Role: "system", Content: "You are a friendly AI assistant."},
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "Hello! I'm your AI desktop robot, still under active development."},
		{Role: "user", Content: "what can you do"},
	}

	result := p.Chat(context.Background(), window, 0)
	if !strings.Contains(result.Text, "hold a conversation") {
		t.Errorf("reply %q, want the capability reply for the last user message", result.Text)
	}
}
