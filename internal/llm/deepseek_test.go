package llm

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func completionBody(content string) string {
	return `{
		"choices": [{"message": {"content": "` + content + `"}}],
		"usage": {"prompt_tokens": 12, "completion_tokens": 7, "total_tokens": 19}
	}`
}

func TestNewDeepSeekClientRequiresKey(t *testing.T) {
	_, err := NewDeepSeekClient("", "https://api.deepseek.com", "deepseek-chat", 2048, testLogger())
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestDeepSeekChatSuccess(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq deepseekRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody("The answer is 42.")))
	}))
	defer server.Close()

	client, err := NewDeepSeekClient("sk-test", server.URL, "deepseek-chat", 2048, testLogger())
	if err != nil {
		t.Fatalf("NewDeepSeekClient() error: %v", err)
	}

	result := client.Chat(context.Background(), []ChatMessage{{Role: "user", Content: "hello"}}, 0)
	if result.Degraded {
		t.Fatalf("result degraded: %s (%s)", result.Category, result.Detail)
	}
	if result.Text != "The answer is 42." {
		t.Errorf("Text = %q", result.Text)
	}

	if gotPath != "/chat/completions" {
		t.Errorf("path = %q, want /chat/completions", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotReq.Model != "deepseek-chat" {
		t.Errorf("model = %q", gotReq.Model)
	}
	if gotReq.Stream {
		t.Error("stream must be false")
	}
	if gotReq.MaxTokens != 2048 {
		t.Errorf("max_tokens = %d, want configured default 2048", gotReq.MaxTokens)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "hello" {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
}

func TestDeepSeekChatStatusClassification(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		wantCategory FailureCategory
	}{
		{"unauthorized", 401, FailureAuth},
		{"forbidden", 403, FailureAuth},
		{"rate limited", 429, FailureRateLimit},
		{"server error", 500, FailureUpstream},
		{"bad gateway", 502, FailureUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "upstream says no", tt.status)
			}))
			defer server.Close()

			client, _ := NewDeepSeekClient("sk-test", server.URL, "deepseek-chat", 2048, testLogger())
			result := client.Chat(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}, 0)

			if !result.Degraded {
				t.Fatal("expected degraded result")
			}
			if result.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", result.Category, tt.wantCategory)
			}
			if result.Text == "" {
				t.Error("degraded result must carry renderable text")
			}
			if strings.Contains(result.Text, "upstream says no") {
				t.Error("raw upstream body leaked into the user-facing reply")
			}
		})
	}
}

func TestDeepSeekChatMalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>gateway error</html>"},
		{"no choices", `{"choices": []}`},
		{"empty content", `{"choices": [{"message": {"content": "  "}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, _ := NewDeepSeekClient("sk-test", server.URL, "deepseek-chat", 2048, testLogger())
			result := client.Chat(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}, 0)

			if !result.Degraded {
				t.Fatal("expected degraded result")
			}
			if result.Category != FailureUpstream {
				t.Errorf("Category = %q, want %q", result.Category, FailureUpstream)
			}
			if result.Text == "" {
				t.Error("degraded result must carry renderable text")
			}
		})
	}
}

func TestDeepSeekChatTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server observes the client hanging up,
		// then stall until it does.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	client, _ := NewDeepSeekClient("sk-test", server.URL, "deepseek-chat", 2048, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	result := client.Chat(ctx, []ChatMessage{{Role: "user", Content: "hi"}}, 0)
	if !result.Degraded {
		t.Fatal("expected degraded result")
	}
	if result.Category != FailureTimeout {
		t.Errorf("Category = %q, want %q", result.Category, FailureTimeout)
	}
	if result.Text == "" {
		t.Error("degraded result must carry renderable text")
	}
}

func TestDeepSeekChatConnectionRefused(t *testing.T) {
	// Point at a closed port
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, _ := NewDeepSeekClient("sk-test", url, "deepseek-chat", 2048, testLogger())
	result := client.Chat(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}, 0)

	if !result.Degraded {
		t.Fatal("expected degraded result")
	}
	if result.Category != FailureTransport {
		t.Errorf("Category = %q, want %q", result.Category, FailureTransport)
	}
}

func TestDeepSeekChatExplicitMaxTokens(t *testing.T) {
	var gotReq deepseekRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(completionBody("ok")))
	}))
	defer server.Close()

	client, _ := NewDeepSeekClient("sk-test", server.URL, "deepseek-chat", 2048, testLogger())
	client.Chat(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}, 256)

	if gotReq.MaxTokens != 256 {
		t.Errorf("max_tokens = %d, want caller override 256", gotReq.MaxTokens)
	}
}
