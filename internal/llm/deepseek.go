package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// requestTimeout bounds the single network call a chat request makes.
	// No retries: one upstream failure is surfaced once as text.
	requestTimeout = 30 * time.Second

	deepseekTemperature = 0.7
)

// DeepSeekClient is the primary network provider. It speaks the DeepSeek
// chat-completions API (OpenAI-compatible) with bearer authentication.
type DeepSeekClient struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
	logger     *slog.Logger
}

// NewDeepSeekClient creates a DeepSeek client. Construction fails fast when
// the credential is missing so the factory can fall back to the stub.
func NewDeepSeekClient(apiKey, baseURL, model string, maxTokens int, logger *slog.Logger) (*DeepSeekClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("DEEPSEEK_API_KEY environment variable not set")
	}

	return &DeepSeekClient{
		apiKey:    apiKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		model:     model,
		maxTokens: maxTokens,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger: logger,
	}, nil
}

// Name returns the provider name.
func (c *DeepSeekClient) Name() string {
	return "deepseek"
}

type deepseekRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *tokenUsage `json:"usage"`
}

type tokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Chat sends the context window to DeepSeek and returns the generated
// reply, or a degraded result describing the failure.
func (c *DeepSeekClient) Chat(ctx context.Context, messages []ChatMessage, maxTokens int) *Result {
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	payload, err := json.Marshal(deepseekRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: deepseekTemperature,
		MaxTokens:   maxTokens,
		Stream:      false,
	})
	if err != nil {
		return degraded(FailureUpstream, fmt.Sprintf("marshal request: %v", err), transportReply)
	}

	body, status, err := postJSON(ctx, c.httpClient, c.baseURL+"/chat/completions", c.apiKey, payload)
	if err != nil {
		category, reply := classifyTransport(err)
		c.logger.Warn("deepseek request failed", "category", category, "error", err)
		return degraded(category, err.Error(), reply)
	}

	if status < 200 || status >= 300 {
		category, reply := classifyStatus(status)
		c.logger.Warn("deepseek non-success status", "status", status, "category", category)
		return degraded(category, fmt.Sprintf("status %d: %s", status, truncateBody(body)), reply)
	}

	text, usage, err := parseChatCompletion(body)
	if err != nil {
		c.logger.Warn("deepseek malformed response", "error", err)
		return degraded(FailureUpstream, err.Error(), upstreamReply(status))
	}

	if usage != nil {
		c.logger.Info("deepseek usage",
			"model", c.model,
			"input_tokens", usage.PromptTokens,
			"output_tokens", usage.CompletionTokens,
		)
	}

	return ok(text)
}

// postJSON performs one bearer-authenticated POST and returns the raw body
// and status. Transport errors come back as-is for classification.
func postJSON(ctx context.Context, client *http.Client, url, apiKey string, payload []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	return body, resp.StatusCode, nil
}

// parseChatCompletion extracts the generated message content from an
// OpenAI-compatible chat completion body.
func parseChatCompletion(body []byte) (string, *tokenUsage, error) {
	var parsed chatCompletionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", nil, fmt.Errorf("parse response: %s", truncateBody(body))
	}

	if len(parsed.Choices) == 0 {
		return "", parsed.Usage, fmt.Errorf("response contains no choices")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", parsed.Usage, fmt.Errorf("response contains empty content")
	}

	return content, parsed.Usage, nil
}

func truncateBody(body []byte) string {
	const maxChars = 400
	runes := []rune(string(body))
	if len(runes) <= maxChars {
		return string(body)
	}
	return string(runes[:maxChars])
}
