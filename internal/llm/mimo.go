package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

const (
	mimoTemperature      = 0.7
	mimoTopP             = 0.95
	mimoFrequencyPenalty = 0.2
	mimoPresencePenalty  = 0.1
)

// MiMoClient is the secondary network provider. The endpoint is
// OpenAI-compatible but takes additional sampling/penalty parameters and a
// thinking extension flag, which this client keeps disabled since reasoning
// traces are useless in a plain chat relay.
type MiMoClient struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
	logger     *slog.Logger
}

// NewMiMoClient creates a MiMo client. Construction fails fast when the
// credential is missing so the factory can fall back to the stub.
func NewMiMoClient(apiKey, baseURL, model string, maxTokens int, logger *slog.Logger) (*MiMoClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("MIMO_API_KEY environment variable not set")
	}

	return &MiMoClient{
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
func (c *MiMoClient) Name() string {
	return "mimo"
}

type mimoThinking struct {
	Type string `json:"type"`
}

type mimoRequest struct {
	Model            string        `json:"model"`
	Messages         []ChatMessage `json:"messages"`
	Temperature      float64       `json:"temperature"`
	TopP             float64       `json:"top_p"`
	FrequencyPenalty float64       `json:"frequency_penalty"`
	PresencePenalty  float64       `json:"presence_penalty"`
	MaxTokens        int           `json:"max_tokens"`
	Stream           bool          `json:"stream"`
	Thinking         mimoThinking  `json:"thinking"`
}

// Chat sends the context window to MiMo and returns the generated reply,
// or a degraded result describing the failure.
func (c *MiMoClient) Chat(ctx context.Context, messages []ChatMessage, maxTokens int) *Result {
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	payload, err := json.Marshal(mimoRequest{
		Model:            c.model,
		Messages:         messages,
		Temperature:      mimoTemperature,
		TopP:             mimoTopP,
		FrequencyPenalty: mimoFrequencyPenalty,
		PresencePenalty:  mimoPresencePenalty,
		MaxTokens:        maxTokens,
		Stream:           false,
		Thinking:         mimoThinking{Type: "disabled"},
	})
	if err != nil {
		return degraded(FailureUpstream, fmt.Sprintf("marshal request: %v", err), transportReply)
	}

	body, status, err := postJSON(ctx, c.httpClient, c.baseURL+"/chat/completions", c.apiKey, payload)
	if err != nil {
		category, reply := classifyTransport(err)
		c.logger.Warn("mimo request failed", "category", category, "error", err)
		return degraded(category, err.Error(), reply)
	}

	if status < 200 || status >= 300 {
		category, reply := classifyStatus(status)
		c.logger.Warn("mimo non-success status", "status", status, "category", category)
		return degraded(category, fmt.Sprintf("status %d: %s", status, truncateBody(body)), reply)
	}

	text, usage, err := parseChatCompletion(body)
	if err != nil {
		c.logger.Warn("mimo malformed response", "error", err)
		return degraded(FailureUpstream, err.Error(), upstreamReply(status))
	}

	if usage != nil {
		c.logger.Info("mimo usage",
			"model", c.model,
			"input_tokens", usage.PromptTokens,
			"output_tokens", usage.CompletionTokens,
		)
	}

	return ok(text)
}
