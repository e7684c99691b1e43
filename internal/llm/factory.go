package llm

import (
	"fmt"
	"log/slog"

	"chatrelay/internal/capabilities"
	"chatrelay/internal/config"
)

// ProviderFactory creates provider instances from configuration.
// Base URLs and generation budgets come from the capability registry;
// CONFIG base-URL overrides take precedence.
type ProviderFactory struct {
	config *config.Config
	caps   *capabilities.Registry
	logger *slog.Logger
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(cfg *config.Config, caps *capabilities.Registry, logger *slog.Logger) *ProviderFactory {
	return &ProviderFactory{
		config: cfg,
		caps:   caps,
		logger: logger,
	}
}

// GetProvider returns a provider instance for the given provider name.
//
// Supported providers:
//   - "deepseek" - DeepSeek chat-completions API
//   - "mimo" - Xiaomi MiMo (OpenAI-compatible)
//   - "mock" - Stub provider, no API key required
func (f *ProviderFactory) GetProvider(providerName string) (Provider, error) {
	switch providerName {
	case "deepseek":
		return f.createDeepSeekProvider()
	case "mimo":
		return f.createMiMoProvider()
	case "mock":
		return NewStubProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerName)
	}
}

// SelectProvider resolves the configured provider, falling back to the
// stub when the name is unrecognized or the provider cannot be constructed
// (typically a missing credential). Chat must keep working without real
// upstream access, so configuration problems never surface to callers.
func (f *ProviderFactory) SelectProvider() Provider {
	provider, err := f.GetProvider(f.config.Provider)
	if err != nil {
		f.logger.Warn("falling back to stub provider",
			"configured_provider", f.config.Provider,
			"reason", err.Error(),
		)
		return NewStubProvider()
	}

	f.logger.Info("llm provider selected", "provider", provider.Name())
	return provider
}

func (f *ProviderFactory) createDeepSeekProvider() (Provider, error) {
	model, err := f.caps.DefaultModel("deepseek")
	if err != nil {
		return nil, fmt.Errorf("deepseek capabilities: %w", err)
	}

	baseURL := f.config.DeepSeekBaseURL
	if baseURL == "" {
		baseURL, err = f.caps.BaseURL("deepseek")
		if err != nil {
			return nil, fmt.Errorf("deepseek capabilities: %w", err)
		}
	}

	return NewDeepSeekClient(f.config.DeepSeekAPIKey, baseURL, model.ID, model.MaxOutputTokens, f.logger)
}

func (f *ProviderFactory) createMiMoProvider() (Provider, error) {
	model, err := f.caps.DefaultModel("mimo")
	if err != nil {
		return nil, fmt.Errorf("mimo capabilities: %w", err)
	}

	baseURL := f.config.MiMoBaseURL
	if baseURL == "" {
		baseURL, err = f.caps.BaseURL("mimo")
		if err != nil {
			return nil, fmt.Errorf("mimo capabilities: %w", err)
		}
	}

	return NewMiMoClient(f.config.MiMoAPIKey, baseURL, model.ID, model.MaxOutputTokens, f.logger)
}
