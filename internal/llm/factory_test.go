package llm

import (
	"testing"

	"chatrelay/internal/capabilities"
	"chatrelay/internal/config"
)

func newTestFactory(t *testing.T, cfg *config.Config) *ProviderFactory {
	t.Helper()
	caps, err := capabilities.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error: %v", err)
	}
	return NewProviderFactory(cfg, caps, testLogger())
}

func TestGetProvider(t *testing.T) {
	tests := []struct {
		name         string
		cfg          *config.Config
		providerName string
		wantName     string
		wantErr      bool
	}{
		{
			name:         "mock needs no credentials",
			cfg:          &config.Config{},
			providerName: "mock",
			wantName:     "stub",
		},
		{
			name:         "deepseek with key",
			cfg:          &config.Config{DeepSeekAPIKey: "sk-test"},
			providerName: "deepseek",
			wantName:     "deepseek",
		},
		{
			name:         "deepseek without key",
			cfg:          &config.Config{},
			providerName: "deepseek",
			wantErr:      true,
		},
		{
			name:         "mimo with key",
			cfg:          &config.Config{MiMoAPIKey: "mk-test"},
			providerName: "mimo",
			wantName:     "mimo",
		},
		{
			name:         "mimo without key",
			cfg:          &config.Config{},
			providerName: "mimo",
			wantErr:      true,
		},
		{
			name:         "unknown provider",
			cfg:          &config.Config{},
			providerName: "gpt5",
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := newTestFactory(t, tt.cfg)
			provider, err := factory.GetProvider(tt.providerName)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("GetProvider() error: %v", err)
			}
			if provider.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", provider.Name(), tt.wantName)
			}
		})
	}
}

func TestSelectProviderFallsBackToStub(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{"unknown provider name", &config.Config{Provider: "chatgpt"}},
		{"deepseek without credential", &config.Config{Provider: "deepseek"}},
		{"mimo without credential", &config.Config{Provider: "mimo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := newTestFactory(t, tt.cfg)
			provider := factory.SelectProvider()
			if provider.Name() != "stub" {
				t.Errorf("Name() = %q, want stub fallback", provider.Name())
			}
		})
	}
}

func TestSelectProviderConfigured(t *testing.T) {
	factory := newTestFactory(t, &config.Config{Provider: "deepseek", DeepSeekAPIKey: "sk-test"})
	provider := factory.SelectProvider()
	if provider.Name() != "deepseek" {
		t.Errorf("Name() = %q, want deepseek", provider.Name())
	}
}

func TestBaseURLOverridePrecedence(t *testing.T) {
	factory := newTestFactory(t, &config.Config{
		DeepSeekAPIKey:  "sk-test",
		DeepSeekBaseURL: "http://localhost:9999",
	})

	provider, err := factory.GetProvider("deepseek")
	if err != nil {
		t.Fatalf("GetProvider() error: %v", err)
	}

	client, ok := provider.(*DeepSeekClient)
	if !ok {
		t.Fatalf("provider is %T, want *DeepSeekClient", provider)
	}
	if client.baseURL != "http://localhost:9999" {
		t.Errorf("baseURL = %q, want the configured override", client.baseURL)
	}
}
