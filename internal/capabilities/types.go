package capabilities

// ProviderCapabilities describes one upstream provider: where to reach it
// and which models it serves.
type ProviderCapabilities struct {
	Provider string              `yaml:"provider"`
	BaseURL  string              `yaml:"base_url"`
	Models   []ModelCapabilities `yaml:"models"`
}

// ModelCapabilities describes one model entry.
// MaxOutputTokens is the generation budget sent with every request; it is
// always set explicitly because it affects both cost and latency.
type ModelCapabilities struct {
	ID              string `yaml:"id"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
	Default         bool   `yaml:"default"`
}
