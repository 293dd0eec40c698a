package config

import "time"

const (
	defaultBaseURL          = "https://api.openai.com"
	defaultModel            = "gpt-4o-mini"
	defaultTemperature      = 0.7
	defaultMaxTokens        = 2048
	defaultMaxRetryAttempts = 3
	defaultRetryDelay       = time.Second
	defaultTimeout          = 5 * time.Minute

	defaultLanguage = "en"

	defaultStorageDriver = "fs"

	defaultRelayListen = ":8787"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Endpoint: EndpointConfig{
			BaseURL:          defaultBaseURL,
			Model:            defaultModel,
			Temperature:      defaultTemperature,
			MaxTokens:        defaultMaxTokens,
			Stream:           true,
			MaxRetryAttempts: defaultMaxRetryAttempts,
			RetryDelay:       Duration{defaultRetryDelay},
			Timeout:          Duration{defaultTimeout},
		},
		Transcript: TranscriptConfig{
			Language: defaultLanguage,
		},
		Storage: StorageConfig{
			Driver: defaultStorageDriver,
		},
		Relay: RelayConfig{
			Listen:  defaultRelayListen,
			Metrics: true,
			MCP:     true,
		},
	}
}
