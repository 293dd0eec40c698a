package conversation

import (
	"github.com/papercomputeco/notechat/pkg/completion"
	"github.com/papercomputeco/notechat/pkg/config"
)

// RequestConfigFrom maps the endpoint section of cfg and a resolved API
// key to a completion request config.
func RequestConfigFrom(cfg config.Config, apiKey string) completion.RequestConfig {
	ep := cfg.Endpoint
	return completion.RequestConfig{
		BaseURL:          ep.BaseURL,
		APIKey:           apiKey,
		Model:            ep.Model,
		Temperature:      ep.Temperature,
		MaxTokens:        ep.MaxTokens,
		Stream:           ep.Stream,
		ProxyURL:         ep.ProxyURL,
		SystemPrompt:     ep.SystemPrompt,
		MaxRetryAttempts: ep.MaxRetryAttempts,
		RetryDelay:       ep.RetryDelay.Duration,
		Timeout:          ep.Timeout.Duration,
	}
}
