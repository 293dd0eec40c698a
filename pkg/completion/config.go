package completion

import (
	"fmt"
	"net/url"
	"time"
)

const (
	// DefaultMaxRetryAttempts is the number of additional attempts made
	// after a failed request.
	DefaultMaxRetryAttempts = 3

	// DefaultRetryDelay is the fixed pause between attempts.
	DefaultRetryDelay = time.Second

	// DefaultTimeout bounds a single attempt. LLM responses can be slow.
	DefaultTimeout = 5 * time.Minute

	MinTemperature = 0.0
	MaxTemperature = 2.0
)

// RequestConfig holds the resolved connection parameters for one
// completion call. It is built from configuration at call time and never
// cached between calls.
type RequestConfig struct {
	// BaseURL is the endpoint as configured by the user. It is completed
	// by ResolveEndpoint before use.
	BaseURL string

	// APIKey is sent as a bearer credential, or embedded in the relay
	// envelope when ProxyURL is set.
	APIKey string

	Model       string
	Temperature float64
	MaxTokens   int
	Stream      bool

	// ProxyURL, when set, receives the request instead of the endpoint.
	ProxyURL string

	// SystemPrompt is prepended as a system message when non-empty.
	SystemPrompt string

	// MaxRetryAttempts is the number of retries after the first attempt.
	MaxRetryAttempts int

	// RetryDelay is the fixed pause between attempts. Zero selects
	// DefaultRetryDelay.
	RetryDelay time.Duration

	// Timeout bounds each attempt. Zero disables the bound.
	Timeout time.Duration
}

// Validate checks that the configuration can produce a request.
func (c RequestConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrEmptyBaseURL
	}
	if err := checkHTTPURL(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if c.ProxyURL != "" {
		if err := checkHTTPURL(c.ProxyURL); err != nil {
			return fmt.Errorf("invalid proxy URL: %w", err)
		}
	}
	if c.Model == "" {
		return ErrEmptyModel
	}
	if c.Temperature < MinTemperature || c.Temperature > MaxTemperature {
		return fmt.Errorf("temperature %.2f out of range [%.1f, %.1f]", c.Temperature, MinTemperature, MaxTemperature)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max tokens must not be negative: %d", c.MaxTokens)
	}
	if c.MaxRetryAttempts < 0 {
		return fmt.Errorf("max retry attempts must not be negative: %d", c.MaxRetryAttempts)
	}
	if c.RetryDelay < 0 || c.Timeout < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

func (c RequestConfig) retryDelay() time.Duration {
	if c.RetryDelay == 0 {
		return DefaultRetryDelay
	}
	return c.RetryDelay
}

func checkHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}
