package config

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"time"
)

// Config represents the persistent notechat configuration stored as
// config.toml in the .notechat/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version    int              `toml:"version"`
	Endpoint   EndpointConfig   `toml:"endpoint"`
	Transcript TranscriptConfig `toml:"transcript"`
	Storage    StorageConfig    `toml:"storage"`
	Relay      RelayConfig      `toml:"relay"`
}

// EndpointConfig holds the completion endpoint settings resolved into a
// request config at every send.
type EndpointConfig struct {
	BaseURL          string   `toml:"base_url"`
	Model            string   `toml:"model"`
	Temperature      float64  `toml:"temperature"`
	MaxTokens        int      `toml:"max_tokens"`
	Stream           bool     `toml:"stream"`
	ProxyURL         string   `toml:"proxy_url"`
	SystemPrompt     string   `toml:"system_prompt"`
	MaxRetryAttempts int      `toml:"max_retry_attempts"`
	RetryDelay       Duration `toml:"retry_delay"`
	Timeout          Duration `toml:"timeout"`
}

// TranscriptConfig holds transcript format settings.
type TranscriptConfig struct {
	Language     string `toml:"language"`
	DatedHeaders bool   `toml:"dated_headers"`
}

// StorageConfig holds transcript storage settings.
type StorageConfig struct {
	Driver     string `toml:"driver"`
	Dir        string `toml:"dir,omitempty"`
	SQLitePath string `toml:"sqlite_path,omitempty"`
}

// RelayConfig holds relay server settings.
type RelayConfig struct {
	Listen  string `toml:"listen"`
	Metrics bool   `toml:"metrics"`
	MCP     bool   `toml:"mcp"`
}

// Duration is a time.Duration written as a Go duration string ("1s").
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

var (
	validLanguages = []string{"en", "zh"}
	validDrivers   = []string{"fs", "sqlite", "memory"}
)

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"endpoint.base_url": {
		get: func(c *Config) string { return c.Endpoint.BaseURL },
		set: func(c *Config, v string) error {
			if err := checkURL("endpoint.base_url", v); err != nil {
				return err
			}
			c.Endpoint.BaseURL = v
			return nil
		},
	},
	"endpoint.model": {
		get: func(c *Config) string { return c.Endpoint.Model },
		set: func(c *Config, v string) error { c.Endpoint.Model = v; return nil },
	},
	"endpoint.temperature": {
		get: func(c *Config) string { return strconv.FormatFloat(c.Endpoint.Temperature, 'f', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for endpoint.temperature: %w", err)
			}
			if f < 0 || f > 2 {
				return fmt.Errorf("invalid value for endpoint.temperature: %v is outside [0, 2]", f)
			}
			c.Endpoint.Temperature = f
			return nil
		},
	},
	"endpoint.max_tokens": {
		get: func(c *Config) string { return strconv.Itoa(c.Endpoint.MaxTokens) },
		set: func(c *Config, v string) error {
			n, err := parseNonNegative("endpoint.max_tokens", v)
			if err != nil {
				return err
			}
			c.Endpoint.MaxTokens = n
			return nil
		},
	},
	"endpoint.stream": {
		get: func(c *Config) string { return strconv.FormatBool(c.Endpoint.Stream) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for endpoint.stream: %w", err)
			}
			c.Endpoint.Stream = b
			return nil
		},
	},
	"endpoint.proxy_url": {
		get: func(c *Config) string { return c.Endpoint.ProxyURL },
		set: func(c *Config, v string) error {
			if v != "" {
				if err := checkURL("endpoint.proxy_url", v); err != nil {
					return err
				}
			}
			c.Endpoint.ProxyURL = v
			return nil
		},
	},
	"endpoint.system_prompt": {
		get: func(c *Config) string { return c.Endpoint.SystemPrompt },
		set: func(c *Config, v string) error { c.Endpoint.SystemPrompt = v; return nil },
	},
	"endpoint.max_retry_attempts": {
		get: func(c *Config) string { return strconv.Itoa(c.Endpoint.MaxRetryAttempts) },
		set: func(c *Config, v string) error {
			n, err := parseNonNegative("endpoint.max_retry_attempts", v)
			if err != nil {
				return err
			}
			c.Endpoint.MaxRetryAttempts = n
			return nil
		},
	},
	"endpoint.retry_delay": {
		get: func(c *Config) string { return c.Endpoint.RetryDelay.String() },
		set: func(c *Config, v string) error {
			d, err := parseDuration("endpoint.retry_delay", v)
			if err != nil {
				return err
			}
			c.Endpoint.RetryDelay = d
			return nil
		},
	},
	"endpoint.timeout": {
		get: func(c *Config) string { return c.Endpoint.Timeout.String() },
		set: func(c *Config, v string) error {
			d, err := parseDuration("endpoint.timeout", v)
			if err != nil {
				return err
			}
			c.Endpoint.Timeout = d
			return nil
		},
	},
	"transcript.language": {
		get: func(c *Config) string { return c.Transcript.Language },
		set: func(c *Config, v string) error {
			if !slices.Contains(validLanguages, v) {
				return fmt.Errorf("invalid value for transcript.language: %q (available: %v)", v, validLanguages)
			}
			c.Transcript.Language = v
			return nil
		},
	},
	"transcript.dated_headers": {
		get: func(c *Config) string { return strconv.FormatBool(c.Transcript.DatedHeaders) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for transcript.dated_headers: %w", err)
			}
			c.Transcript.DatedHeaders = b
			return nil
		},
	},
	"storage.driver": {
		get: func(c *Config) string { return c.Storage.Driver },
		set: func(c *Config, v string) error {
			if !slices.Contains(validDrivers, v) {
				return fmt.Errorf("invalid value for storage.driver: %q (available: %v)", v, validDrivers)
			}
			c.Storage.Driver = v
			return nil
		},
	},
	"storage.dir": {
		get: func(c *Config) string { return c.Storage.Dir },
		set: func(c *Config, v string) error { c.Storage.Dir = v; return nil },
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"relay.listen": {
		get: func(c *Config) string { return c.Relay.Listen },
		set: func(c *Config, v string) error { c.Relay.Listen = v; return nil },
	},
	"relay.metrics": {
		get: func(c *Config) string { return strconv.FormatBool(c.Relay.Metrics) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for relay.metrics: %w", err)
			}
			c.Relay.Metrics = b
			return nil
		},
	},
	"relay.mcp": {
		get: func(c *Config) string { return strconv.FormatBool(c.Relay.MCP) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for relay.mcp: %w", err)
			}
			c.Relay.MCP = b
			return nil
		},
	},
}

func parseNonNegative(key, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid value for %s: must not be negative", key)
	}
	return n, nil
}

func parseDuration(key, v string) (Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return Duration{}, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if d < 0 {
		return Duration{}, fmt.Errorf("invalid value for %s: must not be negative", key)
	}
	return Duration{d}, nil
}

func checkURL(key, v string) error {
	u, err := url.Parse(v)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid value for %s: %q is not an http(s) URL", key, v)
	}
	return nil
}
