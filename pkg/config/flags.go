package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --model
// on both "notechat chat" and "notechat ask").
type Flag struct {
	// Name is the long flag name (e.g. "model").
	Name string

	// Shorthand is the one-letter short flag (e.g. "m"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "endpoint.model").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
const (
	FlagBaseURL     = "base-url"
	FlagModel       = "model"
	FlagProxyURL    = "proxy-url"
	FlagLanguage    = "language"
	FlagDriver      = "driver"
	FlagStorageDir  = "storage-dir"
	FlagSQLite      = "sqlite"
	FlagRelayListen = "listen"
	FlagMaxTokens   = "max-tokens"
	FlagRetries     = "retries"
)

// Flags is the registry shared by every notechat command.
var Flags = FlagSet{
	FlagBaseURL: {
		Name:        "base-url",
		ViperKey:    "endpoint.base_url",
		Description: "Base URL of the OpenAI-compatible endpoint",
	},
	FlagModel: {
		Name:        "model",
		Shorthand:   "m",
		ViperKey:    "endpoint.model",
		Description: "Model name sent with every request",
	},
	FlagProxyURL: {
		Name:        "proxy-url",
		ViperKey:    "endpoint.proxy_url",
		Description: "Relay URL; when set requests are wrapped in a relay envelope",
	},
	FlagLanguage: {
		Name:        "language",
		Shorthand:   "l",
		ViperKey:    "transcript.language",
		Description: "Transcript speaker label language (en, zh)",
	},
	FlagDriver: {
		Name:        "driver",
		ViperKey:    "storage.driver",
		Description: "Transcript storage driver (fs, sqlite, memory)",
	},
	FlagStorageDir: {
		Name:        "storage-dir",
		ViperKey:    "storage.dir",
		Description: "Directory for the scratch transcript and history snapshots",
	},
	FlagSQLite: {
		Name:        "sqlite",
		Shorthand:   "s",
		ViperKey:    "storage.sqlite_path",
		Description: "Path to the SQLite database for the sqlite driver",
	},
	FlagRelayListen: {
		Name:        "listen",
		ViperKey:    "relay.listen",
		Description: "Address for the relay server to listen on",
	},
	FlagMaxTokens: {
		Name:        "max-tokens",
		ViperKey:    "endpoint.max_tokens",
		Description: "Maximum tokens in the reply (0 omits the field)",
	},
	FlagRetries: {
		Name:        "retries",
		ViperKey:    "endpoint.max_retry_attempts",
		Description: "Retries after the first failed attempt",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
