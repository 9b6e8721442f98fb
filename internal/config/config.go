// Package config loads afj settings from flags, the environment, and an
// optional afj.yaml file.
//
// Precedence, highest first: command-line flags, AFJ_* environment
// variables, the config file, built-in defaults. Each process builds its
// own *viper.Viper; nothing is global.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Keys understood in afj.yaml and as AFJ_<KEY> environment variables.
const (
	KeyEngine              = "engine"
	KeyProvider            = "provider"
	KeyModel               = "model"
	KeyMaxTokens           = "max_tokens"
	KeyTimeout             = "timeout"
	KeyStripFences         = "strip_fences"
	KeyBaseURL             = "base_url"
	KeyAllowNameCollisions = "allow_name_collisions"
	KeyLogLevel            = "log_level"
	KeyLogFile             = "log_file"
	KeyNoColor             = "no_color"
	KeyMockLLM             = "mock_llm"
	KeyAnthropicAPIKey     = "anthropic_api_key"
	KeyGeminiAPIKey        = "gemini_api_key"
)

// EnvPrefix is prepended to every key when reading the environment.
const EnvPrefix = "AFJ"

// FileName is the config file base name searched in the config directories.
const FileName = "afj"

// ErrInvalid is returned for settings that fail validation.
var ErrInvalid = errors.New("invalid configuration")

// Config is the validated configuration.
type Config struct {
	Engine              string        `mapstructure:"engine"`
	Provider            string        `mapstructure:"provider"`
	Model               string        `mapstructure:"model"`
	MaxTokens           int           `mapstructure:"max_tokens"`
	Timeout             time.Duration `mapstructure:"timeout"`
	StripFences         bool          `mapstructure:"strip_fences"`
	BaseURL             string        `mapstructure:"base_url"`
	AllowNameCollisions bool          `mapstructure:"allow_name_collisions"`
	LogLevel            string        `mapstructure:"log_level"`
	LogFile             string        `mapstructure:"log_file"`
	NoColor             bool          `mapstructure:"no_color"`
	MockLLM             bool          `mapstructure:"-"`
	AnthropicAPIKey     string        `mapstructure:"anthropic_api_key"`
	GeminiAPIKey        string        `mapstructure:"gemini_api_key"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// New returns a viper instance with defaults and environment bindings set.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyEngine, "git")
	v.SetDefault(KeyProvider, "")
	v.SetDefault(KeyModel, "")
	v.SetDefault(KeyMaxTokens, 8192)
	v.SetDefault(KeyTimeout, "5m")
	v.SetDefault(KeyStripFences, true)
	v.SetDefault(KeyBaseURL, "")
	v.SetDefault(KeyAllowNameCollisions, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyNoColor, false)
	v.SetDefault(KeyMockLLM, "")
	v.SetDefault(KeyAnthropicAPIKey, "")
	v.SetDefault(KeyGeminiAPIKey, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Provider credentials keep their conventional names
	_ = v.BindEnv(KeyAnthropicAPIKey, "AFJ_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv(KeyGeminiAPIKey, "AFJ_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY")

	return v
}

// ReadFile reads the config file. An explicit path (flag or $AFJ_CONFIG)
// must exist; otherwise afj.yaml is looked up in the user config
// directories and its absence is not an error.
func ReadFile(v *viper.Viper, explicit string) error {
	if explicit == "" {
		explicit = os.Getenv("AFJ_CONFIG")
	}

	if explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", explicit, err)
		}
		return nil
	}

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	for _, dir := range searchPaths() {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

func searchPaths() []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, "afj"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "afj"))
	}
	return dirs
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	cfg.MockLLM = Truthy(v.GetString(KeyMockLLM))
	cfg.File = v.ConfigFileUsed()
	cfg.Engine = strings.ToLower(strings.TrimSpace(cfg.Engine))
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch c.Engine {
	case "git", "jj":
	default:
		return fmt.Errorf("%w: engine %q (want git or jj)", ErrInvalid, c.Engine)
	}

	switch c.Provider {
	case "", "auto", "anthropic", "gemini":
	default:
		return fmt.Errorf("%w: provider %q (want anthropic or gemini)", ErrInvalid, c.Provider)
	}
	if c.Provider == "auto" {
		c.Provider = ""
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalid, c.Timeout)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("%w: max_tokens must be positive, got %d", ErrInvalid, c.MaxTokens)
	}
	// Provider APIs carry the cap as a 32-bit integer
	if c.MaxTokens > math.MaxInt32 {
		return fmt.Errorf("%w: max_tokens must be at most %d, got %d", ErrInvalid, math.MaxInt32, c.MaxTokens)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return nil
}

// APIKeys returns the provider credentials keyed by provider name.
func (c *Config) APIKeys() map[string]string {
	return map[string]string{
		"anthropic": c.AnthropicAPIKey,
		"gemini":    c.GeminiAPIKey,
	}
}

// Truthy reports whether an environment-style flag is switched on: any
// non-empty value except 0, false, no, and off (case-insensitive).
func Truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false", "no", "off":
		return false
	}
	return true
}
