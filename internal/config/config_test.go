package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// isolate keeps the developer's own environment out of the test.
func isolate(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"AFJ_CONFIG", "AFJ_ENGINE", "AFJ_PROVIDER", "AFJ_MODEL", "AFJ_MOCK_LLM",
		"AFJ_TIMEOUT", "AFJ_MAX_TOKENS", "AFJ_LOG_LEVEL",
		"ANTHROPIC_API_KEY", "AFJ_ANTHROPIC_API_KEY",
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "AFJ_GEMINI_API_KEY",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

func TestDefaults(t *testing.T) {
	isolate(t)

	v := New()
	if err := ReadFile(v, ""); err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Config{
		Engine:      "git",
		MaxTokens:   8192,
		Timeout:     5 * time.Minute,
		StripFences: true,
		LogLevel:    "info",
	}
	if diff := cmp.Diff(want, *cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("AFJ_ENGINE", "JJ")
	t.Setenv("AFJ_PROVIDER", "gemini")
	t.Setenv("AFJ_TIMEOUT", "30s")
	t.Setenv("AFJ_MOCK_LLM", "1")
	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Setenv("ANTHROPIC_API_KEY", "a-key")

	cfg, err := Load(New())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Engine != "jj" || cfg.Provider != "gemini" || cfg.Timeout != 30*time.Second {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if !cfg.MockLLM {
		t.Error("MockLLM should be enabled")
	}
	want := map[string]string{"anthropic": "a-key", "gemini": "g-key"}
	if diff := cmp.Diff(want, cfg.APIKeys()); diff != "" {
		t.Errorf("APIKeys() mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigFile(t *testing.T) {
	isolate(t)

	dir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "afj")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := "engine: jj\nmodel: claude-haiku-4-5\nstrip_fences: false\n"
	if err := os.WriteFile(filepath.Join(dir, "afj.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	// environment beats the file
	t.Setenv("AFJ_ENGINE", "git")

	v := New()
	if err := ReadFile(v, ""); err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Engine != "git" {
		t.Errorf("Engine = %q, want git", cfg.Engine)
	}
	if cfg.Model != "claude-haiku-4-5" || cfg.StripFences {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.File != filepath.Join(dir, "afj.yaml") {
		t.Errorf("File = %q", cfg.File)
	}
}

func TestExplicitConfigMissing(t *testing.T) {
	isolate(t)

	err := ReadFile(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("ReadFile() should fail for a missing explicit file")
	}

	t.Setenv("AFJ_CONFIG", filepath.Join(t.TempDir(), "also-nope.yaml"))
	if err := ReadFile(New(), ""); err == nil {
		t.Fatal("ReadFile() should fail for a missing $AFJ_CONFIG")
	}
}

func TestValidate(t *testing.T) {
	overLimit := math.MaxInt32
	overLimit++

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"auto provider", func(c *Config) { c.Provider = "auto" }, false},
		{"unknown engine", func(c *Config) { c.Engine = "hg" }, true},
		{"unknown provider", func(c *Config) { c.Provider = "openai" }, true},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, true},
		{"negative tokens", func(c *Config) { c.MaxTokens = -1 }, true},
		{"tokens at 32-bit limit", func(c *Config) { c.MaxTokens = math.MaxInt32 }, false},
		{"tokens past 32-bit limit", func(c *Config) { c.MaxTokens = overLimit }, true},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Engine: "git", MaxTokens: 1, Timeout: time.Second, LogLevel: "info"}
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() error = %v, want ErrInvalid", err)
			}
			if !tt.wantErr && cfg.Provider == "auto" {
				t.Error("auto provider should normalize to empty")
			}
		})
	}
}

func TestTruthy(t *testing.T) {
	tests := map[string]bool{
		"":      false,
		"0":     false,
		"false": false,
		"No":    false,
		" off ": false,
		"1":     true,
		"true":  true,
		"yes":   true,
		"mock":  true,
	}
	for in, want := range tests {
		if got := Truthy(in); got != want {
			t.Errorf("Truthy(%q) = %v, want %v", in, got, want)
		}
	}
}
