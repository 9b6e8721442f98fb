// Package backend produces rewritten file content from a prompt.
//
// A Generator is chosen once at startup by New from configuration: the
// deterministic Echo stand-in when mocking is requested, a live provider
// (registered by internal/backend/anthropic or internal/backend/gemini)
// when credentials exist, and the offline Simulation otherwise.
//
//	import _ "github.com/adamlabadorf/afj/internal/backend/anthropic"
//
//	gen, err := backend.New(backend.Config{Provider: "anthropic", APIKeys: keys})
//	out, err := gen.Generate(ctx, backend.BuildPrompt(instruction, content))
package backend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Generator turns a prompt into the new file content.
type Generator interface {
	// Name identifies the variant ("echo", "simulation", "anthropic", ...)
	Name() string

	// Generate returns the model output for prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config selects and tunes the generator.
type Config struct {
	// Provider is the live provider name; empty picks the first registered
	// provider that has an API key.
	Provider string

	// Model is the requested model; unknown or empty falls back to the
	// provider default.
	Model string

	// MaxTokens caps the reply length.
	MaxTokens int

	// Timeout bounds each live request; zero means no bound.
	Timeout time.Duration

	// StripFences removes a code fence wrapping the whole reply.
	StripFences bool

	// Mock selects the Echo generator.
	Mock bool

	// APIKeys maps provider names to credentials.
	APIKeys map[string]string

	// BaseURL overrides the provider endpoint (proxies, tests).
	BaseURL string

	Logger *zap.Logger
}

// ProviderConfig is what a live provider factory receives.
type ProviderConfig struct {
	Model     string
	APIKey    string
	MaxTokens int
	BaseURL   string
}

// Provider describes a registered live provider.
type Provider struct {
	// New builds the generator.
	New func(cfg ProviderConfig) (Generator, error)

	// DefaultModel is used when the requested model is empty or foreign.
	DefaultModel string

	// ModelPrefixes identifies the provider's model family ("claude-").
	ModelPrefixes []string
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Provider)
)

// Register adds a live provider. Providers call this from init().
// Panics if the name is taken or the provider has no factory.
func Register(name string, p Provider) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if p.New == nil {
		panic(fmt.Sprintf("backend: provider %q has no factory", name))
	}
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("backend: provider %q already registered", name))
	}
	registry[name] = p
}

// Available returns the registered provider names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(name string) (Provider, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := registry[name]
	return p, ok
}

// ResolveModel returns the model to use with the named provider. The
// requested model is kept when it belongs to the provider's family;
// otherwise the provider default is returned and fellBack is true.
func ResolveModel(name, requested string) (model string, fellBack bool, err error) {
	p, ok := lookup(name)
	if !ok {
		return "", false, fmt.Errorf("%w: %s (available: %v)", ErrUnknownProvider, name, Available())
	}

	if requested != "" {
		if len(p.ModelPrefixes) == 0 {
			return requested, false, nil
		}
		for _, prefix := range p.ModelPrefixes {
			if strings.HasPrefix(requested, prefix) {
				return requested, false, nil
			}
		}
	}
	return p.DefaultModel, true, nil
}

// New selects the generator described by cfg.
func New(cfg Config) (Generator, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Mock {
		logger.Debug("using echo backend")
		return Echo{}, nil
	}

	name := cfg.Provider
	if name == "" {
		for _, candidate := range Available() {
			if cfg.APIKeys[candidate] != "" {
				name = candidate
				break
			}
		}
	} else if _, ok := lookup(name); !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownProvider, name, Available())
	}

	if name == "" || cfg.APIKeys[name] == "" {
		logger.Warn("no API key configured, using offline simulation",
			zap.String("provider", cfg.Provider))
		return Simulation{}, nil
	}

	model, fellBack, err := ResolveModel(name, cfg.Model)
	if err != nil {
		return nil, err
	}
	if fellBack && cfg.Model != "" {
		logger.Warn("model not available for provider, using default",
			zap.String("provider", name),
			zap.String("requested", cfg.Model),
			zap.String("model", model))
	}

	p, _ := lookup(name)
	gen, err := p.New(ProviderConfig{
		Model:     model,
		APIKey:    cfg.APIKeys[name],
		MaxTokens: cfg.MaxTokens,
		BaseURL:   cfg.BaseURL,
	})
	if err != nil {
		return nil, NewError(name, "init", err)
	}

	logger.Debug("using live backend", zap.String("provider", name), zap.String("model", model))

	return &live{
		inner:       gen,
		timeout:     cfg.Timeout,
		stripFences: cfg.StripFences,
		logger:      logger,
	}, nil
}

// live decorates a provider generator with the request timeout, reply
// cleanup, and error typing shared by every live provider.
type live struct {
	inner       Generator
	timeout     time.Duration
	stripFences bool
	logger      *zap.Logger
}

func (l *live) Name() string {
	return l.inner.Name()
}

func (l *live) Generate(ctx context.Context, prompt string) (string, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := l.inner.Generate(ctx, prompt)
	if err != nil {
		return "", NewError(l.inner.Name(), "generate", err)
	}
	if strings.TrimSpace(out) == "" {
		return "", NewError(l.inner.Name(), "generate", ErrEmptyResponse)
	}

	l.logger.Debug("generation finished",
		zap.String("provider", l.inner.Name()),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("chars", len(out)))

	if l.stripFences {
		out = StripFences(out)
	}
	return out, nil
}
