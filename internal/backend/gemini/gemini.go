// Package gemini registers the Google Gemini provider with the backend
// registry.
package gemini

import (
	"context"
	"fmt"
	"math"

	"google.golang.org/genai"

	"github.com/adamlabadorf/afj/internal/backend"
)

// Name is the provider name used in configuration.
const Name = "gemini"

// DefaultModel is used when no Gemini model is requested.
const DefaultModel = "gemini-2.5-flash"

func init() {
	backend.Register(Name, backend.Provider{
		New:           New,
		DefaultModel:  DefaultModel,
		ModelPrefixes: []string{"gemini-", "gemma-"},
	})
}

// Generator calls GenerateContent on the Gemini API.
type Generator struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

// New creates a Gemini generator.
func New(cfg backend.ProviderConfig) (backend.Generator, error) {
	if cfg.APIKey == "" {
		return nil, backend.ErrMissingAPIKey
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Generator{
		client:    client,
		model:     model,
		maxTokens: outputTokens(cfg.MaxTokens),
	}, nil
}

// outputTokens converts the configured cap to the API's int32 field,
// saturating rather than wrapping. Zero leaves the model default.
func outputTokens(n int) int32 {
	switch {
	case n <= 0:
		return 0
	case n > math.MaxInt32:
		return math.MaxInt32
	}
	return int32(n)
}

// Name implements backend.Generator.
func (g *Generator) Name() string { return Name }

// Model returns the model requests are sent to.
func (g *Generator) Model() string { return g.model }

// Generate sends prompt as a single user turn and returns the reply text.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	var config *genai.GenerateContentConfig
	if g.maxTokens > 0 {
		config = &genai.GenerateContentConfig{MaxOutputTokens: g.maxTokens}
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", err
	}
	return result.Text(), nil
}
