// Package anthropic registers the Claude provider with the backend registry.
//
//	import _ "github.com/adamlabadorf/afj/internal/backend/anthropic"
package anthropic

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/adamlabadorf/afj/internal/backend"
)

// Name is the provider name used in configuration.
const Name = "anthropic"

// DefaultModel is used when no Claude model is requested.
const DefaultModel = "claude-sonnet-4-5"

// defaultMaxTokens applies when the configuration leaves max_tokens unset.
const defaultMaxTokens = 8192

func init() {
	backend.Register(Name, backend.Provider{
		New:           New,
		DefaultModel:  DefaultModel,
		ModelPrefixes: []string{"claude-"},
	})
}

// Generator calls the Messages API.
type Generator struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

// New creates a Claude generator.
func New(cfg backend.ProviderConfig) (backend.Generator, error) {
	if cfg.APIKey == "" {
		return nil, backend.ErrMissingAPIKey
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Generator{
		client:    sdk.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Name implements backend.Generator.
func (g *Generator) Name() string { return Name }

// Model returns the model requests are sent to.
func (g *Generator) Model() string { return g.model }

// Generate sends prompt as a single user message and returns the text of
// the reply.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := g.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(g.model),
		MaxTokens: g.maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}
