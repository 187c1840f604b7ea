// Package anthropic provides a Reasoner backed by Anthropic's Claude API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dshills/flowaudit/analyze/model"
)

const defaultModel = "claude-3-5-sonnet-latest"

// Reasoner implements model.Reasoner for Anthropic's Claude API.
//
// Example usage:
//
//	apiKey := os.Getenv("ANTHROPIC_API_KEY")
//	r := anthropic.New(apiKey, "")
//
//	j, err := r.JudgeDuplicates(ctx, "Send the invoice", "Email the invoice")
//	if err != nil {
//	    // caller falls back to the heuristic
//	}
type Reasoner struct {
	modelName string
	client    anthropicClient
}

// anthropicClient defines the interface for Anthropic API operations.
// This allows for easy mocking in tests.
type anthropicClient interface {
	complete(ctx context.Context, system, user string) (string, error)
}

// New creates an Anthropic-backed Reasoner.
//
// Parameters:
//   - apiKey: Anthropic API key (https://console.anthropic.com/)
//   - modelName: model to use. Empty string uses the default.
func New(apiKey, modelName string) *Reasoner {
	if modelName == "" {
		modelName = defaultModel
	}
	return &Reasoner{
		modelName: modelName,
		client:    &defaultClient{apiKey: apiKey, modelName: modelName},
	}
}

// JudgeDuplicates implements model.Reasoner.
func (r *Reasoner) JudgeDuplicates(ctx context.Context, stepA, stepB string) (model.DuplicateJudgment, error) {
	if ctx.Err() != nil {
		return model.DuplicateJudgment{}, ctx.Err()
	}

	system, user := model.DuplicatePrompt(stepA, stepB)
	raw, err := r.client.complete(ctx, system, user)
	if err != nil {
		return model.DuplicateJudgment{}, err
	}
	return model.ParseDuplicateJudgment(raw)
}

// SuggestOrder implements model.Reasoner.
func (r *Reasoner) SuggestOrder(ctx context.Context, steps []string) (model.OrderingJudgment, error) {
	if ctx.Err() != nil {
		return model.OrderingJudgment{}, ctx.Err()
	}

	system, user := model.OrderingPrompt(steps)
	raw, err := r.client.complete(ctx, system, user)
	if err != nil {
		return model.OrderingJudgment{}, err
	}
	return model.ParseOrderingJudgment(raw)
}

// defaultClient wraps the official anthropic-sdk-go client.
type defaultClient struct {
	apiKey    string
	modelName string
}

func (c *defaultClient) complete(ctx context.Context, system, user string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("anthropic API key is required")
	}

	client := sdk.NewClient(option.WithAPIKey(c.apiKey))
	msg, err := client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.modelName),
		MaxTokens: 1024,
		System:    []sdk.TextBlockParam{{Text: system}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}
