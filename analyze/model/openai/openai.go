// Package openai provides a Reasoner backed by OpenAI's API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/dshills/flowaudit/analyze/model"
)

const defaultModel = "gpt-4o-mini"

// Reasoner implements model.Reasoner for OpenAI's API.
//
// Provides:
//   - Automatic retry for transient errors (network issues, 5xx)
//   - Exponential backoff for rate limits
//   - Context cancellation
//
// Example usage:
//
//	apiKey := os.Getenv("OPENAI_API_KEY")
//	r := openai.New(apiKey, "gpt-4o")
type Reasoner struct {
	modelName  string
	client     openaiClient
	maxRetries int
	retryDelay time.Duration
}

// openaiClient defines the interface for OpenAI API operations.
// This allows for easy mocking in tests.
type openaiClient interface {
	complete(ctx context.Context, system, user string) (string, error)
}

// New creates an OpenAI-backed Reasoner.
//
// Parameters:
//   - apiKey: OpenAI API key (https://platform.openai.com/api-keys)
//   - modelName: model to use. Empty string uses the default.
//
// Returns a Reasoner configured with 3 retry attempts and a 1 second base
// delay between retries.
func New(apiKey, modelName string) *Reasoner {
	if modelName == "" {
		modelName = defaultModel
	}
	return &Reasoner{
		modelName:  modelName,
		client:     &defaultClient{apiKey: apiKey, modelName: modelName},
		maxRetries: 3,
		retryDelay: time.Second,
	}
}

// JudgeDuplicates implements model.Reasoner.
func (r *Reasoner) JudgeDuplicates(ctx context.Context, stepA, stepB string) (model.DuplicateJudgment, error) {
	system, user := model.DuplicatePrompt(stepA, stepB)
	raw, err := r.completeWithRetry(ctx, system, user)
	if err != nil {
		return model.DuplicateJudgment{}, err
	}
	return model.ParseDuplicateJudgment(raw)
}

// SuggestOrder implements model.Reasoner.
func (r *Reasoner) SuggestOrder(ctx context.Context, steps []string) (model.OrderingJudgment, error) {
	system, user := model.OrderingPrompt(steps)
	raw, err := r.completeWithRetry(ctx, system, user)
	if err != nil {
		return model.OrderingJudgment{}, err
	}
	return model.ParseOrderingJudgment(raw)
}

// completeWithRetry attempts the completion, retrying transient errors
// with backoff.
func (r *Reasoner) completeWithRetry(ctx context.Context, system, user string) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		raw, err := r.client.complete(ctx, system, user)
		if err == nil {
			return raw, nil
		}
		lastErr = err

		if !isTransientError(err) {
			return "", err
		}
		if attempt >= r.maxRetries {
			break
		}

		// Exponential backoff for rate limits, flat delay otherwise.
		delay := r.retryDelay
		if strings.Contains(strings.ToLower(err.Error()), "rate limit") {
			delay = r.retryDelay * time.Duration(attempt+1)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return "", fmt.Errorf("openai API failed after %d retries: %w", r.maxRetries, lastErr)
}

// isTransientError determines if an error should trigger a retry.
func isTransientError(err error) bool {
	if err == nil {
		return false
	}
	msgLower := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"timeout",
		"network",
		"connection",
		"temporary",
		"rate limit",
		"503",
		"502",
		"500",
	} {
		if strings.Contains(msgLower, pattern) {
			return true
		}
	}
	return false
}

// defaultClient wraps the official openai-go client.
type defaultClient struct {
	apiKey    string
	modelName string
}

func (c *defaultClient) complete(ctx context.Context, system, user string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("openai API key is required")
	}

	client := sdk.NewClient(option.WithAPIKey(c.apiKey))
	resp, err := client.Chat.Completions.New(ctx, sdk.ChatCompletionNewParams{
		Model: sdk.ChatModel(c.modelName),
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.SystemMessage(system),
			sdk.UserMessage(user),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai API returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
