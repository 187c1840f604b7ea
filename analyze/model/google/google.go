// Package google provides a Reasoner backed by Google's Gemini API.
package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/dshills/flowaudit/analyze/model"
)

const defaultModel = "gemini-2.5-flash"

// Reasoner implements model.Reasoner for Google's Gemini API.
//
// Provides safety-filter handling with descriptive errors: Gemini may
// block prompts or responses, and the block surfaces as a
// *SafetyFilterError so callers can distinguish it from transport
// failures (either way, the engine falls back to its heuristic).
//
// Example usage:
//
//	apiKey := os.Getenv("GOOGLE_API_KEY")
//	r := google.New(apiKey, "")
type Reasoner struct {
	modelName string
	client    googleClient
}

// googleClient defines the interface for Gemini API operations.
// This allows for easy mocking in tests.
type googleClient interface {
	complete(ctx context.Context, system, user string) (string, error)
}

// New creates a Gemini-backed Reasoner.
//
// Parameters:
//   - apiKey: Google API key (https://makersuite.google.com/app/apikey)
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

// defaultClient wraps the official Google Gemini SDK client.
type defaultClient struct {
	apiKey    string
	modelName string
}

func (c *defaultClient) complete(ctx context.Context, system, user string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("google API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create Google client: %w", err)
	}
	defer func() {
		_ = client.Close()
	}()

	genModel := client.GenerativeModel(c.modelName)
	genModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}

	resp, err := genModel.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", fmt.Errorf("google API error: %w", err)
	}

	return extractText(resp)
}

// extractText flattens the first candidate's text parts, translating
// safety blocks to *SafetyFilterError.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", errors.New("google API returned no candidates")
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", &SafetyFilterError{reason: candidate.FinishReason.String()}
	}
	if candidate.Content == nil {
		return "", errors.New("google API returned empty content")
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

// SafetyFilterError represents a Gemini safety filter block.
//
// Use errors.As to check for this error type:
//
//	var safetyErr *google.SafetyFilterError
//	if errors.As(err, &safetyErr) {
//	    log.Printf("content blocked: %s", safetyErr.Reason())
//	}
type SafetyFilterError struct {
	reason string
}

// Error implements the error interface.
func (e *SafetyFilterError) Error() string {
	return "content blocked by safety filter: " + e.reason
}

// Reason returns why the content was blocked.
func (e *SafetyFilterError) Reason() string {
	return e.reason
}
