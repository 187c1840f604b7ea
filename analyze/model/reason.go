// Package model provides external reasoning collaborator adapters.
package model

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Reasoner defines the interface for external natural-language reasoning
// services consulted for higher-quality duplicate and ordering judgments.
//
// This interface abstracts the differences between providers (OpenAI,
// Anthropic, Google) behind the two judgment shapes the analysis engine
// consumes. A Reasoner is always optional: every call site in the engine
// has a deterministic local fallback, and a Reasoner failure of any kind
// (transport error, non-2xx response, malformed JSON, timeout) degrades to
// that fallback rather than surfacing to the engine's caller.
//
// Implementations should:
//   - Handle provider-specific authentication.
//   - Ask the provider for strict JSON and parse with the tolerant
//     Parse* helpers in this package.
//   - Respect context cancellation and timeouts.
//   - Handle retries and rate limiting appropriately.
//
// Example usage:
//
//	r := openai.New(apiKey, "")
//	j, err := r.JudgeDuplicates(ctx, "Send the invoice", "Email the invoice")
//	if err != nil {
//	    // fall back to the heuristic
//	}
//	if j.AreDuplicates { ... }
type Reasoner interface {
	// JudgeDuplicates asks whether two step texts denote the same action.
	JudgeDuplicates(ctx context.Context, stepA, stepB string) (DuplicateJudgment, error)

	// SuggestOrder asks whether the full step list needs reordering and,
	// if so, for the corrected order.
	SuggestOrder(ctx context.Context, steps []string) (OrderingJudgment, error)
}

// DuplicateJudgment is the structured response to a duplicate query.
type DuplicateJudgment struct {
	AreDuplicates bool    `json:"areDuplicates"`
	Similarity    float64 `json:"similarity"` // in [0,1]
	Reasoning     string  `json:"reasoning"`
}

// OrderingJudgment is the structured response to an ordering query.
type OrderingJudgment struct {
	NeedsReordering bool     `json:"needsReordering"`
	SuggestedSteps  []string `json:"suggestedSteps"`
	Reasoning       string   `json:"reasoning"`
	Confidence      float64  `json:"confidence"` // in [0,1]
}

// ErrMalformedResponse indicates the provider returned output that does
// not contain the expected JSON object. Callers treat this like any other
// provider failure and fall back to the local heuristic.
var ErrMalformedResponse = errors.New("reasoner returned malformed response")

// DuplicatePrompt builds the system and user prompts for a duplicate
// judgment over one step pair.
func DuplicatePrompt(stepA, stepB string) (system, user string) {
	system = "You analyze business process steps. Respond with strict JSON only, " +
		`shaped as {"areDuplicates": bool, "similarity": number 0-1, "reasoning": string}.`
	user = fmt.Sprintf(
		"Do these two process steps describe the same action?\nStep 1: %s\nStep 2: %s",
		stepA, stepB)
	return system, user
}

// OrderingPrompt builds the system and user prompts for an ordering
// judgment over the full step list.
func OrderingPrompt(steps []string) (system, user string) {
	system = "You analyze the logical ordering of business process steps. " +
		"Respond with strict JSON only, shaped as " +
		`{"needsReordering": bool, "suggestedSteps": [string], "reasoning": string, "confidence": number 0-1}. ` +
		"suggestedSteps must contain exactly the given step texts, reordered."
	var b strings.Builder
	b.WriteString("Are these steps in a logical order?\n")
	for i, s := range steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	return system, b.String()
}

// ParseDuplicateJudgment extracts a DuplicateJudgment from raw provider
// output. Tolerates markdown fences and surrounding prose; requires the
// areDuplicates field to be present.
func ParseDuplicateJudgment(raw string) (DuplicateJudgment, error) {
	body, ok := extractJSON(raw)
	if !ok {
		return DuplicateJudgment{}, ErrMalformedResponse
	}

	dup := gjson.Get(body, "areDuplicates")
	if !dup.Exists() {
		return DuplicateJudgment{}, ErrMalformedResponse
	}

	return DuplicateJudgment{
		AreDuplicates: dup.Bool(),
		Similarity:    clamp01(gjson.Get(body, "similarity").Float()),
		Reasoning:     gjson.Get(body, "reasoning").String(),
	}, nil
}

// ParseOrderingJudgment extracts an OrderingJudgment from raw provider
// output. Requires needsReordering to be present; a judgment that needs
// reordering must also carry a non-empty suggestedSteps list.
func ParseOrderingJudgment(raw string) (OrderingJudgment, error) {
	body, ok := extractJSON(raw)
	if !ok {
		return OrderingJudgment{}, ErrMalformedResponse
	}

	needs := gjson.Get(body, "needsReordering")
	if !needs.Exists() {
		return OrderingJudgment{}, ErrMalformedResponse
	}

	var steps []string
	for _, v := range gjson.Get(body, "suggestedSteps").Array() {
		steps = append(steps, v.String())
	}
	if needs.Bool() && len(steps) == 0 {
		return OrderingJudgment{}, ErrMalformedResponse
	}

	return OrderingJudgment{
		NeedsReordering: needs.Bool(),
		SuggestedSteps:  steps,
		Reasoning:       gjson.Get(body, "reasoning").String(),
		Confidence:      clamp01(gjson.Get(body, "confidence").Float()),
	}, nil
}

// extractJSON locates the first JSON object in raw output, stripping
// markdown fences and any surrounding prose the model added despite the
// strict-JSON instruction.
func extractJSON(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return "", false
	}
	body := raw[start : end+1]
	if !gjson.Valid(body) {
		return "", false
	}
	return body, true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
