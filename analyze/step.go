// Package analyze provides the workflow quality analysis engine for FlowAudit.
package analyze

import (
	"fmt"
	"strings"
)

// StepKind classifies a workflow step by its role in the process.
type StepKind string

// Standard step kinds. These align with the shapes used by common
// flowchart renderers (terminator, process box, decision diamond).
const (
	// StepStart marks the entry point of a workflow.
	StepStart StepKind = "start"

	// StepProcess is an ordinary action step.
	StepProcess StepKind = "process"

	// StepDecision is a branching step (conditional language present).
	StepDecision StepKind = "decision"

	// StepEnd marks the completion of a workflow.
	StepEnd StepKind = "end"
)

// WorkflowStep is one textual line item in an ordered business process.
//
// Steps are immutable inputs to every analyzer. Ordinals are unique and
// strictly increasing within one list, and Text is never empty or
// whitespace-only for a step an analyzer considers. Analyzers never mutate
// a step list in place; transformations (e.g. reordering suggestions)
// construct and return new slices.
type WorkflowStep struct {
	// ID is an opaque identifier assigned by the caller or by NormalizeSteps.
	ID string `json:"id"`

	// Text is the step description. Non-empty by invariant.
	Text string `json:"text"`

	// Kind classifies the step (start, process, decision, end).
	Kind StepKind `json:"kind"`

	// Ordinal is the step's position in the list, starting at 1.
	Ordinal int `json:"ordinal"`
}

// NormalizeSteps builds a valid step list from raw step texts.
//
// Callers that only have text (the usual case for the UI collaborator) use
// this to satisfy the step-list invariants:
//   - whitespace-only entries are dropped
//   - ordinals are assigned 1..n in input order
//   - kinds are inferred: first step is start, last step is end (when the
//     list has more than one step), steps with conditional language are
//     decisions, everything else is a process step
//
// The returned slice is freshly allocated and safe for the caller to own.
func NormalizeSteps(texts []string) []WorkflowStep {
	steps := make([]WorkflowStep, 0, len(texts))
	for _, text := range texts {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}
		steps = append(steps, WorkflowStep{Text: trimmed})
	}

	for i := range steps {
		steps[i].Ordinal = i + 1
		steps[i].ID = fmt.Sprintf("step-%d", i+1)
		steps[i].Kind = inferKind(steps[i].Text, i, len(steps))
	}

	return steps
}

// inferKind classifies a step by position and conditional language.
func inferKind(text string, index, total int) StepKind {
	if index == 0 {
		return StepStart
	}
	if index == total-1 && total > 1 {
		return StepEnd
	}
	if conditionalMarkers.matches(lower(text)) {
		return StepDecision
	}
	return StepProcess
}

// cloneSteps returns a fresh copy of a step list. Analyzers that produce
// alternative orderings copy first so the input list is never aliased.
func cloneSteps(steps []WorkflowStep) []WorkflowStep {
	out := make([]WorkflowStep, len(steps))
	copy(out, steps)
	return out
}

// stepTexts lowers a step list to its texts, preserving order.
func stepTexts(steps []WorkflowStep) []string {
	texts := make([]string, len(steps))
	for i, s := range steps {
		texts[i] = s.Text
	}
	return texts
}

// joinedText concatenates all step texts lowercased, used by rules that
// match against the corpus of the whole workflow.
func joinedText(steps []WorkflowStep) string {
	var b strings.Builder
	for i, s := range steps {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strings.ToLower(s.Text))
	}
	return b.String()
}
