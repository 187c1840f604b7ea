package analyze

import (
	"fmt"
	"sort"
)

// Priority ranks gap suggestions. Higher values sort first.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

// String returns the canonical uppercase name used in report output.
func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "CRITICAL"
	case PriorityHigh:
		return "HIGH"
	case PriorityMedium:
		return "MEDIUM"
	case PriorityLow:
		return "LOW"
	default:
		return fmt.Sprintf("Priority(%d)", int(p))
	}
}

// MarshalJSON emits the priority name rather than its numeric rank.
func (p Priority) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// insertionHint controls where a gap rule suggests inserting the missing
// step relative to the workflow.
type insertionHint int

const (
	insertAfterTrigger insertionHint = iota // directly after the step that matched Trigger
	insertBeforeTrigger
	insertAtStart
	insertAtEnd
)

// GapRule is one declarative record in the gap catalogue.
//
// A rule fires when:
//   - the list has at least MinSteps steps (0 = no minimum),
//   - Trigger matches somewhere in the step texts (empty Trigger always
//     matches), and
//   - Anti matches nowhere in the step texts.
//
// All rules are evaluated independently by the same generic matcher;
// adding a rule is a data change, not a code change.
type GapRule struct {
	ID       string
	Trigger  keywordSet
	Anti     keywordSet
	MinSteps int
	Priority Priority
	Where    insertionHint

	Suggestion string
	Reason     string
}

// Evaluate applies the rule to a step list. Returns nil when the rule does
// not fire.
func (r GapRule) Evaluate(steps []WorkflowStep) *GapSuggestion {
	if r.MinSteps > 0 && len(steps) < r.MinSteps {
		return nil
	}

	triggerAt := -1
	if len(r.Trigger) == 0 {
		triggerAt = 0
	} else {
		for i, s := range steps {
			if r.Trigger.matches(lower(s.Text)) {
				triggerAt = i
				break
			}
		}
		if triggerAt < 0 {
			return nil
		}
	}

	for _, s := range steps {
		if r.Anti.matches(lower(s.Text)) {
			return nil
		}
	}

	insertAt := 0
	switch r.Where {
	case insertAfterTrigger:
		insertAt = triggerAt + 1
	case insertBeforeTrigger:
		insertAt = triggerAt
	case insertAtStart:
		insertAt = 0
	case insertAtEnd:
		insertAt = len(steps)
	}

	return &GapSuggestion{
		InsertAt:      insertAt,
		SuggestedText: r.Suggestion,
		Reason:        r.Reason,
		Priority:      r.Priority,
		RuleID:        r.ID,
	}
}

// evaluateGapRules runs every rule independently and returns the firing
// suggestions sorted by priority (CRITICAL first). Ties keep catalogue
// order.
func evaluateGapRules(rules []GapRule, steps []WorkflowStep) []GapSuggestion {
	var gaps []GapSuggestion
	for _, rule := range rules {
		if g := rule.Evaluate(steps); g != nil {
			gaps = append(gaps, *g)
		}
	}
	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].Priority > gaps[j].Priority
	})
	return gaps
}

// DefaultGapRules returns the built-in gap catalogue.
//
// The returned slice is freshly allocated; callers may append to or filter
// it and hand the result to WithGapRules.
func DefaultGapRules() []GapRule {
	return []GapRule{
		{
			ID:         "flush-after-toilet",
			Trigger:    keywordSet{"toilet"},
			Anti:       keywordSet{"flush"},
			Priority:   PriorityCritical,
			Where:      insertAfterTrigger,
			Suggestion: "Flush the toilet",
			Reason:     "The workflow uses the toilet but never flushes it",
		},
		{
			ID:         "dispose-after-wipe",
			Trigger:    keywordSet{"wipe"},
			Anti:       keywordSet{"dispose", "discard", "trash", "bin", "throw"},
			Priority:   PriorityHigh,
			Where:      insertAfterTrigger,
			Suggestion: "Dispose of the used toilet paper",
			Reason:     "Wiping happens but the used paper is never disposed of",
		},
		{
			ID:         "wash-before-eating",
			Trigger:    keywordSet{"eat", "eating", "meal", "lunch", "dinner"},
			Anti:       keywordSet{"wash"},
			Priority:   PriorityHigh,
			Where:      insertBeforeTrigger,
			Suggestion: "Wash your hands",
			Reason:     "Eating occurs without a prior hand-washing step",
		},
		{
			ID:         "verify-after-entry",
			Trigger:    keywordSet{"enter", "input", "type in", "fill in", "fill out"},
			Anti:       verificationKeywords,
			Priority:   PriorityCritical,
			Where:      insertAfterTrigger,
			Suggestion: "Verify the entered data",
			Reason:     "Data is entered manually but never verified",
		},
		{
			ID:         "confirm-after-payment",
			Trigger:    keywordSet{"payment", "pay", "charge", "invoice"},
			Anti:       keywordSet{"confirm", "confirmation", "receipt", "notify"},
			Priority:   PriorityCritical,
			Where:      insertAfterTrigger,
			Suggestion: "Send a payment confirmation",
			Reason:     "A payment is taken without any confirmation or notification step",
		},
		{
			ID:         "submit-before-approval",
			Trigger:    keywordSet{"approve", "approval"},
			Anti:       keywordSet{"submit", "submission", "request"},
			Priority:   PriorityCritical,
			Where:      insertBeforeTrigger,
			Suggestion: "Submit the item for approval",
			Reason:     "An approval step exists but nothing is ever submitted for it",
		},
		{
			ID:         "error-handling",
			Anti:       keywordSet{"error", "fail", "exception", "fallback", "retry"},
			MinSteps:   6,
			Priority:   PriorityHigh,
			Where:      insertAtEnd,
			Suggestion: "Define what to do when a step fails",
			Reason:     "A multi-step process has no error-handling step",
		},
		{
			ID:         "explicit-start",
			Anti:       keywordSet{"start", "begin", "initiate", "receive", "trigger"},
			MinSteps:   4,
			Priority:   PriorityMedium,
			Where:      insertAtStart,
			Suggestion: "Add an explicit starting trigger",
			Reason:     "The workflow never states what initiates it",
		},
		{
			ID:         "explicit-end",
			Anti:       keywordSet{"complete", "finish", "end", "close", "done"},
			MinSteps:   4,
			Priority:   PriorityMedium,
			Where:      insertAtEnd,
			Suggestion: "Add an explicit completion step",
			Reason:     "The workflow never states when it is finished",
		},
		{
			ID:         "customer-communication",
			Trigger:    keywordSet{"customer", "client"},
			Anti:       communicationKeywords,
			MinSteps:   4,
			Priority:   PriorityMedium,
			Where:      insertAtEnd,
			Suggestion: "Inform the customer of the outcome",
			Reason:     "A customer is involved but never communicated with",
		},
		{
			ID:         "audit-log",
			Trigger:    keywordSet{"approve", "delete", "payment", "close"},
			Anti:       keywordSet{"log", "audit", "record"},
			MinSteps:   6,
			Priority:   PriorityLow,
			Where:      insertAtEnd,
			Suggestion: "Log the action for audit purposes",
			Reason:     "A critical action happens without any logging or audit step",
		},
	}
}
