package analyze

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/flowaudit/analyze/emit"
	"github.com/dshills/flowaudit/analyze/model"
)

// CategoryPhase is one ordered phase within a category rule: a label and
// the keywords that place a step in that phase.
type CategoryPhase struct {
	Label    string
	Keywords keywordSet
}

// CategoryRule describes one logical-precedence domain for ordering
// analysis: an ordered list of phases that steps in the domain must
// respect. A step belongs to the earliest phase whose keywords it matches;
// a violation is any later-phase step appearing before an earlier-phase
// step in text order.
//
// Rules are data records evaluated by one generic detector. Deployments
// can remove or extend domains via WithCategoryRules without code changes.
type CategoryRule struct {
	ID         string
	Phases     []CategoryPhase
	Confidence float64 // fixed confidence reported for this rule family
}

// DefaultCategoryRules returns the built-in ordering domains.
//
// The "intimate" domain is included for completeness with the personal-SOP
// use case but, like every domain, is plain rule content: filter it out of
// this slice and pass the rest to WithCategoryRules to drop it.
func DefaultCategoryRules() []CategoryRule {
	return []CategoryRule{
		{
			ID: "hygiene",
			Phases: []CategoryPhase{
				{Label: "dirty activity", Keywords: keywordSet{"wipe", "toilet", "trash", "garbage", "dirty"}},
				{Label: "cleaning", Keywords: keywordSet{"wash", "sanitize", "disinfect", "rinse"}},
			},
			Confidence: 0.9,
		},
		{
			ID: "food",
			Phases: []CategoryPhase{
				{Label: "preparation", Keywords: keywordSet{"prepare", "cook", "chop", "mix", "heat"}},
				{Label: "consumption", Keywords: keywordSet{"eat", "consume", "serve", "taste"}},
			},
			Confidence: 0.8,
		},
		{
			ID: "work",
			Phases: []CategoryPhase{
				{Label: "setup", Keywords: keywordSet{"setup", "set up", "install", "configure"}},
				{Label: "execution", Keywords: keywordSet{"execute", "run", "perform", "launch"}},
			},
			Confidence: 0.7,
		},
		{
			ID: "communication",
			Phases: []CategoryPhase{
				{Label: "drafting", Keywords: keywordSet{"draft", "write", "compose"}},
				{Label: "sending", Keywords: keywordSet{"send", "deliver", "publish"}},
			},
			Confidence: 0.8,
		},
		{
			ID: "approval",
			Phases: []CategoryPhase{
				{Label: "review", Keywords: keywordSet{"review", "submit"}},
				{Label: "approval", Keywords: keywordSet{"approve", "sign off", "authorize"}},
			},
			Confidence: 0.8,
		},
		{
			ID: "intimate",
			Phases: []CategoryPhase{
				{Label: "consent", Keywords: keywordSet{"consent", "agree"}},
				{Label: "foreplay", Keywords: keywordSet{"kiss", "foreplay", "caress"}},
				{Label: "intimacy", Keywords: keywordSet{"intercourse", "intimacy", "sex"}},
			},
			Confidence: 0.85,
		},
	}
}

// OrderAnalyzer detects illogical step sequencing.
//
// Two cooperating tiers:
//   - Tier 1 (DependencyNotes): lightweight textual heuristics producing
//     advisory strings (declared sequence markers, validation immediately
//     following an action). Advisory only; never proposes a reordering.
//   - Tier 2 (Analyze): semantic category reordering against the rule
//     tables, or full-list delegation to the external reasoner when one is
//     configured, falling back to the local tables on any failure.
//
// Analyze returns nil when no violation is found. Nil means "no
// violation detected", not "not analyzed".
type OrderAnalyzer struct {
	reasoner model.Reasoner
	timeout  time.Duration
	rules    []CategoryRule
	emitter  emit.Emitter
	metrics  *PrometheusMetrics
}

// NewOrderAnalyzer creates an analyzer over the given category rules
// (nil uses DefaultCategoryRules) with an optional external reasoner.
func NewOrderAnalyzer(reasoner model.Reasoner, timeout time.Duration, rules []CategoryRule) *OrderAnalyzer {
	if rules == nil {
		rules = DefaultCategoryRules()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OrderAnalyzer{
		reasoner: reasoner,
		timeout:  timeout,
		rules:    rules,
		emitter:  emit.NewNullEmitter(),
	}
}

// Analyze runs Tier 2 (with Tier 1 advisories attached to any issue
// found). The input list is never mutated; a suggested reordering is a
// freshly built list.
func (o *OrderAnalyzer) Analyze(ctx context.Context, runID string, steps []WorkflowStep) *OrderingIssue {
	if len(steps) < 2 {
		return nil
	}

	var issue *OrderingIssue
	if o.reasoner != nil {
		issue = o.delegate(ctx, runID, steps)
	} else {
		issue = o.localReorder(steps)
	}

	if issue != nil {
		issue.Advisories = o.DependencyNotes(steps)
	}
	return issue
}

// DependencyNotes is the Tier 1 heuristic: advisory strings about declared
// dependencies and validation placement. Produces notes, not a reordering.
func (o *OrderAnalyzer) DependencyNotes(steps []WorkflowStep) []string {
	var notes []string

	for i, step := range steps {
		text := lower(step.Text)
		if i > 0 && sequenceMarkers.matches(text) {
			notes = append(notes, fmt.Sprintf(
				"step %d (%q) declares a sequential dependency; confirm the preceding steps satisfy it",
				step.Ordinal, step.Text))
		}
	}

	for i := 0; i+1 < len(steps); i++ {
		actionText := lower(steps[i].Text)
		checkText := lower(steps[i+1].Text)
		if actionKeywords.matches(actionText) && validationKeywords.matches(checkText) {
			notes = append(notes, fmt.Sprintf(
				"step %d validates after the action in step %d; consider moving validation earlier",
				steps[i+1].Ordinal, steps[i].Ordinal))
		}
	}

	return notes
}

// delegate sends the whole list to the external reasoner, degrading to the
// local category tables on any failure.
func (o *OrderAnalyzer) delegate(ctx context.Context, runID string, steps []WorkflowStep) *OrderingIssue {
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	j, err := o.reasoner.SuggestOrder(callCtx, stepTexts(steps))
	cancel()
	if err != nil {
		o.metrics.IncrementFallbacks("ordering", fallbackReason(err))
		o.emitter.Emit(emit.Event{
			RunID:    runID,
			Analyzer: "ordering",
			Msg:      "fallback",
			Meta:     map[string]interface{}{"reason": fallbackReason(err), "error": err.Error()},
		})
		return o.localReorder(steps)
	}

	if !j.NeedsReordering {
		return nil
	}

	return &OrderingIssue{
		OriginalSteps:  cloneSteps(steps),
		SuggestedSteps: mapSuggestedTexts(steps, j.SuggestedSteps),
		Reasoning:      j.Reasoning,
		Confidence:     j.Confidence,
	}
}

// localReorder evaluates each category rule in order and reorders by the
// first violated rule's phase buckets.
func (o *OrderAnalyzer) localReorder(steps []WorkflowStep) *OrderingIssue {
	for _, rule := range o.rules {
		phases := classifyPhases(rule, steps)
		if !hasPhaseViolation(phases) {
			continue
		}

		suggested := reorderByPhases(rule, steps, phases)
		return &OrderingIssue{
			OriginalSteps:  cloneSteps(steps),
			SuggestedSteps: suggested,
			Reasoning:      violationReason(rule, steps, phases),
			Confidence:     rule.Confidence,
		}
	}
	return nil
}

// classifyPhases assigns each step its phase index within a rule, or -1
// when the step is outside the rule's domain. A step matching several
// phases takes the earliest.
func classifyPhases(rule CategoryRule, steps []WorkflowStep) []int {
	phases := make([]int, len(steps))
	for i, step := range steps {
		phases[i] = -1
		text := lower(step.Text)
		for p, phase := range rule.Phases {
			if phase.Keywords.matches(text) {
				phases[i] = p
				break
			}
		}
	}
	return phases
}

// hasPhaseViolation reports whether any later-phase step precedes an
// earlier-phase step.
func hasPhaseViolation(phases []int) bool {
	for i := 0; i < len(phases); i++ {
		if phases[i] < 0 {
			continue
		}
		for j := i + 1; j < len(phases); j++ {
			if phases[j] >= 0 && phases[i] > phases[j] {
				return true
			}
		}
	}
	return false
}

// reorderByPhases buckets the categorized steps by phase and concatenates
// the buckets in rule order; uncategorized steps follow in their original
// relative order. This is a full logical reordering, not a pairwise swap.
// Ordinals are renumbered on the new list; the input is untouched.
func reorderByPhases(rule CategoryRule, steps []WorkflowStep, phases []int) []WorkflowStep {
	suggested := make([]WorkflowStep, 0, len(steps))
	for p := range rule.Phases {
		for i, step := range steps {
			if phases[i] == p {
				suggested = append(suggested, step)
			}
		}
	}
	for i, step := range steps {
		if phases[i] < 0 {
			suggested = append(suggested, step)
		}
	}

	for i := range suggested {
		suggested[i].Ordinal = i + 1
	}
	return suggested
}

// violationReason builds the human-readable rationale for a category
// violation.
func violationReason(rule CategoryRule, steps []WorkflowStep, phases []int) string {
	// Name the first out-of-order pair.
	for i := 0; i < len(phases); i++ {
		if phases[i] < 0 {
			continue
		}
		for j := i + 1; j < len(phases); j++ {
			if phases[j] >= 0 && phases[i] > phases[j] {
				return fmt.Sprintf(
					"%s ordering violated: %q (%s) should come after %q (%s)",
					rule.ID,
					steps[i].Text, rule.Phases[phases[i]].Label,
					steps[j].Text, rule.Phases[phases[j]].Label)
			}
		}
	}
	return fmt.Sprintf("%s ordering violated", rule.ID)
}

// mapSuggestedTexts maps reasoner-suggested step texts back onto the
// original steps, matching by text. Texts with no match become fresh
// steps; ordinals are renumbered.
func mapSuggestedTexts(steps []WorkflowStep, texts []string) []WorkflowStep {
	remaining := cloneSteps(steps)
	suggested := make([]WorkflowStep, 0, len(texts))

	for _, text := range texts {
		matched := false
		for i, step := range remaining {
			if strings.EqualFold(strings.TrimSpace(step.Text), strings.TrimSpace(text)) {
				suggested = append(suggested, step)
				remaining = append(remaining[:i], remaining[i+1:]...)
				matched = true
				break
			}
		}
		if !matched {
			suggested = append(suggested, WorkflowStep{Text: strings.TrimSpace(text), Kind: StepProcess})
		}
	}

	for i := range suggested {
		suggested[i].Ordinal = i + 1
		if suggested[i].ID == "" {
			suggested[i].ID = fmt.Sprintf("step-%d", i+1)
		}
	}
	return suggested
}
