package analyze

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/flowaudit/analyze/emit"
	"github.com/dshills/flowaudit/analyze/model"
)

// heuristicDuplicateCutoff is the similarity above which the keyword
// heuristic flags a pair as duplicates.
const heuristicDuplicateCutoff = 0.7

// DuplicateDetector flags pairs of steps that likely describe the same
// action.
//
// Every unordered pair is scored two ways:
//   - Heuristic (always available): keyword-overlap similarity
//     |intersection| / max(|keywords(A)|, |keywords(B)|), duplicate when
//     similarity exceeds 0.7.
//   - External-assisted (when a Reasoner is configured): the pair is sent
//     to the reasoning collaborator; its judgment is accepted when it
//     marks the pair duplicate or its similarity meets the configured
//     threshold. Any transport, parse, or timeout failure silently falls
//     back to the heuristic for that pair.
//
// Pair comparison is O(n²), acceptable because step lists are short (tens
// of steps, not thousands). Detection is pure with respect to its inputs
// aside from the optional external call.
type DuplicateDetector struct {
	reasoner  model.Reasoner
	threshold float64
	timeout   time.Duration
	emitter   emit.Emitter
	metrics   *PrometheusMetrics
}

// NewDuplicateDetector creates a detector with the given external
// reasoner (nil for heuristic-only) and acceptance threshold for external
// similarities.
func NewDuplicateDetector(reasoner model.Reasoner, threshold float64, timeout time.Duration) *DuplicateDetector {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.75
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DuplicateDetector{
		reasoner:  reasoner,
		threshold: threshold,
		timeout:   timeout,
		emitter:   emit.NewNullEmitter(),
	}
}

// Detect returns a DuplicatePair for every unordered pair judged
// duplicate. The input list is never mutated; the result is freshly
// allocated per run.
func (d *DuplicateDetector) Detect(ctx context.Context, runID string, steps []WorkflowStep) []DuplicatePair {
	var pairs []DuplicatePair
	for i := 0; i < len(steps); i++ {
		for j := i + 1; j < len(steps); j++ {
			if pair, ok := d.judgePair(ctx, runID, steps[i], steps[j]); ok {
				pairs = append(pairs, pair)
			}
		}
	}
	return pairs
}

// judgePair evaluates one pair, preferring the external judgment when a
// reasoner is available.
func (d *DuplicateDetector) judgePair(ctx context.Context, runID string, a, b WorkflowStep) (DuplicatePair, bool) {
	if d.reasoner != nil {
		callCtx, cancel := context.WithTimeout(ctx, d.timeout)
		j, err := d.reasoner.JudgeDuplicates(callCtx, a.Text, b.Text)
		cancel()
		if err == nil {
			if j.AreDuplicates || j.Similarity >= d.threshold {
				rationale := j.Reasoning
				if rationale == "" {
					rationale = "judged duplicate by external reasoner"
				}
				return DuplicatePair{StepA: a, StepB: b, Similarity: j.Similarity, Rationale: rationale}, true
			}
			return DuplicatePair{}, false
		}
		// Fall back to the heuristic for this pair. Never raised to the
		// caller.
		d.metrics.IncrementFallbacks("duplicates", fallbackReason(err))
		d.emitter.Emit(emit.Event{
			RunID:    runID,
			Analyzer: "duplicates",
			Msg:      "fallback",
			Meta:     map[string]interface{}{"reason": fallbackReason(err), "error": err.Error()},
		})
	}

	return heuristicDuplicate(a, b)
}

// heuristicDuplicate is the deterministic keyword-overlap path.
func heuristicDuplicate(a, b WorkflowStep) (DuplicatePair, bool) {
	sim, shared := keywordSimilarity(a.Text, b.Text)
	if sim <= heuristicDuplicateCutoff {
		return DuplicatePair{}, false
	}
	return DuplicatePair{
		StepA:      a,
		StepB:      b,
		Similarity: sim,
		Rationale:  fmt.Sprintf("steps share %d significant keywords (similarity %.2f)", shared, sim),
	}, true
}

// keywordSimilarity computes |intersection| / max(|keywords(A)|,
// |keywords(B)|) over extracted keywords, returning the similarity and the
// intersection size.
func keywordSimilarity(textA, textB string) (float64, int) {
	kwA := extractKeywords(textA)
	kwB := extractKeywords(textB)
	if len(kwA) == 0 || len(kwB) == 0 {
		return 0, 0
	}

	shared := 0
	for kw := range kwA {
		if _, ok := kwB[kw]; ok {
			shared++
		}
	}

	denom := len(kwA)
	if len(kwB) > denom {
		denom = len(kwB)
	}
	return float64(shared) / float64(denom), shared
}

// fallbackReason maps a reasoner failure to a metric/event label.
func fallbackReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	case errors.Is(err, model.ErrMalformedResponse):
		return "malformed"
	default:
		return "transport"
	}
}
