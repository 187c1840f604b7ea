package analyze

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dshills/flowaudit/analyze/model"
)

func TestDuplicateDetectorHeuristic(t *testing.T) {
	detector := NewDuplicateDetector(nil, 0.75, time.Second)

	t.Run("identical texts are flagged with similarity near 1", func(t *testing.T) {
		steps := NormalizeSteps([]string{"Send the invoice to the customer", "Send the invoice to the customer"})
		pairs := detector.Detect(context.Background(), "run-1", steps)
		if len(pairs) != 1 {
			t.Fatalf("expected 1 pair, got %d", len(pairs))
		}
		if pairs[0].Similarity < 0.99 {
			t.Errorf("similarity = %v, want >= 0.99", pairs[0].Similarity)
		}
		if pairs[0].Rationale == "" {
			t.Error("expected a non-empty rationale")
		}
	})

	t.Run("unrelated texts are never flagged", func(t *testing.T) {
		steps := NormalizeSteps([]string{"Send email notification", "Calculate the total amount"})
		pairs := detector.Detect(context.Background(), "run-2", steps)
		if len(pairs) != 0 {
			t.Errorf("expected no pairs, got %d: %+v", len(pairs), pairs)
		}
	})

	t.Run("paraphrases with strong overlap are flagged", func(t *testing.T) {
		steps := NormalizeSteps([]string{
			"Email the final invoice amount",
			"Email the invoice amount",
		})
		pairs := detector.Detect(context.Background(), "run-3", steps)
		if len(pairs) != 1 {
			t.Fatalf("expected 1 pair, got %d", len(pairs))
		}
		if pairs[0].Similarity <= heuristicDuplicateCutoff {
			t.Errorf("similarity = %v, want > %v", pairs[0].Similarity, heuristicDuplicateCutoff)
		}
	})

	t.Run("empty list yields no pairs", func(t *testing.T) {
		pairs := detector.Detect(context.Background(), "run-4", nil)
		if len(pairs) != 0 {
			t.Errorf("expected no pairs, got %d", len(pairs))
		}
	})
}

func TestKeywordSimilarity(t *testing.T) {
	t.Run("identical keyword sets score 1", func(t *testing.T) {
		sim, shared := keywordSimilarity("send invoice customer", "send invoice customer")
		if sim != 1.0 {
			t.Errorf("similarity = %v, want 1.0", sim)
		}
		if shared != 3 {
			t.Errorf("shared = %d, want 3", shared)
		}
	})

	t.Run("disjoint keyword sets score 0", func(t *testing.T) {
		sim, _ := keywordSimilarity("send email", "calculate total")
		if sim != 0 {
			t.Errorf("similarity = %v, want 0", sim)
		}
	})

	t.Run("denominator is the larger set", func(t *testing.T) {
		// {send, invoice} vs {send, invoice, customer, record}: 2 shared / 4.
		sim, _ := keywordSimilarity("send invoice", "send invoice customer record")
		if sim != 0.5 {
			t.Errorf("similarity = %v, want 0.5", sim)
		}
	})

	t.Run("no keywords scores 0", func(t *testing.T) {
		sim, _ := keywordSimilarity("a an to", "send invoice")
		if sim != 0 {
			t.Errorf("similarity = %v, want 0", sim)
		}
	})
}

func TestDuplicateDetectorExternal(t *testing.T) {
	steps := NormalizeSteps([]string{"Send the invoice", "Email the bill"})

	t.Run("accepts external duplicate verdict", func(t *testing.T) {
		mock := &model.MockReasoner{
			DuplicateJudgments: []model.DuplicateJudgment{
				{AreDuplicates: true, Similarity: 0.95, Reasoning: "same action, different channel"},
			},
		}
		detector := NewDuplicateDetector(mock, 0.75, time.Second)
		pairs := detector.Detect(context.Background(), "run-1", steps)
		if len(pairs) != 1 {
			t.Fatalf("expected 1 pair, got %d", len(pairs))
		}
		if pairs[0].Similarity != 0.95 {
			t.Errorf("similarity = %v, want 0.95", pairs[0].Similarity)
		}
		if pairs[0].Rationale != "same action, different channel" {
			t.Errorf("rationale = %q", pairs[0].Rationale)
		}
	})

	t.Run("accepts similarity at the threshold without a verdict", func(t *testing.T) {
		mock := &model.MockReasoner{
			DuplicateJudgments: []model.DuplicateJudgment{
				{AreDuplicates: false, Similarity: 0.75},
			},
		}
		detector := NewDuplicateDetector(mock, 0.75, time.Second)
		pairs := detector.Detect(context.Background(), "run-2", steps)
		if len(pairs) != 1 {
			t.Fatalf("expected 1 pair, got %d", len(pairs))
		}
	})

	t.Run("rejects below-threshold non-duplicates", func(t *testing.T) {
		mock := &model.MockReasoner{
			DuplicateJudgments: []model.DuplicateJudgment{
				{AreDuplicates: false, Similarity: 0.40},
			},
		}
		detector := NewDuplicateDetector(mock, 0.75, time.Second)
		pairs := detector.Detect(context.Background(), "run-3", steps)
		if len(pairs) != 0 {
			t.Errorf("expected no pairs, got %d", len(pairs))
		}
	})

	t.Run("reasoner failure falls back to the heuristic", func(t *testing.T) {
		mock := &model.MockReasoner{Err: errors.New("connection refused")}
		detector := NewDuplicateDetector(mock, 0.75, time.Second)

		identical := NormalizeSteps([]string{"Send the invoice now", "Send the invoice now"})
		pairs := detector.Detect(context.Background(), "run-4", identical)
		if len(pairs) != 1 {
			t.Fatalf("expected heuristic to flag the pair, got %d pairs", len(pairs))
		}
		if mock.CallCount() != 1 {
			t.Errorf("reasoner calls = %d, want 1", mock.CallCount())
		}
	})

	t.Run("fallbacks are counted with a reason label", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics := NewPrometheusMetrics(registry)

		mock := &model.MockReasoner{Err: errors.New("boom")}
		detector := NewDuplicateDetector(mock, 0.75, time.Second)
		detector.metrics = metrics

		detector.Detect(context.Background(), "run-5", steps)

		got := testutil.ToFloat64(metrics.fallbacks.WithLabelValues("duplicates", "transport"))
		if got != 1 {
			t.Errorf("transport fallbacks = %v, want 1", got)
		}
	})
}

func TestFallbackReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"deadline exceeded", context.DeadlineExceeded, "timeout"},
		{"canceled", context.Canceled, "timeout"},
		{"malformed response", model.ErrMalformedResponse, "malformed"},
		{"wrapped malformed response", errors.Join(errors.New("call failed"), model.ErrMalformedResponse), "malformed"},
		{"anything else", errors.New("dial tcp: refused"), "transport"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fallbackReason(tt.err); got != tt.want {
				t.Errorf("fallbackReason(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
