package analyze

import (
	"fmt"
	"time"

	"github.com/dshills/flowaudit/analyze/emit"
	"github.com/dshills/flowaudit/analyze/model"
)

// Option is a functional option for configuring an Engine.
//
// Functional options provide a clean, extensible API for engine
// configuration:
//   - Chainable: engine, _ := analyze.New(analyze.WithReasoner(r), analyze.WithEmitter(e))
//   - Self-documenting: option names describe their purpose.
//   - Optional: only specify the configuration you need.
//
// Example:
//
//	engine, err := analyze.New(
//	    analyze.WithReasoner(anthropic.New(apiKey, "")),
//	    analyze.WithReasonerTimeout(10*time.Second),
//	    analyze.WithMetrics(metrics),
//	)
type Option func(*engineConfig) error

// engineConfig collects options before applying them to an Engine. The
// indirection allows validation and composition of options.
type engineConfig struct {
	reasoner            model.Reasoner
	similarityThreshold float64
	reasonerTimeout     time.Duration
	emitter             emit.Emitter
	metrics             *PrometheusMetrics
	gapRules            []GapRule
	categoryRules       []CategoryRule
}

// WithReasoner configures the external reasoning collaborator.
//
// Default: none. Without a reasoner, duplicate detection is skipped by the
// orchestrator (per the engine contract) and ordering analysis uses the
// local category tables only.
func WithReasoner(r model.Reasoner) Option {
	return func(c *engineConfig) error {
		c.reasoner = r
		return nil
	}
}

// WithSimilarityThreshold sets the similarity at or above which an
// external duplicate judgment is accepted as a duplicate pair.
//
// Default: 0.75. Must be in (0,1].
//
// The heuristic fallback keeps its own fixed cutoff (similarity > 0.7);
// this threshold applies to externally judged similarities.
func WithSimilarityThreshold(t float64) Option {
	return func(c *engineConfig) error {
		if t <= 0 || t > 1 {
			return fmt.Errorf("similarity threshold must be in (0,1], got %v", t)
		}
		c.similarityThreshold = t
		return nil
	}
}

// WithReasonerTimeout bounds every external reasoning call.
//
// Default: 30s. A call exceeding the timeout falls back to the local
// heuristic for that pair/list; the timeout never surfaces as an error.
// Must be positive.
func WithReasonerTimeout(d time.Duration) Option {
	return func(c *engineConfig) error {
		if d <= 0 {
			return fmt.Errorf("reasoner timeout must be positive, got %v", d)
		}
		c.reasonerTimeout = d
		return nil
	}
}

// WithEmitter configures the observability event sink.
//
// Default: emit.NullEmitter (events discarded).
func WithEmitter(e emit.Emitter) Option {
	return func(c *engineConfig) error {
		c.emitter = e
		return nil
	}
}

// WithMetrics configures Prometheus metrics collection.
//
// Default: none (no metrics recorded).
func WithMetrics(m *PrometheusMetrics) Option {
	return func(c *engineConfig) error {
		c.metrics = m
		return nil
	}
}

// WithGapRules replaces the built-in gap catalogue.
//
// Use DefaultGapRules as a starting point to extend or filter:
//
//	rules := append(analyze.DefaultGapRules(), myRule)
//	engine, _ := analyze.New(analyze.WithGapRules(rules))
func WithGapRules(rules []GapRule) Option {
	return func(c *engineConfig) error {
		c.gapRules = rules
		return nil
	}
}

// WithCategoryRules replaces the built-in ordering category tables.
//
// Rule content is deliberately data, not behavior: domains that don't fit
// a deployment (see DefaultCategoryRules for the full set) can be removed
// without code changes.
func WithCategoryRules(rules []CategoryRule) Option {
	return func(c *engineConfig) error {
		c.categoryRules = rules
		return nil
	}
}
