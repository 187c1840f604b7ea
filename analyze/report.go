package analyze

import "time"

// DuplicatePair flags two steps that likely describe the same action.
//
// Pairs are produced fresh on every detection run and are never persisted
// by the engine.
type DuplicatePair struct {
	StepA      WorkflowStep `json:"stepA"`
	StepB      WorkflowStep `json:"stepB"`
	Similarity float64      `json:"similarity"` // in [0,1]
	Rationale  string       `json:"rationale"`
}

// StepEfficiency holds the per-step scoring components.
//
// Complexity, ErrorRate, and BusinessImpact are in [0,1]; EstimatedMinutes
// is an absolute estimate. Efficiency and WeightedScore are derived:
//
//	Efficiency    = (1 - Complexity*0.3) * (1 - min(EstimatedMinutes/60,1)*0.2) * (1 - ErrorRate*0.5)
//	WeightedScore = Efficiency * BusinessImpact
type StepEfficiency struct {
	Step             WorkflowStep `json:"step"`
	Complexity       float64      `json:"complexity"`
	EstimatedMinutes float64      `json:"estimatedMinutes"`
	ErrorRate        float64      `json:"errorRate"`
	BusinessImpact   float64      `json:"businessImpact"`
	Efficiency       float64      `json:"efficiency"`
	WeightedScore    float64      `json:"weightedScore"`
}

// EfficiencyReport aggregates per-step efficiency into workflow scores.
// All top-level scores are 0-100.
type EfficiencyReport struct {
	OverallScore            int              `json:"overallScore"`
	ComplexityScore         int              `json:"complexityScore"`
	TimeScore               int              `json:"timeScore"`
	QualityScore            int              `json:"qualityScore"`
	ImpactScore             int              `json:"impactScore"`
	PerStep                 []StepEfficiency `json:"perStep"`
	TotalEstimatedMinutes   float64          `json:"totalEstimatedMinutes"`
	AverageErrorRatePercent float64          `json:"averageErrorRatePercent"`
	Recommendations         []string         `json:"recommendations"`
}

// RiskBucket is the qualitative band for a step's risk score.
type RiskBucket string

const (
	RiskLow    RiskBucket = "low"
	RiskMedium RiskBucket = "medium"
	RiskHigh   RiskBucket = "high"
)

// StepRisk is one cell of the probability x impact risk matrix.
type StepRisk struct {
	Step        WorkflowStep `json:"step"`
	Probability float64      `json:"probability"` // in [0,1]
	Impact      float64      `json:"impact"`      // in [0,1]
	Score       float64      `json:"riskScore"`   // Probability * Impact
	Bucket      RiskBucket   `json:"bucket"`
}

// RiskReport buckets per-step risk and summarizes total exposure (0-100).
type RiskReport struct {
	TotalRiskScore  int        `json:"totalRiskScore"`
	HighRisk        []StepRisk `json:"highRisk"`
	MediumRisk      []StepRisk `json:"mediumRisk"`
	LowRisk         []StepRisk `json:"lowRisk"`
	Recommendations []string   `json:"recommendations"`
}

// OrderingIssue describes a detected step-sequencing violation together
// with a proposed reordering. A nil *OrderingIssue means no violation was
// found, not that the analysis was skipped.
type OrderingIssue struct {
	OriginalSteps  []WorkflowStep `json:"originalSteps"`
	SuggestedSteps []WorkflowStep `json:"suggestedSteps"`

	// Advisories are lightweight dependency notes from the heuristic tier
	// (declared sequencing markers, validation-after-action patterns).
	Advisories []string `json:"advisories,omitempty"`

	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"` // in [0,1]
}

// GapSuggestion is a missing step inferred from a catalogue rule: its
// logical precondition is present in the workflow and the expected
// follow-up is absent.
type GapSuggestion struct {
	// InsertAt is the suggested insertion index into the step list
	// (0 = before the first step, len(steps) = after the last).
	InsertAt int `json:"insertionPosition"`

	SuggestedText string   `json:"suggestedText"`
	Reason        string   `json:"reason"`
	Priority      Priority `json:"priority"`
	RuleID        string   `json:"ruleId"`
}

// PracticeSuggestion is one externally sourced best-practice
// recommendation. Source is always "industry" so downstream consumers can
// distinguish these from gaps derived from the caller's own steps.
type PracticeSuggestion struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// IndustrySuggestions carries the industry classification of the workflow
// and the fixed best-practice list for that industry.
type IndustrySuggestions struct {
	Industry    string               `json:"industry"`
	Suggestions []PracticeSuggestion `json:"suggestions"`
}

// GapReport combines catalogue-derived gaps with industry practices.
type GapReport struct {
	Gaps     []GapSuggestion     `json:"internalGaps"`
	Industry IndustrySuggestions `json:"externalPractices"`
}

// ComprehensiveAnalysis is the orchestrator's combined output.
//
// It is constructed fresh on every Analyze call, never mutated after
// construction, and owned entirely by the caller once returned. The
// ordering analysis is not bundled here; callers request it separately via
// Engine.SuggestOrdering since it is comparatively expensive and usually
// user-triggered.
type ComprehensiveAnalysis struct {
	WorkflowName string         `json:"workflowName"`
	Steps        []WorkflowStep `json:"steps"`
	Timestamp    time.Time      `json:"timestamp"`

	Duplicates []DuplicatePair   `json:"duplicates"`
	Efficiency *EfficiencyReport `json:"efficiency"`
	Risk       *RiskReport       `json:"risk"`
	Gaps       *GapReport        `json:"gaps"`

	// Error records input problems or analyzer faults. Failures never
	// propagate as panics or error returns from Analyze; the report
	// degrades instead (empty sub-reports, Error set).
	Error string `json:"error,omitempty"`
}
