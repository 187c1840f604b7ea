package analyze

import (
	"fmt"
	"math"
)

// EfficiencyScorer computes per-step and aggregate efficiency scores.
//
// Scoring is fully deterministic and keyword-driven: each step earns a
// complexity estimate, a time estimate, an error-rate estimate, and a
// business-impact weight, which combine into a weighted efficiency score.
// The workflow's overall score is the impact-weighted average, so
// inefficiency in high-impact steps hurts more than inefficiency in
// housekeeping steps.
type EfficiencyScorer struct{}

// NewEfficiencyScorer creates an EfficiencyScorer.
func NewEfficiencyScorer() *EfficiencyScorer {
	return &EfficiencyScorer{}
}

// Score produces an EfficiencyReport for the step list. An empty list
// yields an all-zero report deterministically; Score never fails.
func (e *EfficiencyScorer) Score(steps []WorkflowStep) *EfficiencyReport {
	if len(steps) == 0 {
		return &EfficiencyReport{Recommendations: []string{}}
	}

	perStep := make([]StepEfficiency, len(steps))
	var (
		sumComplexity float64
		sumMinutes    float64
		sumErrorRate  float64
		sumImpact     float64
		sumWeighted   float64
	)

	for i, step := range steps {
		s := scoreStep(step)
		perStep[i] = s

		sumComplexity += s.Complexity
		sumMinutes += s.EstimatedMinutes
		sumErrorRate += s.ErrorRate
		sumImpact += s.BusinessImpact
		sumWeighted += s.WeightedScore
	}

	n := float64(len(steps))
	overall := 0
	if sumImpact > 0 {
		overall = roundScore(100 * sumWeighted / sumImpact)
	}

	return &EfficiencyReport{
		OverallScore:            overall,
		ComplexityScore:         roundScore(100 * (1 - sumComplexity/n)),
		TimeScore:               roundScore(math.Max(0, 100-2*(sumMinutes/n))),
		QualityScore:            roundScore(100 * (1 - sumErrorRate/n)),
		ImpactScore:             roundScore(100 * (sumImpact / n)),
		PerStep:                 perStep,
		TotalEstimatedMinutes:   sumMinutes,
		AverageErrorRatePercent: 100 * sumErrorRate / n,
		Recommendations:         efficiencyRecommendations(perStep, overall),
	}
}

// scoreStep computes all scoring components for one step.
func scoreStep(step WorkflowStep) StepEfficiency {
	text := lower(step.Text)

	complexity := stepComplexity(text)
	minutes := stepMinutes(text, complexity)
	errorRate := stepErrorRate(text, complexity)
	impact := stepImpact(step, text)

	efficiency := (1 - complexity*0.3) *
		(1 - math.Min(minutes/60, 1)*0.2) *
		(1 - errorRate*0.5)

	return StepEfficiency{
		Step:             step,
		Complexity:       complexity,
		EstimatedMinutes: minutes,
		ErrorRate:        errorRate,
		BusinessImpact:   impact,
		Efficiency:       efficiency,
		WeightedScore:    efficiency * impact,
	}
}

// stepComplexity starts at 0.30 and accumulates for conditional language,
// joining words, technical verbs, and long text. Clamped to [0,1].
func stepComplexity(text string) float64 {
	c := 0.30
	if conditionalMarkers.matches(text) {
		c += 0.30
	}
	c += 0.10 * float64(joiningWords.countDistinct(text))
	c += 0.05 * float64(technicalVerbs.countDistinct(text))
	if len(text) > 50 {
		c += 0.10
	}
	if len(text) > 100 {
		c += 0.10
	}
	return clampUnit(c)
}

// stepMinutes estimates execution time from activity keywords, plus a
// complexity surcharge.
func stepMinutes(text string, complexity float64) float64 {
	m := 2.0
	if conditionalMarkers.matches(text) {
		m += 3
	}
	if manualEntryKeywords.matches(text) {
		m += 5
	}
	if reviewKeywords.matches(text) {
		m += 10
	}
	if communicationKeywords.matches(text) {
		m += 5
	}
	if waitKeywords.matches(text) {
		m += 15
	}
	return m + complexity*10
}

// stepErrorRate estimates the chance of a mistake in this step.
// Clamped to [0,0.5].
func stepErrorRate(text string, complexity float64) float64 {
	r := 0.05
	if manualEntryKeywords.matches(text) {
		r += 0.15
	}
	if calculationKeywords.matches(text) {
		r += 0.10
	}
	if !verificationKeywords.matches(text) {
		r += 0.05
	}
	r += complexity * 0.1
	if keywordInText(text, "manual") {
		r += 0.10
	}
	if r > 0.5 {
		return 0.5
	}
	return r
}

// stepImpact weighs how much this step matters to the business outcome.
//
// Start/end steps are pinned high (0.90): a broken entry or exit breaks
// the whole workflow. Steps matching only the low-impact set (filing,
// internal logging, record keeping) are forced down to 0.20 regardless of
// accumulated value.
func stepImpact(step WorkflowStep, text string) float64 {
	impact := 0.30
	if step.Kind == StepStart || step.Kind == StepEnd {
		impact = 0.90
	}

	highImpact := false
	if step.Kind == StepDecision || conditionalMarkers.matches(text) {
		impact += 0.25
		highImpact = true
	}
	if customerKeywords.matches(text) {
		impact += 0.35
		highImpact = true
	}
	if financialKeywords.matches(text) {
		impact += 0.35
		highImpact = true
	}
	if approvalKeywords.matches(text) {
		impact += 0.20
		highImpact = true
	}
	if complianceKeywords.matches(text) {
		impact += 0.30
		highImpact = true
	}
	if failureKeywords.matches(text) {
		impact += 0.15
		highImpact = true
	}

	if !highImpact && lowImpactKeywords.matches(text) {
		return 0.20
	}
	return clampUnit(impact)
}

// efficiencyRecommendations generates threshold-driven recommendation
// text for the report.
func efficiencyRecommendations(perStep []StepEfficiency, overall int) []string {
	recs := []string{}

	complexCount := 0
	errorProneCount := 0
	slowCount := 0
	for _, s := range perStep {
		if s.Complexity > 0.7 {
			complexCount++
		}
		if s.ErrorRate > 0.2 {
			errorProneCount++
		}
		if s.EstimatedMinutes > 15 {
			slowCount++
		}
	}

	if complexCount > 0 {
		recs = append(recs, fmt.Sprintf("Break down %d highly complex step(s) into simpler actions", complexCount))
	}
	if errorProneCount > 0 {
		recs = append(recs, fmt.Sprintf("Add verification to %d error-prone step(s)", errorProneCount))
	}
	if slowCount > 0 {
		recs = append(recs, fmt.Sprintf("Automate or parallelize %d time-consuming step(s)", slowCount))
	}

	switch {
	case overall < 60:
		recs = append(recs, "Overall efficiency is low; the workflow needs a redesign")
	case overall < 80:
		recs = append(recs, "There is room for improvement in overall efficiency")
	}

	return recs
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func roundScore(v float64) int {
	return int(math.Round(v))
}
