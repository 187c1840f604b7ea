package analyze

import "fmt"

// Risk bucket thresholds over riskScore = probability * impact.
const (
	highRiskThreshold   = 0.6
	mediumRiskThreshold = 0.3
)

// RiskAnalyzer builds a probability x impact risk matrix over the step
// list.
//
// Probability rises with manual data entry, conditional branching, and
// external dependencies; impact rises with financial, customer, and
// compliance exposure. Each step's riskScore is the product, bucketed into
// low/medium/high bands.
type RiskAnalyzer struct{}

// NewRiskAnalyzer creates a RiskAnalyzer.
func NewRiskAnalyzer() *RiskAnalyzer {
	return &RiskAnalyzer{}
}

// Analyze produces a RiskReport. An empty list yields an empty report with
// a zero total score (never NaN); Analyze never fails.
func (r *RiskAnalyzer) Analyze(steps []WorkflowStep) *RiskReport {
	report := &RiskReport{
		HighRisk:        []StepRisk{},
		MediumRisk:      []StepRisk{},
		LowRisk:         []StepRisk{},
		Recommendations: []string{},
	}
	if len(steps) == 0 {
		return report
	}

	var sum float64
	for _, step := range steps {
		sr := scoreRisk(step)
		sum += sr.Score

		switch sr.Bucket {
		case RiskHigh:
			report.HighRisk = append(report.HighRisk, sr)
		case RiskMedium:
			report.MediumRisk = append(report.MediumRisk, sr)
		default:
			report.LowRisk = append(report.LowRisk, sr)
		}
	}

	report.TotalRiskScore = roundScore(100 * sum / float64(len(steps)))
	report.Recommendations = riskRecommendations(report)
	return report
}

// scoreRisk computes the risk matrix cell for one step.
func scoreRisk(step WorkflowStep) StepRisk {
	text := lower(step.Text)

	probability := 0.20
	if manualEntryKeywords.matches(text) {
		probability += 0.30
	}
	if conditionalMarkers.matches(text) {
		probability += 0.20
	}
	if externalDependencyKeywords.matches(text) {
		probability += 0.30
	}
	probability = clampUnit(probability)

	impact := 0.30
	if financialKeywords.matches(text) {
		impact += 0.40
	}
	if customerKeywords.matches(text) {
		impact += 0.30
	}
	if complianceKeywords.matches(text) {
		impact += 0.40
	}
	impact = clampUnit(impact)

	score := probability * impact
	return StepRisk{
		Step:        step,
		Probability: probability,
		Impact:      impact,
		Score:       score,
		Bucket:      bucketFor(score),
	}
}

// bucketFor assigns the qualitative band for a risk score.
func bucketFor(score float64) RiskBucket {
	switch {
	case score > highRiskThreshold:
		return RiskHigh
	case score > mediumRiskThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

func riskRecommendations(report *RiskReport) []string {
	recs := []string{}
	if len(report.HighRisk) > 0 {
		recs = append(recs, fmt.Sprintf(
			"Create mitigation plans for %d high-risk step(s)", len(report.HighRisk)))
	}
	if len(report.MediumRisk) > 2 {
		recs = append(recs, "Add validation or approval steps to reduce medium-risk exposure")
	}
	return recs
}
