package analyze

// industryProfile is one bucket in the industry classification vote: the
// keywords that vote for it and the fixed best-practice suggestions
// returned when it wins.
type industryProfile struct {
	name      string
	keywords  keywordSet
	practices []string
}

// industryProfiles are evaluated in order; ties keep this order, and a
// workflow matching nothing classifies as "general".
var industryProfiles = []industryProfile{
	{
		name:     "ecommerce",
		keywords: keywordSet{"order", "cart", "shipping", "product", "checkout", "inventory"},
		practices: []string{
			"Send an order confirmation immediately after checkout",
			"Validate inventory availability before accepting payment",
			"Provide shipment tracking to the customer",
			"Define a returns and refund path up front",
		},
	},
	{
		name:     "healthcare",
		keywords: keywordSet{"patient", "medical", "doctor", "treatment", "diagnosis", "prescription"},
		practices: []string{
			"Verify patient identity before any treatment step",
			"Document consent before procedures",
			"Double-check medication dosages against records",
			"Keep an auditable trail of every clinical decision",
		},
	},
	{
		name:     "finance",
		keywords: keywordSet{"payment", "invoice", "account", "transaction", "loan", "audit"},
		practices: []string{
			"Require dual authorization for transactions above a threshold",
			"Reconcile accounts at the end of the process",
			"Log every transaction for audit purposes",
			"Verify counterparty details before transferring funds",
		},
	},
	{
		name:     "hr",
		keywords: keywordSet{"employee", "onboarding", "hiring", "interview", "payroll", "candidate"},
		practices: []string{
			"Confirm background checks complete before the start date",
			"Provision system access on day one",
			"Schedule a 30-day check-in with the new hire",
			"Collect signed policy acknowledgments",
		},
	},
	{
		name:     "customer-support",
		keywords: keywordSet{"ticket", "support", "complaint", "resolution", "escalate", "sla"},
		practices: []string{
			"Acknowledge the ticket within the SLA window",
			"Capture the resolution in the knowledge base",
			"Confirm with the customer before closing the ticket",
			"Escalate when resolution exceeds the target time",
		},
	},
}

var generalPractices = []string{
	"State the trigger that starts the process",
	"Define who is responsible for each step",
	"Add a verification step after manual data handling",
	"State the condition that marks the process complete",
}

// GapDetector infers missing steps from the presence of their logical
// preconditions and the absence of their expected follow-ups.
//
// Detection has two sources, kept distinct in the report:
//   - Internal gaps: the declarative rule catalogue (see DefaultGapRules),
//     evaluated order-independently; matching rules fire independently and
//     sort by priority.
//   - External practices: the workflow is classified into one industry
//     bucket by keyword vote, and that bucket's fixed best-practice list
//     is returned tagged as externally sourced so downstream UI never
//     conflates it with gaps derived from the caller's own steps.
//
// Detect never fails; an empty list yields an empty report.
type GapDetector struct {
	rules []GapRule
}

// NewGapDetector creates a detector over the given catalogue (nil uses
// DefaultGapRules).
func NewGapDetector(rules []GapRule) *GapDetector {
	if rules == nil {
		rules = DefaultGapRules()
	}
	return &GapDetector{rules: rules}
}

// Detect evaluates the catalogue and classifies the industry.
func (g *GapDetector) Detect(steps []WorkflowStep) *GapReport {
	report := &GapReport{
		Gaps: []GapSuggestion{},
		Industry: IndustrySuggestions{
			Industry:    "general",
			Suggestions: []PracticeSuggestion{},
		},
	}
	if len(steps) == 0 {
		return report
	}

	report.Gaps = evaluateGapRules(g.rules, steps)
	report.Industry = classifyIndustry(steps)
	return report
}

// classifyIndustry votes each profile's keywords against the step corpus
// and returns the winner's practices. Zero votes everywhere classifies as
// general.
func classifyIndustry(steps []WorkflowStep) IndustrySuggestions {
	corpus := joinedText(steps)

	best := -1
	bestVotes := 0
	for i, profile := range industryProfiles {
		votes := profile.keywords.countDistinct(corpus)
		if votes > bestVotes {
			best = i
			bestVotes = votes
		}
	}

	name := "general"
	practices := generalPractices
	if best >= 0 {
		name = industryProfiles[best].name
		practices = industryProfiles[best].practices
	}

	suggestions := make([]PracticeSuggestion, len(practices))
	for i, text := range practices {
		suggestions[i] = PracticeSuggestion{Text: text, Source: "industry"}
	}
	return IndustrySuggestions{Industry: name, Suggestions: suggestions}
}
