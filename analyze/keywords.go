package analyze

import "strings"

// keywordSet is a named collection of trigger words evaluated against step
// text. Single words match on word boundaries; phrases (anything containing
// a space or hyphen) and the bare "?" marker match as substrings. All
// matching is case-insensitive; callers pass text through strings.ToLower
// once per step rather than per set.
type keywordSet []string

// matches reports whether any keyword in the set appears in text.
// text must already be lowercased.
func (k keywordSet) matches(text string) bool {
	for _, kw := range k {
		if keywordInText(text, kw) {
			return true
		}
	}
	return false
}

// countDistinct returns how many distinct keywords from the set appear in
// text. Used by scoring formulas that award per-keyword increments.
func (k keywordSet) countDistinct(text string) int {
	n := 0
	for _, kw := range k {
		if keywordInText(text, kw) {
			n++
		}
	}
	return n
}

// lower is a shorthand for strings.ToLower at rule-evaluation sites.
func lower(s string) string { return strings.ToLower(s) }

// keywordInText matches one keyword against lowercased text.
func keywordInText(text, kw string) bool {
	if !isWordKeyword(kw) {
		return strings.Contains(text, kw)
	}
	// Word-boundary scan. A plain substring test would make "if" match
	// "verify" and "end" match "vendor".
	for start := 0; ; {
		idx := strings.Index(text[start:], kw)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(kw)
		if (idx == 0 || !isWordByte(text[idx-1])) && (end == len(text) || !isWordByte(text[end])) {
			return true
		}
		start = idx + 1
	}
}

func isWordKeyword(kw string) bool {
	for i := 0; i < len(kw); i++ {
		if !isWordByte(kw[i]) {
			return false
		}
	}
	return len(kw) > 0
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// Keyword sets shared by the analyzers. Each set is data, not behavior; the
// scoring and rule code consumes them through the generic matcher above so
// the catalogue can change without touching analyzer logic.
var (
	conditionalMarkers = keywordSet{"if", "check", "?"}

	joiningWords   = keywordSet{"and", "then", "also", "while", "during"}
	technicalVerbs = keywordSet{"verify", "validate", "authenticate", "configure", "integrate", "analyze"}

	manualEntryKeywords   = keywordSet{"manual", "enter", "input", "type in", "fill", "approval"}
	reviewKeywords        = keywordSet{"review", "analyze", "investigate", "assess", "evaluate"}
	communicationKeywords = keywordSet{"email", "call", "notify", "contact", "inform", "message"}
	waitKeywords          = keywordSet{"wait", "schedule", "queue", "pending", "hold"}
	calculationKeywords   = keywordSet{"calculate", "compute", "sum", "total", "count"}
	verificationKeywords  = keywordSet{"verify", "confirm", "double-check", "validate", "check"}

	customerKeywords   = keywordSet{"customer", "client", "user", "account holder"}
	financialKeywords  = keywordSet{"payment", "invoice", "refund", "charge", "billing", "money"}
	approvalKeywords   = keywordSet{"approve", "approval", "authorize", "sign off"}
	complianceKeywords = keywordSet{"compliance", "security", "regulation", "policy", "legal"}
	failureKeywords    = keywordSet{"error", "failure", "exception", "incident", "escalate"}
	lowImpactKeywords  = keywordSet{"file", "internal", "log", "record"}

	externalDependencyKeywords = keywordSet{"wait", "third-party", "third party", "external", "vendor"}

	actionKeywords     = keywordSet{"send", "submit", "process"}
	validationKeywords = keywordSet{"verify", "validate", "check"}
	sequenceMarkers    = keywordSet{"then", "after", "once"}
)

// stopWords are dropped during keyword extraction for similarity scoring.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "into": {},
	"that": {}, "this": {}, "then": {}, "when": {}, "your": {}, "their": {},
	"are": {}, "was": {}, "were": {}, "will": {}, "have": {}, "has": {},
	"all": {}, "any": {}, "out": {}, "our": {}, "you": {},
}

// extractKeywords lowercases text, strips punctuation, splits on
// whitespace, and drops short tokens and stop words. The result feeds the
// duplicate-similarity computation.
func extractKeywords(text string) map[string]struct{} {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return ' '
		}
	}, text)

	keywords := make(map[string]struct{})
	for _, token := range strings.Fields(cleaned) {
		if len(token) <= 2 {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		keywords[token] = struct{}{}
	}
	return keywords
}
