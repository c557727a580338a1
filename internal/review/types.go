package review

// CodeReview is the structured result of parsing a model's free-text
// review. List fields preserve the order items appeared in the response.
type CodeReview struct {
	Summary          string   `json:"summary"`
	Issues           []string `json:"issues"`
	Suggestions      []string `json:"suggestions"`
	SecurityConcerns []string `json:"security_concerns"`
	PerformanceNotes []string `json:"performance_notes"`
	QualityScore     int      `json:"quality_score"`
}

// DefaultQualityScore is used when the response contains no parseable
// score.
const DefaultQualityScore = 7

// fallbackSummary is substituted when the response yields no summary text.
const fallbackSummary = "Code review completed"

// section tags which CodeReview field subsequent lines belong to until the
// next header is seen.
type section int

const (
	sectionNone section = iota
	sectionSummary
	sectionIssues
	sectionSuggestions
	sectionSecurity
	sectionPerformance
	sectionScore
)

func (s section) String() string {
	switch s {
	case sectionSummary:
		return "summary"
	case sectionIssues:
		return "issues"
	case sectionSuggestions:
		return "suggestions"
	case sectionSecurity:
		return "security"
	case sectionPerformance:
		return "performance"
	case sectionScore:
		return "score"
	default:
		return "none"
	}
}
