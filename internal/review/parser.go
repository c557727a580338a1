package review

import (
	"strconv"
	"strings"
)

// Header spellings the model is known to use for each section. A line
// enters a section if it starts with one of the markdown variants or
// contains the natural-language phrase anywhere.
var headerVariants = []struct {
	sec      section
	prefixes []string
	phrase   string
}{
	{sectionSummary, []string{"## Summary", "**Summary**", "### Summary"}, "Summary of Changes"},
	{sectionIssues, []string{"## Issues", "**Issues**", "### Issues"}, "Specific Issues Found"},
	{sectionSuggestions, []string{"## Suggestions", "**Suggestions**", "### Suggestions"}, "Actionable Suggestions"},
	{sectionSecurity, []string{"## Security", "**Security**", "### Security"}, "Security Concerns"},
	{sectionPerformance, []string{"## Performance", "**Performance**", "### Performance"}, "Performance Notes"},
	{sectionScore, []string{"## Quality Score", "**Quality Score**", "### Quality Score"}, "Overall Quality Score"},
}

// Parse converts free-text model output into a CodeReview. It is a single
// left-to-right scan over lines with one piece of state: the current
// section. Parse never fails; unrecognized content is dropped, a missing
// score defaults, and a missing summary gets a fixed fallback.
func Parse(text string) CodeReview {
	r := CodeReview{
		Issues:           []string{},
		Suggestions:      []string{},
		SecurityConcerns: []string{},
		PerformanceNotes: []string{},
		QualityScore:     DefaultQualityScore,
	}

	var summary strings.Builder
	cur := sectionNone

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		if sec, ok := headerSection(line); ok {
			cur = sec
			continue
		}

		if item, ok := bulletItem(line); ok && isListSection(cur) {
			switch cur {
			case sectionIssues:
				r.Issues = append(r.Issues, item)
			case sectionSuggestions:
				r.Suggestions = append(r.Suggestions, item)
			case sectionSecurity:
				r.SecurityConcerns = append(r.SecurityConcerns, item)
			case sectionPerformance:
				r.PerformanceNotes = append(r.PerformanceNotes, item)
			}
			continue
		}

		if cur == sectionSummary && line != "" && !strings.HasPrefix(line, "#") {
			summary.WriteString(line)
			summary.WriteString(" ")
			continue
		}

		if cur == sectionScore {
			// Last successfully parsed score wins; failures are swallowed.
			if n, ok := parseScore(line); ok {
				r.QualityScore = n
			}
		}
	}

	r.Summary = strings.TrimSpace(summary.String())
	if r.Summary == "" {
		r.Summary = fallbackSummary
	}
	return r
}

// headerSection classifies a line as a section header.
func headerSection(line string) (section, bool) {
	for _, h := range headerVariants {
		for _, p := range h.prefixes {
			if strings.HasPrefix(line, p) {
				return h.sec, true
			}
		}
		if strings.Contains(line, h.phrase) {
			return h.sec, true
		}
	}
	return sectionNone, false
}

func isListSection(s section) bool {
	switch s {
	case sectionIssues, sectionSuggestions, sectionSecurity, sectionPerformance:
		return true
	}
	return false
}

// bulletItem strips a dash or numbered list marker. Numbered markers only
// go up to 5, matching the formats the model emits.
func bulletItem(line string) (string, bool) {
	if strings.HasPrefix(line, "- ") {
		return strings.TrimSpace(line[2:]), true
	}
	if len(line) >= 3 && line[0] >= '1' && line[0] <= '5' && line[1] == '.' && line[2] == ' ' {
		return strings.TrimSpace(line[3:]), true
	}
	return "", false
}

// parseScore extracts a numeric score from the formats seen in responses:
// a bare number, "8/10", "Score: 6", or "Score: 9/10".
func parseScore(line string) (int, bool) {
	part := line
	if i := strings.Index(part, "Score:"); i >= 0 {
		part = part[i+len("Score:"):]
	}
	part = strings.TrimSpace(part)
	if j := strings.Index(part, "/"); j >= 0 {
		part = strings.TrimSpace(part[:j])
	}
	n, err := strconv.Atoi(part)
	if err != nil {
		return 0, false
	}
	return n, true
}
