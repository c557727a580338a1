package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/mergelens/mergelens/internal/review"
)

// MarkdownWriter renders a review as the markdown report posted back to
// the merge request.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, rev review.CodeReview) error {
	_, err := io.WriteString(w, Markdown(rev))
	return err
}

// listSections defines the order and headers of the bullet sections.
// Empty sections are omitted entirely rather than rendered as bare
// headers.
var listSections = []struct {
	header string
	items  func(review.CodeReview) []string
}{
	{"## ⚠️ Issues Found", func(r review.CodeReview) []string { return r.Issues }},
	{"## 💡 Suggestions", func(r review.CodeReview) []string { return r.Suggestions }},
	{"## 🔒 Security Concerns", func(r review.CodeReview) []string { return r.SecurityConcerns }},
	{"## ⚡ Performance Notes", func(r review.CodeReview) []string { return r.PerformanceNotes }},
}

// Markdown renders the review report. Output is deterministic: same
// review, same text.
func Markdown(rev review.CodeReview) string {
	var b strings.Builder

	b.WriteString("# 🤖 AI Code Review\n\n")
	b.WriteString("## 📋 Summary\n")
	b.WriteString(rev.Summary)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "## 🎯 Quality Score: %d/10\n\n", rev.QualityScore)

	for _, sec := range listSections {
		items := sec.items(rev)
		if len(items) == 0 {
			continue
		}
		b.WriteString(sec.header)
		b.WriteString("\n")
		for _, item := range items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
		b.WriteString("\n")
	}

	return b.String()
}
