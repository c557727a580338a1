package review

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mergelens/mergelens/internal/rules"
)

// responseContract tells the model exactly how to format its answer so the
// section scanner in Parse can pick it apart.
const responseContract = `IMPORTANT: You MUST format your response EXACTLY as follows:

## Summary
[Provide a detailed summary of the changes and overall assessment]

## Issues
- [List specific issues found, one per line starting with -]

## Suggestions
- [List actionable suggestions, one per line starting with -]

## Security
- [List security concerns, one per line starting with -]

## Performance
- [List performance notes, one per line starting with -]

## Quality Score
[Provide a number from 1-10]`

// SystemPrompt builds the reviewer instructions, embedding the effective
// rule set and any gathered repository context.
func SystemPrompt(ruleSet rules.RuleSet, extraContext string) string {
	rulesJSON, err := json.MarshalIndent(ruleSet, "", "  ")
	if err != nil {
		rulesJSON = []byte("{}")
	}

	var b strings.Builder
	b.WriteString(`You are an expert code reviewer with extensive experience in software engineering.
Review the provided code changes with focus on:

1. **Correctness**: Logic errors, edge cases, potential bugs
2. **Security**: Vulnerabilities, unsafe practices, data exposure
3. **Performance**: Efficiency, resource usage, scalability
4. **Code Quality**: Readability, maintainability, best practices
5. **Architecture**: Design patterns, separation of concerns

`)
	fmt.Fprintf(&b, "Rules to apply:\n%s\n", rulesJSON)
	if extraContext != "" {
		fmt.Fprintf(&b, "\nAdditional context:\n%s\n", extraContext)
	}
	b.WriteString("\n")
	b.WriteString(responseContract)
	return b.String()
}

// UserPrompt wraps the diff in a fenced block for review.
func UserPrompt(diff string) string {
	var b strings.Builder
	b.WriteString("Please review the following code changes:\n\n")
	b.WriteString("```diff\n")
	b.WriteString(diff)
	if !strings.HasSuffix(diff, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n")
	return b.String()
}
