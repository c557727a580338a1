// Package rules merges the bot's built-in review policy with optional
// per-project overrides into one effective rule set.
//
// Overrides live in a JSON file named md.rbot at the repository root. The
// override layer is best-effort: a missing or malformed file degrades to
// an empty layer rather than failing the review.
package rules

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// OverrideFile is the well-known name of the per-project rules file.
const OverrideFile = "md.rbot"

// RuleSet maps rule names to values. The schema is open: keys carry
// advisory policy injected into the review prompt, not executed checks.
type RuleSet map[string]any

// Engine loads bot defaults and project overrides for one repository.
type Engine struct {
	repoPath string
}

// NewEngine creates a rule engine rooted at the given working tree.
func NewEngine(repoPath string) *Engine {
	return &Engine{repoPath: repoPath}
}

// Defaults returns the bot-level rules applied to every project.
func Defaults() RuleSet {
	return RuleSet{
		"max_file_size":       1000, // lines
		"security_checks":     true,
		"performance_checks":  true,
		"code_quality_checks": true,
		"language_specific_rules": map[string][]string{
			"python":     {"check_imports", "check_docstrings"},
			"javascript": {"check_eslint", "check_async"},
			"java":       {"check_annotations", "check_exceptions"},
			"go":         {"check_errors_wrapped", "check_context_propagation"},
		},
	}
}

// Effective returns defaults merged with project overrides. Override keys
// replace default keys wholesale; unknown override keys are kept.
func (e *Engine) Effective() RuleSet {
	merged := Defaults()
	for k, v := range e.loadOverrides() {
		merged[k] = v
	}
	return merged
}

// loadOverrides reads the md.rbot file. Absent or malformed files yield an
// empty layer, never an error.
func (e *Engine) loadOverrides() RuleSet {
	data, err := os.ReadFile(filepath.Join(e.repoPath, OverrideFile))
	if err != nil {
		return RuleSet{}
	}
	var overrides RuleSet
	if err := json.Unmarshal(data, &overrides); err != nil {
		return RuleSet{}
	}
	if overrides == nil {
		return RuleSet{}
	}
	return overrides
}
