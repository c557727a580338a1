package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func writeOverrides(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, OverrideFile), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestEffective_NoOverrideFile(t *testing.T) {
	e := NewEngine(t.TempDir())
	got := e.Effective()
	want := Defaults()
	if len(got) != len(want) {
		t.Fatalf("Effective() has %d keys, want %d", len(got), len(want))
	}
	if got["max_file_size"] != 1000 {
		t.Errorf("max_file_size = %v, want 1000", got["max_file_size"])
	}
	if got["security_checks"] != true {
		t.Errorf("security_checks = %v, want true", got["security_checks"])
	}
}

func TestEffective_OverridePrecedence(t *testing.T) {
	dir := t.TempDir()
	writeOverrides(t, dir, `{"max_file_size": 250, "security_checks": false}`)

	got := NewEngine(dir).Effective()
	// JSON numbers decode as float64
	if got["max_file_size"] != float64(250) {
		t.Errorf("max_file_size = %v, want 250", got["max_file_size"])
	}
	if got["security_checks"] != false {
		t.Errorf("security_checks = %v, want false", got["security_checks"])
	}
	// Untouched defaults survive
	if got["performance_checks"] != true {
		t.Errorf("performance_checks = %v, want true", got["performance_checks"])
	}
}

func TestEffective_UnknownKeysMergedIn(t *testing.T) {
	dir := t.TempDir()
	writeOverrides(t, dir, `{"team_conventions": ["no-panics", "wrap-errors"]}`)

	got := NewEngine(dir).Effective()
	v, ok := got["team_conventions"]
	if !ok {
		t.Fatal("expected unknown override key to be merged in")
	}
	list, ok := v.([]any)
	if !ok || len(list) != 2 {
		t.Errorf("team_conventions = %v, want 2-element list", v)
	}
}

func TestEffective_MalformedOverrides(t *testing.T) {
	dir := t.TempDir()
	writeOverrides(t, dir, `{not json`)

	got := NewEngine(dir).Effective()
	want := Defaults()
	if len(got) != len(want) {
		t.Errorf("malformed overrides corrupted rule set: %d keys, want %d", len(got), len(want))
	}
	if got["max_file_size"] != 1000 {
		t.Errorf("max_file_size = %v, want default 1000", got["max_file_size"])
	}
}

func TestEffective_NullOverrides(t *testing.T) {
	dir := t.TempDir()
	writeOverrides(t, dir, `null`)

	got := NewEngine(dir).Effective()
	if len(got) != len(Defaults()) {
		t.Errorf("null overrides should degrade to defaults")
	}
}

func TestEffective_ShallowMerge(t *testing.T) {
	dir := t.TempDir()
	// A nested mapping override replaces the default wholesale.
	writeOverrides(t, dir, `{"language_specific_rules": {"rust": ["check_unsafe"]}}`)

	got := NewEngine(dir).Effective()
	m, ok := got["language_specific_rules"].(map[string]any)
	if !ok {
		t.Fatalf("language_specific_rules = %T, want map", got["language_specific_rules"])
	}
	if _, ok := m["python"]; ok {
		t.Error("shallow merge must not retain default nested keys")
	}
	if _, ok := m["rust"]; !ok {
		t.Error("override nested key missing")
	}
}
