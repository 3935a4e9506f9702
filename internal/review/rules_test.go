package review

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadRules_Empty(t *testing.T) {
	rules, err := LoadRules("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rules != nil {
		t.Error("expected nil rules for empty path")
	}
}

func TestLoadRules_Valid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	content := `{
		"focus": ["security", "correctness"],
		"required": [
			{"id": "go-errors", "text": "Ensure errors are wrapped with context"}
		]
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules error: %v", err)
	}
	if rules == nil {
		t.Fatal("expected non-nil rules")
	}
	if len(rules.Focus) != 2 || rules.Focus[0] != "security" {
		t.Errorf("Focus = %v", rules.Focus)
	}
	if len(rules.Required) != 1 || rules.Required[0].ID != "go-errors" {
		t.Errorf("Required = %+v", rules.Required)
	}
}

func TestLoadRules_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadRules(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte("{not json"), 0o644)
	if _, err := LoadRules(bad); err == nil || !strings.Contains(err.Error(), "parsing rules file") {
		t.Errorf("err = %v, want parse error", err)
	}

	blank := filepath.Join(dir, "blank.json")
	os.WriteFile(blank, []byte(`{"required":[{"id":"x","text":" "}]}`), 0o644)
	if _, err := LoadRules(blank); err == nil {
		t.Error("expected error for required check without text")
	}
}

func TestRulesSection(t *testing.T) {
	rules := &Rules{
		Focus: []string{"security", "performance"},
		Required: []RequiredCheck{
			{ID: "ctx", Text: "Blocking calls take a context"},
			{Text: "No panics in library code"},
		},
	}
	got := rules.Section()
	for _, want := range []string{
		"Focus areas: security, performance.",
		"Required checks (always evaluate these):",
		"- [ctx] Blocking calls take a context\n",
		"- No panics in library code\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Section() missing %q:\n%s", want, got)
		}
	}
}

func TestRulesApply_Nil(t *testing.T) {
	var rules *Rules
	prompt := BuildPrompt("a.go", "package a\n", DepthBasic)
	if got := rules.Apply(prompt); got != prompt {
		t.Error("nil rules should leave the prompt unchanged")
	}
	if got := (&Rules{}).Apply(prompt); got != prompt {
		t.Error("empty rules should leave the prompt unchanged")
	}
}

func TestRulesApply_AfterChecklist(t *testing.T) {
	rules := &Rules{Focus: []string{"security"}}
	prompt := BuildPrompt("a.go", "package a\n", DepthBasic)
	got := rules.Apply(prompt)
	if !strings.HasPrefix(got, prompt) || !strings.HasSuffix(got, "Prioritize feedback in these areas.\n") {
		t.Errorf("Apply() =\n%s", got)
	}
}
