package review

import (
	"strings"
	"testing"
)

func TestBuildPrompt_EmbedsContent(t *testing.T) {
	content := "func main() {\n\tfmt.Println(\"hi\")\n}\n"
	prompt := BuildPrompt("cmd/main.go", content, DepthStandard)

	if !strings.Contains(prompt, "File: cmd/main.go\n") {
		t.Error("prompt should name the file")
	}
	if !strings.Contains(prompt, "Changes:\n"+content) {
		t.Error("prompt should embed the content verbatim")
	}
	if !strings.Contains(prompt, "in English") {
		t.Error("prompt should default to English")
	}
}

func TestBuildPrompt_ChecklistGrowsWithDepth(t *testing.T) {
	basic := BuildPrompt("a.go", "x", DepthBasic)
	standard := BuildPrompt("a.go", "x", DepthStandard)
	deep := BuildPrompt("a.go", "x", DepthDeep)

	for _, item := range basicChecklist {
		if !strings.Contains(standard, item) || !strings.Contains(deep, item) {
			t.Errorf("basic item %q missing from a deeper prompt", item)
		}
	}
	for _, item := range standardChecklist {
		if !strings.Contains(deep, item) {
			t.Errorf("standard item %q missing from deep prompt", item)
		}
	}
	if strings.Contains(basic, "Security concerns") {
		t.Error("basic prompt should not ask about security")
	}
	if strings.Contains(standard, "Architecture and design patterns") {
		t.Error("standard prompt should not ask about architecture")
	}
	if !strings.Contains(deep, "comprehensive analysis") {
		t.Error("deep prompt should ask for a comprehensive analysis")
	}
	if !strings.Contains(deep, "10. Integration points") {
		t.Errorf("deep checklist should be numbered through 10:\n%s", deep)
	}
}

func TestBuildPromptInLanguage(t *testing.T) {
	prompt := BuildPromptInLanguage("a.go", "x", DepthBasic, "Japanese")
	if !strings.Contains(prompt, "basic feedback in Japanese") {
		t.Errorf("prompt should request Japanese:\n%s", prompt)
	}
	if p := BuildPromptInLanguage("a.go", "x", DepthBasic, "  "); !strings.Contains(p, "in English") {
		t.Error("blank language should fall back to English")
	}
}

func TestBuildPrompt_UnknownDepth(t *testing.T) {
	got := BuildPrompt("a.go", "x", Depth("extreme"))
	if got != BuildPrompt("a.go", "x", DepthStandard) {
		t.Error("unknown depth should render the standard prompt")
	}
}

func TestFormatComment(t *testing.T) {
	got := FormatComment("src/app.ts", "Looks fine.")
	want := "## AI Analysis for src/app.ts\n\nLooks fine.\n\n---\n*Generated using Claude AI - Review and validate all suggestions*"
	if got != want {
		t.Errorf("FormatComment =\n%q\nwant\n%q", got, want)
	}
}
