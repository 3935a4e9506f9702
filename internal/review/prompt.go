package review

import (
	"fmt"
	"strings"
)

// DefaultLanguage is the language analyses are written in unless configured otherwise.
const DefaultLanguage = "English"

// Each depth's checklist extends the one below it.
var (
	basicChecklist = []string{
		"Potential issues or bugs",
		"Style improvements",
	}
	standardChecklist = extend(basicChecklist,
		"Performance considerations",
		"Security concerns",
		"Documentation needs",
	)
	deepChecklist = extend(standardChecklist,
		"Testing coverage and suggestions",
		"Error handling and edge cases",
		"Dependencies and potential issues",
		"Architecture and design patterns",
		"Integration points and API considerations",
	)
)

func extend(base []string, items ...string) []string {
	out := make([]string, 0, len(base)+len(items))
	out = append(out, base...)
	return append(out, items...)
}

type template struct {
	intro     string
	lead      string
	checklist []string
}

var templates = map[Depth]template{
	DepthBasic: {
		intro:     "Please analyze this code change and provide basic feedback in %s:",
		lead:      "Please provide:",
		checklist: basicChecklist,
	},
	DepthStandard: {
		intro:     "Please analyze this code change and provide feedback in %s:",
		lead:      "Please provide:",
		checklist: standardChecklist,
	},
	DepthDeep: {
		intro:     "Please perform a comprehensive analysis of this code change in %s:",
		lead:      "Please provide detailed feedback on:",
		checklist: deepChecklist,
	},
}

// BuildPrompt renders the analysis request for one file in the default language.
func BuildPrompt(fileName, content string, depth Depth) string {
	return BuildPromptInLanguage(fileName, content, depth, DefaultLanguage)
}

// BuildPromptInLanguage renders the analysis request for one file. The file
// content is embedded verbatim; depth only changes the checklist.
func BuildPromptInLanguage(fileName, content string, depth Depth, language string) string {
	tmpl, ok := templates[depth]
	if !ok {
		tmpl = templates[DepthStandard]
	}
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}

	var b strings.Builder
	fmt.Fprintf(&b, tmpl.intro, language)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "File: %s\n", fileName)
	b.WriteString("Changes:\n")
	b.WriteString(content)
	b.WriteString("\n\n")
	b.WriteString(tmpl.lead)
	b.WriteString("\n")
	for i, item := range tmpl.checklist {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	return b.String()
}

const attribution = "*Generated using Claude AI - Review and validate all suggestions*"

// FormatComment renders the pull-request comment body for one analyzed file.
func FormatComment(fileName, analysis string) string {
	return fmt.Sprintf("## AI Analysis for %s\n\n%s\n\n---\n%s", fileName, analysis, attribution)
}
