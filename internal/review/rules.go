package review

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Rules is a team rules pack that extends every analysis prompt.
type Rules struct {
	Focus    []string        `json:"focus,omitempty"`
	Required []RequiredCheck `json:"required,omitempty"`
}

// RequiredCheck is a policy check that should always be evaluated.
type RequiredCheck struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// LoadRules loads a rules file from disk. Returns nil Rules and nil error if path is empty.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	var rules Rules
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}
	for i, req := range rules.Required {
		if strings.TrimSpace(req.Text) == "" {
			return nil, fmt.Errorf("parsing rules file: required check %d has no text", i+1)
		}
	}
	return &rules, nil
}

// Section returns the prompt instructions derived from the rules, or "" for
// nil or empty rules.
func (r *Rules) Section() string {
	if r == nil {
		return ""
	}

	var b strings.Builder

	if len(r.Focus) > 0 {
		fmt.Fprintf(&b, "\nFocus areas: %s. Prioritize feedback in these areas.\n",
			strings.Join(r.Focus, ", "))
	}

	if len(r.Required) > 0 {
		b.WriteString("\nRequired checks (always evaluate these):\n")
		for _, req := range r.Required {
			if req.ID == "" {
				fmt.Fprintf(&b, "- %s\n", req.Text)
				continue
			}
			fmt.Fprintf(&b, "- [%s] %s\n", req.ID, req.Text)
		}
	}

	return b.String()
}

// Apply appends the rules section to prompt.
func (r *Rules) Apply(prompt string) string {
	return prompt + r.Section()
}
