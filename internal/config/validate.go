package config

import (
	"fmt"
	"strings"

	"github.com/dshills/prbatch/internal/review"
)

// ConfigError reports an invalid or missing configuration value.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Message)
}

// Validate checks everything a run needs before any network call is made.
// An unknown analysis level is not an error; it falls back to standard.
func (c *Config) Validate() error {
	if c.PRNumber <= 0 {
		return &ConfigError{Field: "pr", Message: "pull request number is required"}
	}
	if c.Repo == "" {
		return &ConfigError{Field: "repo", Message: "repository is required (owner/repo)"}
	}
	if owner, repo, ok := strings.Cut(c.Repo, "/"); !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return &ConfigError{Field: "repo", Message: fmt.Sprintf("must be in owner/repo form, got %q", c.Repo)}
	}
	if c.GitHubToken == "" {
		return &ConfigError{Field: "GITHUB_TOKEN", Message: "GitHub token is required"}
	}
	if c.AnthropicAPIKey == "" {
		return &ConfigError{Field: "ANTHROPIC_API_KEY", Message: "Anthropic API key is required"}
	}
	if c.MaxFileSizeKB <= 0 {
		return &ConfigError{Field: "maxFileSizeKB", Message: "must be positive"}
	}
	if c.PollInterval <= 0 {
		return &ConfigError{Field: "pollInterval", Message: "must be positive"}
	}
	if c.MaxPolls <= 0 {
		return &ConfigError{Field: "maxPolls", Message: "must be positive"}
	}
	for _, list := range [][]string{c.Include, c.Exclude, c.RedactPaths} {
		if bad, ok := review.ValidatePatterns(list); !ok {
			return &ConfigError{Field: "patterns", Message: fmt.Sprintf("invalid glob %q", bad)}
		}
	}
	return nil
}
