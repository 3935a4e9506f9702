package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/prbatch/internal/batch"
	"github.com/dshills/prbatch/internal/config"
	"github.com/dshills/prbatch/internal/gitctx"
	"github.com/dshills/prbatch/internal/github"
	"github.com/dshills/prbatch/internal/output"
	"github.com/dshills/prbatch/internal/providers"
	"github.com/dshills/prbatch/internal/redact"
	"github.com/dshills/prbatch/internal/review"
)

var (
	flagFormat   string
	flagNoRedact bool
)

// overrideFlags maps review flags onto config keys. Only flags the user set
// become overrides.
var overrideFlags = map[string]string{
	"pr":               "prNumber",
	"repo":             "repo",
	"token":            "githubToken",
	"key":              "anthropicApiKey",
	"level":            "analysisLevel",
	"model":            "model",
	"language":         "language",
	"file-patterns":    "include",
	"exclude-patterns": "exclude",
	"max-files":        "maxFiles",
	"max-size":         "maxFileSizeKB",
	"threshold":        "commentThreshold",
	"output":           "output",
	"write-pr":         "writePullRequest",
	"max-tokens":       "maxTokens",
	"poll-interval":    "pollInterval",
	"max-polls":        "maxPolls",
	"github-api-url":   "githubApiUrl",
	"rules":            "rulesFile",
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Analyze the changed files of a pull request",
	Long: `Analyze the changed files of a pull request in one message batch.

Files are filtered by the include/exclude globs, ordered by the number of
changed lines, and capped at --max-files. Results are posted as PR comments
with --write-pr and written as Markdown under --output when set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides(cmd))
		if err != nil {
			return err
		}
		logger := newLogger(cmd.ErrOrStderr(), flagVerbose)
		summary, err := runReview(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		return output.WriteSummary(cmd.OutOrStdout(), summary, flagFormat)
	},
}

func init() {
	f := reviewCmd.Flags()
	f.IntP("pr", "p", 0, "Pull request number")
	f.StringP("repo", "r", "", "Repository as owner/repo (default: from git remote)")
	f.StringP("token", "t", "", "GitHub token (default: $GITHUB_TOKEN)")
	f.StringP("key", "k", "", "Anthropic API key (default: $ANTHROPIC_API_KEY)")
	f.StringP("level", "l", "", "Analysis level (basic, standard, deep)")
	f.StringP("model", "m", "", "Claude model to use")
	f.String("language", "", "Language the analysis is written in")
	f.String("file-patterns", "", "File patterns to include (comma-separated)")
	f.String("exclude-patterns", "", "File patterns to exclude (comma-separated)")
	f.Int("max-files", 0, "Maximum files to analyze (negative for no limit)")
	f.Int("max-size", 0, "Maximum file size in KB")
	f.Float64("threshold", 0, "Comment confidence threshold (unused by batch analysis)")
	f.StringP("output", "o", "", "Directory to write one Markdown file per analysis")
	f.Bool("write-pr", false, "Post analyses as pull request comments")
	f.Int("max-tokens", 0, "Maximum response tokens per file")
	f.Int("poll-interval", 0, "Initial wait between status checks, in seconds")
	f.Int("max-polls", 0, "Maximum number of status checks")
	f.String("github-api-url", "", "GitHub API base URL for GitHub Enterprise")
	f.String("rules", "", "JSON rules file adding focus areas and required checks to every prompt")
	f.StringVar(&flagFormat, "format", "table", "Summary format (table, json)")
	f.BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
}

func buildOverrides(cmd *cobra.Command) map[string]string {
	m := make(map[string]string)
	for name, key := range overrideFlags {
		if cmd.Flags().Changed(name) {
			m[key] = cmd.Flags().Lookup(name).Value.String()
		}
	}
	if flagNoRedact {
		m["redactSecrets"] = "false"
	}
	return m
}

// Constructors for the pipeline's collaborators; tests replace them.
var (
	newPlatform = func(ctx context.Context, cfg config.Config, logger *slog.Logger) (review.Platform, error) {
		return github.NewClient(ctx, cfg.GitHubToken, cfg.GitHubAPIURL, logger)
	}
	newProvider = func(cfg config.Config) (providers.BatchProvider, error) {
		return providers.New("anthropic", cfg.AnthropicAPIKey)
	}
)

// runReview validates cfg, wires the collaborators, and runs one pipeline.
func runReview(ctx context.Context, cfg config.Config, logger *slog.Logger) (*review.Summary, error) {
	if cfg.Repo == "" {
		owner, repo, err := gitctx.DetectRepo("")
		if err != nil {
			return nil, fmt.Errorf("%w; use --repo to specify it", err)
		}
		cfg.Repo = owner + "/" + repo
		logger.Debug("detected repository", "repo", cfg.Repo)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	owner, repo, err := github.SplitRepo(cfg.Repo)
	if err != nil {
		return nil, err
	}
	if cfg.ActionMode {
		logger.Info("running as a GitHub Action", "repo", cfg.Repo, "pr", cfg.PRNumber, "writePullRequest", cfg.WritePullRequest)
	}
	depth := review.ParseDepth(cfg.AnalysisLevel)
	if !review.ValidDepth(cfg.AnalysisLevel) {
		logger.Warn("unknown analysis level, using standard", "level", cfg.AnalysisLevel)
	}
	if !cfg.RedactSecrets {
		logger.Warn("secret redaction is disabled")
	}
	rules, err := review.LoadRules(cfg.RulesFile)
	if err != nil {
		return nil, err
	}

	platform, err := newPlatform(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	provider, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}

	backoff := batch.NewBackoff()
	backoff.Retries = cfg.MaxPolls
	client := batch.NewClient(provider,
		batch.WithModel(cfg.Model),
		batch.WithMaxTokens(cfg.MaxTokens),
		batch.WithLogger(logger),
		batch.WithBackoff(backoff),
	)

	deps := review.Deps{Platform: platform, Batch: client, Logger: logger}
	if cfg.Output != "" {
		dir, err := output.NewDir(cfg.Output, cfg.Repo, cfg.PRNumber)
		if err != nil {
			return nil, err
		}
		dir.Logger = logger
		deps.Artifacts = dir
	}

	pipeline := review.NewPipeline(deps, review.Options{
		Owner:    owner,
		Repo:     repo,
		PRNumber: cfg.PRNumber,
		Depth:    depth,
		Language: cfg.Language,
		Model:    cfg.Model,
		Filter: review.FilterConfig{
			Include:       cfg.Include,
			Exclude:       cfg.Exclude,
			MaxFiles:      cfg.MaxFiles,
			MaxFileSizeKB: cfg.MaxFileSizeKB,
		},
		WritePullRequest: cfg.WritePullRequest,
		SizeWarnings:     cfg.SizeWarnings,
		PollInterval:     time.Duration(cfg.PollInterval) * time.Second,
		Redact:           cfg.RedactSecrets,
		Redactor:         redact.Redactor{Paths: cfg.RedactPaths},
		Rules:            rules,
	})

	logger.Info("analyzing pull request", "repo", cfg.Repo, "pr", cfg.PRNumber, "level", depth, "model", cfg.Model)
	return pipeline.Run(ctx)
}
