package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/dshills/prbatch/internal/gitctx"
)

// RepoConfigFile is the per-repository config file name.
const RepoConfigFile = ".prbatch.toml"

// Config represents the prbatch configuration. Credentials and the pull
// request number are never read from or written to config files.
type Config struct {
	PRNumber        int    `toml:"-"`
	Repo            string `toml:"repo,omitempty"`
	GitHubToken     string `toml:"-"`
	AnthropicAPIKey string `toml:"-"`

	AnalysisLevel string   `toml:"analysis_level"`
	Model         string   `toml:"model"`
	Language      string   `toml:"language"`
	Include       []string `toml:"include"`
	Exclude       []string `toml:"exclude"`
	MaxFiles      int      `toml:"max_files"`
	MaxFileSizeKB int      `toml:"max_file_size_kb"`

	// CommentThreshold is accepted for compatibility; batch analysis posts
	// every result.
	CommentThreshold float64 `toml:"comment_threshold"`

	WritePullRequest bool   `toml:"write_pull_request"`
	Output           string `toml:"output,omitempty"`
	MaxTokens        int    `toml:"max_tokens"`
	PollInterval     int    `toml:"poll_interval_seconds"`
	MaxPolls         int    `toml:"max_polls"`
	SizeWarnings     bool   `toml:"size_warnings"`

	RedactSecrets bool     `toml:"redact_secrets"`
	RedactPaths   []string `toml:"redact_paths,omitempty"`

	GitHubAPIURL string `toml:"github_api_url,omitempty"`
	RulesFile    string `toml:"rules_file,omitempty"`

	// ActionMode is set when running inside a GitHub Actions workflow.
	ActionMode bool `toml:"-"`
}

// Action-mode file selection, matching the published action's defaults.
var (
	ActionInclude = []string{"**/*.{js,jsx,ts,tsx,py,java,rb,go,rs}"}
	ActionExclude = []string{"**/node_modules/**", "**/dist/**", "**/build/**"}
)

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		AnalysisLevel:    "standard",
		Model:            "claude-3-5-haiku-20241022",
		Language:         "English",
		MaxFiles:         10,
		MaxFileSizeKB:    100,
		CommentThreshold: 0.6,
		MaxTokens:        1024,
		PollInterval:     60,
		MaxPolls:         30,
		SizeWarnings:     true,
		RedactSecrets:    true,
		RedactPaths:      []string{"**/.env", "**/*secrets*"},
	}
}

// ConfigDir returns the platform-appropriate config directory for prbatch.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "prbatch"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "prbatch"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "prbatch"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "prbatch"), nil
	default:
		return filepath.Join(home, ".config", "prbatch"), nil
	}
}

// ConfigPath returns the full path to the global config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Sources names where Load reads from. Empty paths are skipped; a nil Getenv
// reads the process environment.
type Sources struct {
	GlobalFile string
	RepoFile   string
	DotEnvFile string
	Getenv     func(string) string
}

// DefaultSources reads the global config, .prbatch.toml at the root of the
// current git checkout (or the working directory outside one) and ./.env.
func DefaultSources() Sources {
	global, _ := ConfigPath()
	repoFile := RepoConfigFile
	if root, err := gitctx.Root(""); err == nil {
		repoFile = filepath.Join(root, RepoConfigFile)
	}
	return Sources{
		GlobalFile: global,
		RepoFile:   repoFile,
		DotEnvFile: ".env",
		Getenv:     os.Getenv,
	}
}

// Load builds the effective config from DefaultSources. The overrides map
// comes from CLI flags; only flags the user set should be present.
func Load(overrides map[string]string) (Config, error) {
	return LoadFrom(DefaultSources(), overrides)
}

// LoadFrom merges, lowest to highest: defaults, global file, repo file, .env,
// GitHub Action inputs, environment, overrides.
func LoadFrom(src Sources, overrides map[string]string) (Config, error) {
	cfg := Default()

	for _, path := range []string{src.GlobalFile, src.RepoFile} {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	getenv := src.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	dotenv, err := readDotEnv(src.DotEnvFile)
	if err != nil {
		return Config{}, err
	}
	if err := applyVars(&cfg, lookupMap(dotenv)); err != nil {
		return Config{}, fmt.Errorf("%s: %w", src.DotEnvFile, err)
	}

	if getenv("GITHUB_ACTIONS") == "true" {
		if err := mergeAction(&cfg, getenv); err != nil {
			return Config{}, err
		}
	}

	if err := applyVars(&cfg, getenv); err != nil {
		return Config{}, fmt.Errorf("environment: %w", err)
	}

	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := SetField(&cfg, key, value); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// LoadFile decodes the TOML file at path into a copy of the defaults. A
// missing file yields the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if err := decodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func readDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return vars, nil
}

func lookupMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

// envKeys maps environment variables onto SetField keys.
var envKeys = []struct{ env, key string }{
	{"GITHUB_TOKEN", "githubToken"},
	{"ANTHROPIC_API_KEY", "anthropicApiKey"},
	{"GITHUB_API_URL", "githubApiUrl"},
	{"PRBATCH_MODEL", "model"},
	{"PRBATCH_LEVEL", "analysisLevel"},
	{"PRBATCH_LANGUAGE", "language"},
	{"PRBATCH_MAX_FILES", "maxFiles"},
	{"PRBATCH_MAX_SIZE_KB", "maxFileSizeKB"},
	{"PRBATCH_OUTPUT", "output"},
	{"PRBATCH_WRITE_PR", "writePullRequest"},
}

func applyVars(cfg *Config, getenv func(string) string) error {
	for _, e := range envKeys {
		v := getenv(e.env)
		if v == "" {
			continue
		}
		if err := SetField(cfg, e.key, v); err != nil {
			return fmt.Errorf("%s: %w", e.env, err)
		}
	}
	return nil
}

// actionInputs maps workflow inputs (INPUT_<NAME>) onto SetField keys.
var actionInputs = []struct{ input, key string }{
	{"ANTHROPIC_API_KEY", "anthropicApiKey"},
	{"GITHUB_TOKEN", "githubToken"},
	{"ANALYSIS_LEVEL", "analysisLevel"},
	{"MODEL", "model"},
	{"COMMENT_THRESHOLD", "commentThreshold"},
	{"FILE_PATTERNS", "include"},
	{"EXCLUDE_PATTERNS", "exclude"},
	{"MAX_FILES", "maxFiles"},
	{"LANGUAGE", "language"},
}

// mergeAction applies GitHub Actions inputs. Inside a workflow, comments are
// posted to the pull request and the action's default patterns apply unless a
// config file chose its own.
func mergeAction(cfg *Config, getenv func(string) string) error {
	cfg.ActionMode = true
	cfg.WritePullRequest = true
	if len(cfg.Include) == 0 {
		cfg.Include = ActionInclude
	}
	if len(cfg.Exclude) == 0 {
		cfg.Exclude = ActionExclude
	}

	for _, in := range actionInputs {
		v := strings.TrimSpace(getenv("INPUT_" + in.input))
		if v == "" {
			continue
		}
		if err := SetField(cfg, in.key, v); err != nil {
			return fmt.Errorf("action input %s: %w", strings.ToLower(in.input), err)
		}
	}

	if repo := getenv("GITHUB_REPOSITORY"); repo != "" {
		cfg.Repo = repo
	}
	if path := getenv("GITHUB_EVENT_PATH"); path != "" {
		n, err := prNumberFromEvent(path)
		if err != nil {
			return err
		}
		cfg.PRNumber = n
	}
	return nil
}

// prNumberFromEvent reads the pull request number from a workflow event
// payload. Events that are not about a pull request yield zero.
func prNumberFromEvent(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading event payload: %w", err)
	}
	var event struct {
		PullRequest *struct {
			Number int `json:"number"`
		} `json:"pull_request"`
	}
	if err := json.Unmarshal(data, &event); err != nil {
		return 0, fmt.Errorf("parsing event payload: %w", err)
	}
	if event.PullRequest == nil {
		return 0, nil
	}
	return event.PullRequest.Number, nil
}

// Save writes the file-backed fields of cfg to path as TOML.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

// Keys lists the names SetField accepts, in display order.
var Keys = []string{
	"prNumber", "repo", "githubToken", "anthropicApiKey", "githubApiUrl",
	"analysisLevel", "model", "language", "include", "exclude",
	"maxFiles", "maxFileSizeKB", "commentThreshold", "writePullRequest",
	"output", "maxTokens", "pollInterval", "maxPolls", "sizeWarnings",
	"redactSecrets", "redactPaths", "rulesFile",
}

// SetField sets a single config field by key name. List values are
// comma-separated. Returns error if key is unknown or value is malformed.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "prNumber":
		return setInt(&cfg.PRNumber, key, value)
	case "repo":
		cfg.Repo = value
	case "githubToken":
		cfg.GitHubToken = value
	case "anthropicApiKey":
		cfg.AnthropicAPIKey = value
	case "githubApiUrl":
		cfg.GitHubAPIURL = value
	case "analysisLevel":
		cfg.AnalysisLevel = strings.ToLower(value)
	case "model":
		cfg.Model = value
	case "language":
		cfg.Language = value
	case "include":
		cfg.Include = SplitList(value)
	case "exclude":
		cfg.Exclude = SplitList(value)
	case "maxFiles":
		return setInt(&cfg.MaxFiles, key, value)
	case "maxFileSizeKB":
		return setInt(&cfg.MaxFileSizeKB, key, value)
	case "commentThreshold":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s must be a number: %w", key, err)
		}
		cfg.CommentThreshold = f
	case "writePullRequest":
		return setBool(&cfg.WritePullRequest, key, value)
	case "output":
		cfg.Output = value
	case "maxTokens":
		return setInt(&cfg.MaxTokens, key, value)
	case "pollInterval":
		return setInt(&cfg.PollInterval, key, value)
	case "maxPolls":
		return setInt(&cfg.MaxPolls, key, value)
	case "sizeWarnings":
		return setBool(&cfg.SizeWarnings, key, value)
	case "redactSecrets":
		return setBool(&cfg.RedactSecrets, key, value)
	case "redactPaths":
		cfg.RedactPaths = SplitList(value)
	case "rulesFile":
		cfg.RulesFile = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%s must be true or false: %w", key, err)
	}
	*dst = b
	return nil
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
