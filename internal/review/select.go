package review

import (
	"log/slog"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// MaxChanges is the hard ceiling on changed lines for a file to be reviewed.
const MaxChanges = 1000

// MatchesPatterns reports whether path passes the include and exclude globs.
// An empty include list includes everything; any exclude match wins.
func MatchesPatterns(path string, include, exclude []string) bool {
	included := len(include) == 0 || matchesAny(path, include)
	if !included {
		return false
	}
	return !matchesAny(path, exclude)
}

func matchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		// Bad patterns never match; config validation reports them up front.
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}

// HasSignificantChanges rejects deletions, pure renames, and oversized diffs.
func HasSignificantChanges(f ChangedFile) bool {
	switch {
	case f.Status == StatusRemoved:
		return false
	case f.Status == StatusRenamed && f.Changes == 0:
		return false
	case f.Changes > MaxChanges:
		return false
	}
	return true
}

// Select filters files by pattern and significance, orders them by
// descending change count (stable for ties), and keeps at most cfg.MaxFiles.
// A negative MaxFiles disables truncation.
func Select(files []ChangedFile, cfg FilterConfig, logger *slog.Logger) []ChangedFile {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Debug("filtering files", "count", len(files), "include", cfg.Include, "exclude", cfg.Exclude)

	selected := make([]ChangedFile, 0, len(files))
	for _, f := range files {
		if !MatchesPatterns(f.Path, cfg.Include, cfg.Exclude) {
			logger.Debug("skipping file", "file", f.Path, "reason", "pattern")
			continue
		}
		if !HasSignificantChanges(f) {
			if f.Changes > MaxChanges {
				logger.Warn("file has too many changes, skipping", "file", f.Path, "changes", f.Changes)
			} else {
				logger.Debug("skipping file", "file", f.Path, "reason", "insignificant", "status", f.Status)
			}
			continue
		}
		selected = append(selected, f)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Changes > selected[j].Changes
	})

	if cfg.MaxFiles >= 0 && len(selected) > cfg.MaxFiles {
		selected = selected[:cfg.MaxFiles]
	}

	logger.Info("selected files for analysis", "count", len(selected))
	for _, f := range selected {
		logger.Debug("will analyze", "file", f.Path, "changes", f.Changes)
	}
	return selected
}

// ValidatePatterns returns the first malformed glob in patterns, if any.
func ValidatePatterns(patterns []string) (string, bool) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return p, false
		}
	}
	return "", true
}
