package gitctx

import (
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// Root returns the top-level directory of the checkout containing dir.
func Root(dir string) (string, error) {
	root, err := gitOutput(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}
	return strings.TrimSpace(root), nil
}

// DetectRepo parses owner/repo from the origin remote of the checkout
// containing dir.
func DetectRepo(dir string) (owner, repo string, err error) {
	url, err := gitOutput(dir, "remote", "get-url", "origin")
	if err != nil {
		return "", "", fmt.Errorf("cannot detect repo: git remote get-url origin failed: %w", err)
	}
	return ParseRemoteURL(url)
}

var (
	httpsRemoteRe = regexp.MustCompile(`^https?://[^/]+/([^/]+)/([^/\s]+?)(?:\.git)?/?$`)
	sshRemoteRe   = regexp.MustCompile(`^(?:ssh://)?[^@]+@[^:/]+(?::\d+)?[:/]([^/]+)/([^/\s]+?)(?:\.git)?/?$`)
)

// ParseRemoteURL extracts owner/repo from an HTTPS or SSH remote URL.
func ParseRemoteURL(url string) (owner, repo string, err error) {
	url = strings.TrimSpace(url)
	if m := httpsRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2], nil
	}
	if m := sshRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2], nil
	}
	return "", "", fmt.Errorf("cannot parse owner/repo from remote URL: %s", url)
}

func gitOutput(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), fmt.Errorf("%s: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}
