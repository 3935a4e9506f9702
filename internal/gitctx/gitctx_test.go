package gitctx

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestParseRemoteURL(t *testing.T) {
	tests := []struct {
		url       string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{"https://github.com/owner/repo.git", "owner", "repo", false},
		{"https://github.com/owner/repo", "owner", "repo", false},
		{"http://ghe.example.com/team/service.git", "team", "service", false},
		{"git@github.com:owner/repo.git", "owner", "repo", false},
		{"git@github.com:owner/my.repo.git", "owner", "my.repo", false},
		{"ssh://git@github.com/owner/repo.git", "owner", "repo", false},
		{"ssh://git@github.com:22/owner/repo.git", "owner", "repo", false},
		{"ssh://git@ghe.example.com:7999/team/service", "team", "service", false},
		{"  https://github.com/owner/repo.git\n", "owner", "repo", false},
		{"not a url", "", "", true},
		{"https://github.com/owner", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			owner, repo, err := ParseRemoteURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if owner != tt.wantOwner || repo != tt.wantRepo {
				t.Errorf("got %s/%s, want %s/%s", owner, repo, tt.wantOwner, tt.wantRepo)
			}
		})
	}
}

// setupTestRepo creates a temp git repo with one commit and an origin remote.
func setupTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()

	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command(args[0], args[1:]...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test",
			"GIT_AUTHOR_EMAIL=test@test.com",
			"GIT_COMMITTER_NAME=test",
			"GIT_COMMITTER_EMAIL=test@test.com",
		)
		out, err := cmd.CombinedOutput()
		if err != nil {
			t.Fatalf("command %v failed: %v\n%s", args, err, out)
		}
	}

	run("git", "init")
	run("git", "checkout", "-b", "main")
	os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644)
	run("git", "add", "-A")
	run("git", "commit", "-m", "init")
	run("git", "remote", "add", "origin", "git@github.com:octo/app.git")

	return dir
}

func TestRoot(t *testing.T) {
	dir := setupTestRepo(t)
	os.MkdirAll(filepath.Join(dir, "pkg"), 0o755)

	root, err := Root(filepath.Join(dir, "pkg"))
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	wantRoot, _ := filepath.EvalSymlinks(dir)
	gotRoot, _ := filepath.EvalSymlinks(root)
	if gotRoot != wantRoot {
		t.Errorf("Root = %q, want %q", root, dir)
	}
}

func TestDetectRepo(t *testing.T) {
	dir := setupTestRepo(t)
	owner, repo, err := DetectRepo(dir)
	if err != nil {
		t.Fatalf("DetectRepo: %v", err)
	}
	if owner != "octo" || repo != "app" {
		t.Errorf("DetectRepo = %s/%s, want octo/app", owner, repo)
	}
}

func TestDetectRepo_NotARepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	if _, _, err := DetectRepo(t.TempDir()); err == nil {
		t.Error("expected error outside a git repository")
	}
	if _, err := Root(t.TempDir()); err == nil {
		t.Error("Root outside a git repository should fail")
	}
}
