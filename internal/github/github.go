package github

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	gh "github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"

	"github.com/dshills/prbatch/internal/review"
)

// lowRateLimit is the remaining-request count below which calls wait for the
// rate limit window to reset.
const lowRateLimit = 10

// Client implements review.Platform against the GitHub REST API.
type Client struct {
	gh     *gh.Client
	logger *slog.Logger

	remaining int
	reset     time.Time
	now       func() time.Time
}

// NewClient creates a GitHub client authenticated with token. An empty apiURL
// targets github.com; anything else is treated as a GitHub Enterprise base URL.
func NewClient(ctx context.Context, token, apiURL string, logger *slog.Logger) (*Client, error) {
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("GITHUB_TOKEN environment variable is not set")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return newClient(oauth2.NewClient(ctx, ts), apiURL, logger)
}

func newClient(httpClient *http.Client, apiURL string, logger *slog.Logger) (*Client, error) {
	client := gh.NewClient(httpClient)
	if apiURL != "" && strings.TrimRight(apiURL, "/") != "https://api.github.com" {
		var err error
		client, err = client.WithEnterpriseURLs(apiURL, apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", apiURL, err)
		}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{gh: client, logger: logger, remaining: -1, now: time.Now}, nil
}

// ListChangedFiles returns every file changed by the pull request, following
// pagination. The endpoint does not report content size, so Size is left
// zero for the pipeline to fill in.
func (c *Client) ListChangedFiles(ctx context.Context, owner, repo string, number int) ([]review.ChangedFile, error) {
	var files []review.ChangedFile
	opts := &gh.ListOptions{PerPage: 100}
	for {
		if err := c.waitForRateLimit(ctx); err != nil {
			return nil, err
		}
		page, resp, err := c.gh.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list files for %s/%s#%d: %w", owner, repo, number, err)
		}
		c.track(resp)

		for _, f := range page {
			files = append(files, review.ChangedFile{
				Path:    f.GetFilename(),
				Changes: f.GetChanges(),
				Status:  review.FileStatus(f.GetStatus()),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return files, nil
}

// HeadRef returns the head commit SHA of the pull request.
func (c *Client) HeadRef(ctx context.Context, owner, repo string, number int) (string, error) {
	if err := c.waitForRateLimit(ctx); err != nil {
		return "", err
	}
	pr, resp, err := c.gh.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return "", fmt.Errorf("failed to get pull request %s/%s#%d: %w", owner, repo, number, err)
	}
	c.track(resp)
	sha := pr.GetHead().GetSHA()
	if sha == "" {
		return "", fmt.Errorf("pull request %s/%s#%d has no head commit", owner, repo, number)
	}
	return sha, nil
}

// GetFileContent returns the raw content of path at ref.
func (c *Client) GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	if err := c.waitForRateLimit(ctx); err != nil {
		return nil, err
	}
	opts := &gh.RepositoryContentGetOptions{Ref: ref}
	file, dir, resp, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get content of %s@%s: %w", path, ref, err)
	}
	c.track(resp)
	if file == nil {
		return nil, fmt.Errorf("%s@%s is a directory (%d entries)", path, ref, len(dir))
	}

	// Files over 1 MB come back without inline content.
	if file.GetEncoding() == "none" {
		return c.download(ctx, owner, repo, path, opts)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decoding content of %s: %w", path, err)
	}
	return []byte(content), nil
}

func (c *Client) download(ctx context.Context, owner, repo, path string, opts *gh.RepositoryContentGetOptions) ([]byte, error) {
	rc, resp, err := c.gh.Repositories.DownloadContents(ctx, owner, repo, path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", path, err)
	}
	defer rc.Close()
	c.track(resp)
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// CreateComment posts body as an issue comment on the pull request.
func (c *Client) CreateComment(ctx context.Context, owner, repo string, number int, body string) error {
	if err := c.waitForRateLimit(ctx); err != nil {
		return err
	}
	_, resp, err := c.gh.Issues.CreateComment(ctx, owner, repo, number, &gh.IssueComment{Body: gh.String(body)})
	if err != nil {
		return fmt.Errorf("failed to comment on %s/%s#%d: %w", owner, repo, number, err)
	}
	c.track(resp)
	return nil
}

func (c *Client) track(resp *gh.Response) {
	if resp != nil && resp.Rate.Limit > 0 {
		c.remaining = resp.Rate.Remaining
		c.reset = resp.Rate.Reset.Time
	}
}

func (c *Client) waitForRateLimit(ctx context.Context) error {
	if c.remaining < 0 || c.remaining > lowRateLimit {
		return nil
	}
	wait := c.reset.Sub(c.now())
	if wait <= 0 {
		return nil
	}
	c.logger.Warn("GitHub rate limit low, waiting for reset", "remaining", c.remaining, "wait", wait.Round(time.Second))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
	}
	c.remaining = -1
	return nil
}

// SplitRepo splits an "owner/repo" identifier.
func SplitRepo(full string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(strings.TrimSpace(full), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("repository must be in owner/repo form, got %q", full)
	}
	return owner, repo, nil
}
