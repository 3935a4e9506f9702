package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SafeName flattens a repository path into a single file name.
func SafeName(path string) string {
	return strings.ReplaceAll(path, "/", "-") + ".md"
}

// Dir persists one Markdown file per analyzed file under Path. SafeName is
// not injective, so two paths such as "a/b-c.go" and "a-b/c.go" share a file;
// the later write wins and is reported on Logger.
type Dir struct {
	Path     string
	Repo     string
	PRNumber int
	Logger   *slog.Logger

	now     func() time.Time
	written map[string]string // safe name -> source path
}

// NewDir creates the output directory if needed.
func NewDir(path, repo string, prNumber int) (*Dir, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Dir{
		Path:     path,
		Repo:     repo,
		PRNumber: prNumber,
		Logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
		written:  make(map[string]string),
	}, nil
}

// Write stores body for fileName and returns the written path.
func (d *Dir) Write(fileName, body string) (string, error) {
	name := SafeName(fileName)
	path := filepath.Join(d.Path, name)
	if prev, ok := d.written[name]; ok && prev != fileName && d.Logger != nil {
		d.Logger.Warn("output file name collision, overwriting", "file", fileName, "previous", prev, "path", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating output file: %w", err)
	}
	if err := d.render(f, fileName, body); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	if d.written == nil {
		d.written = make(map[string]string)
	}
	d.written[name] = fileName
	return path, nil
}

func (d *Dir) render(w io.Writer, fileName, body string) error {
	now := time.Now
	if d.now != nil {
		now = d.now
	}
	ew := &errWriter{w: w}
	ew.printf("<!-- generated %s -->\n", now().UTC().Format(time.RFC3339))
	ew.printf("# Pull Request %s#%d\n\n", d.Repo, d.PRNumber)
	ew.printf("**File:** `%s`\n\n", fileName)
	ew.println(body)
	return ew.err
}

// errWriter wraps an io.Writer and captures the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
