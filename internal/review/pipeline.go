package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dshills/prbatch/internal/batch"
	"github.com/dshills/prbatch/internal/redact"
)

// Platform is the source-control host holding the pull request. File content
// is always addressed by commit ref so concurrent pushes cannot race a run.
type Platform interface {
	ListChangedFiles(ctx context.Context, owner, repo string, number int) ([]ChangedFile, error)
	HeadRef(ctx context.Context, owner, repo string, number int) (string, error)
	GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error)
	CreateComment(ctx context.Context, owner, repo string, number int, body string) error
}

// ArtifactWriter persists the rendered analysis of one file.
type ArtifactWriter interface {
	Write(fileName, body string) (string, error)
}

// Deps holds the collaborators a Pipeline talks to. Artifacts may be nil.
type Deps struct {
	Platform  Platform
	Batch     *batch.Client
	Artifacts ArtifactWriter
	Logger    *slog.Logger
}

// Options configures one pipeline run.
type Options struct {
	Owner    string
	Repo     string
	PRNumber int

	Depth    Depth
	Language string
	Model    string
	Filter   FilterConfig

	WritePullRequest bool
	SizeWarnings     bool
	PollInterval     time.Duration

	Redact   bool
	Redactor redact.Redactor

	// Rules extends every prompt with team focus areas and required checks.
	Rules *Rules
}

// State is a step of the pipeline.
type State string

const (
	StateIdle        State = "idle"
	StateListing     State = "listing"
	StateSelecting   State = "selecting"
	StateEnqueuing   State = "enqueuing"
	StateSubmitted   State = "submitted"
	StatePolling     State = "polling"
	StateReconciling State = "reconciling"
	StatePublishing  State = "publishing"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// ErrBatchErrored is returned when the provider finished the job without
// producing usable results.
var ErrBatchErrored = errors.New("batch job errored")

const defaultPollInterval = 60 * time.Second

// Pipeline reviews one pull request end to end through a single batch job.
type Pipeline struct {
	deps  Deps
	opts  Options
	log   *slog.Logger
	state State
}

// NewPipeline returns a Pipeline in the idle state.
func NewPipeline(deps Deps, opts Options) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.Model == "" {
		opts.Model = deps.Batch.Model()
	}
	return &Pipeline{
		deps:  deps,
		opts:  opts,
		log:   logger.With("pr", fmt.Sprintf("%s/%s#%d", opts.Owner, opts.Repo, opts.PRNumber)),
		state: StateIdle,
	}
}

// State returns the step the pipeline is in, or stopped in.
func (p *Pipeline) State() State { return p.state }

func (p *Pipeline) enter(s State) {
	p.log.Debug("pipeline state", "from", p.state, "to", s)
	p.state = s
}

func (p *Pipeline) fail(err error) error {
	p.log.Debug("pipeline failed", "in", p.state, "err", err)
	p.state = StateFailed
	return err
}

// Run executes the whole review. Per-file problems are logged and skipped;
// any failure once the batch is submitted aborts the run.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{}

	// An unpriced model would only surface after the batch was paid for.
	if _, err := batch.Pricing(p.opts.Model); err != nil {
		return nil, p.fail(err)
	}

	p.enter(StateListing)
	files, err := p.deps.Platform.ListChangedFiles(ctx, p.opts.Owner, p.opts.Repo, p.opts.PRNumber)
	if err != nil {
		return nil, p.fail(fmt.Errorf("listing changed files: %w", err))
	}
	summary.Listed = len(files)

	p.enter(StateSelecting)
	selected := Select(files, p.opts.Filter, p.log)
	if len(selected) == 0 {
		p.log.Info("no files to analyze")
		p.enter(StateDone)
		return summary, nil
	}

	ref, err := p.deps.Platform.HeadRef(ctx, p.opts.Owner, p.opts.Repo, p.opts.PRNumber)
	if err != nil {
		return nil, p.fail(fmt.Errorf("resolving head commit: %w", err))
	}

	p.enter(StateEnqueuing)
	if err := p.enqueue(ctx, selected, ref, summary); err != nil {
		return nil, p.fail(err)
	}

	p.enter(StateSubmitted)
	jobID, err := p.deps.Batch.Submit(ctx)
	if err != nil {
		return nil, p.fail(err)
	}
	summary.JobID = jobID

	p.enter(StatePolling)
	status, err := p.deps.Batch.WaitForCompletion(ctx, jobID, p.opts.PollInterval)
	summary.Status = string(status)
	if err != nil {
		return nil, p.fail(fmt.Errorf("waiting for batch %s: %w", jobID, err))
	}
	if status == batch.StatusErrored {
		return nil, p.fail(fmt.Errorf("%w: %s", ErrBatchErrored, jobID))
	}

	p.enter(StateReconciling)
	results, err := p.deps.Batch.FetchResults(ctx, jobID)
	if err != nil {
		return nil, p.fail(err)
	}
	p.inSelectionOrder(results)
	for _, r := range results {
		summary.Results = append(summary.Results, AnalysisResult{
			FileName:  r.FileName,
			SizeLabel: r.SizeLabel,
			Content:   FormatComment(r.FileName, r.Content),
		})
	}

	p.enter(StatePublishing)
	if err := p.publish(ctx, summary); err != nil {
		return nil, p.fail(err)
	}

	p.enter(StateDone)
	return summary, nil
}

// enqueue fetches and prompts each selected file in selection order.
func (p *Pipeline) enqueue(ctx context.Context, files []ChangedFile, ref string, summary *Summary) error {
	maxFiles := p.opts.Filter.MaxFiles
	maxBytes := p.opts.Filter.MaxFileSizeKB * 1024

	for i, f := range files {
		if maxFiles >= 0 && p.deps.Batch.Len() >= maxFiles {
			rest := files[i:]
			p.log.Warn("max files reached, not analyzing remaining files", "max", maxFiles, "remaining", len(rest))
			for _, r := range rest {
				summary.Skipped = append(summary.Skipped, SkippedFile{Path: r.Path, Reason: "max files reached"})
			}
			p.comment(ctx, fmt.Sprintf("Maximum number of files (%d) reached. %d remaining file(s) were not analyzed.", maxFiles, len(rest)))
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		var data []byte
		if maxBytes <= 0 || f.Size <= maxBytes {
			var err error
			data, err = p.deps.Platform.GetFileContent(ctx, p.opts.Owner, p.opts.Repo, f.Path, ref)
			if err != nil {
				p.log.Warn("error fetching file, skipping", "file", f.Path, "err", err)
				summary.Skipped = append(summary.Skipped, SkippedFile{Path: f.Path, Reason: "content fetch failed"})
				continue
			}
			f.Size = len(data)
		}
		sizeKB := kilobytes(f.Size)

		if maxBytes > 0 && f.Size > maxBytes {
			p.log.Warn("file exceeds size limit, skipping", "file", f.Path, "sizeKB", sizeKB, "maxKB", p.opts.Filter.MaxFileSizeKB)
			summary.Skipped = append(summary.Skipped, SkippedFile{Path: f.Path, Reason: fmt.Sprintf("%d KB exceeds %d KB limit", sizeKB, p.opts.Filter.MaxFileSizeKB)})
			if p.opts.SizeWarnings {
				p.comment(ctx, fmt.Sprintf("## AI Analysis for %s\n\nSkipped: the file is %d KB, above the %d KB analysis limit.", f.Path, sizeKB, p.opts.Filter.MaxFileSizeKB))
			}
			continue
		}

		content := string(data)
		if p.opts.Redact {
			var n int
			content, n = p.opts.Redactor.Content(f.Path, content)
			if n > 0 {
				p.log.Info("redacted secrets from file", "file", f.Path, "count", n)
			}
		}

		prompt := p.opts.Rules.Apply(BuildPromptInLanguage(f.Path, content, p.opts.Depth, p.opts.Language))
		id, err := p.deps.Batch.Enqueue(prompt, f.Path, sizeKB)
		if err != nil {
			return err
		}
		p.log.Debug("enqueued file", "file", f.Path, "id", id, "sizeKB", sizeKB)
	}
	return nil
}

// inSelectionOrder sorts results back into enqueue order, which follows the
// selector's priority, so comments are published highest-churn first.
func (p *Pipeline) inSelectionOrder(results []batch.Result) {
	rank := make(map[string]int, p.deps.Batch.Len())
	for i, it := range p.deps.Batch.Items() {
		rank[it.CorrelationID] = i
	}
	sort.SliceStable(results, func(i, j int) bool {
		return rank[results[i].CorrelationID] < rank[results[j].CorrelationID]
	})
}

// publish posts and persists each result, then prices the batch.
func (p *Pipeline) publish(ctx context.Context, summary *Summary) error {
	for _, r := range summary.Results {
		p.comment(ctx, r.Content)
		if p.deps.Artifacts != nil {
			path, err := p.deps.Artifacts.Write(r.FileName, r.Content)
			if err != nil {
				return fmt.Errorf("writing analysis of %s: %w", r.FileName, err)
			}
			summary.Written = append(summary.Written, path)
			p.log.Info("wrote analysis", "file", r.FileName, "path", path)
		}
	}

	cost, err := p.deps.Batch.EstimateCost(ctx, p.opts.Model)
	if err != nil {
		return fmt.Errorf("estimating cost: %w", err)
	}
	summary.Cost = cost
	p.log.Info("batch complete", "files", len(summary.Results), "costUSD", fmt.Sprintf("%.4f", cost))

	p.comment(ctx, fmt.Sprintf("## AI Analysis Summary\n\nAnalyzed %d file(s) with `%s`.\n\nEstimated cost: $%.4f\n\n---\n%s",
		len(summary.Results), p.opts.Model, cost, attribution))
	return nil
}

// comment posts body to the pull request when writing is enabled. Failures
// are logged; a missing comment never fails the run.
func (p *Pipeline) comment(ctx context.Context, body string) {
	if !p.opts.WritePullRequest {
		return
	}
	if err := p.deps.Platform.CreateComment(ctx, p.opts.Owner, p.opts.Repo, p.opts.PRNumber, body); err != nil {
		p.log.Warn("failed to post comment", "err", err)
	}
}

func kilobytes(n int) int {
	return (n + 1023) / 1024
}
