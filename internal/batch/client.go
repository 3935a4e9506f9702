package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/prbatch/internal/providers"
)

// Status is the lifecycle state of the client's batch job.
type Status = providers.BatchStatus

const (
	StatusNotSubmitted = providers.BatchNotSubmitted
	StatusInProgress   = providers.BatchInProgress
	StatusEnded        = providers.BatchEnded
	StatusErrored      = providers.BatchErrored
)

// Terminal reports whether s is a final status.
func Terminal(s Status) bool {
	return s == StatusEnded || s == StatusErrored
}

const (
	DefaultModel     = "claude-3-5-haiku-20241022"
	DefaultMaxTokens = 1024
)

// Item is one prompt in the batch. Response stays empty until the matching
// result is reconciled; Reconciled marks that it was written, so it is
// written at most once even when the response text is empty.
type Item struct {
	CorrelationID string
	FileName      string
	SizeLabel     string
	Prompt        string
	Response      string
	Reconciled    bool
}

// Result is the reconciled analysis of one item.
type Result struct {
	CorrelationID string
	FileName      string
	SizeLabel     string
	Content       string
}

// Client drives a single batch job through enqueue, submit, poll, fetch and
// cost estimation. It is not safe for concurrent use and must not be reused
// across runs.
type Client struct {
	provider  providers.BatchProvider
	model     string
	maxTokens int
	newID     func() string
	logger    *slog.Logger
	backoff   *Backoff

	items  []*Item
	byID   map[string]*Item
	jobID  string
	status Status
}

// Option configures a Client.
type Option func(*Client)

// WithModel sets the model every request in the batch runs on.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxTokens caps the response length of each request.
func WithMaxTokens(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithLogger sets the logger for lifecycle and cost diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBackoff replaces the polling wait schedule.
func WithBackoff(b *Backoff) Option {
	return func(c *Client) {
		if b != nil {
			c.backoff = b
		}
	}
}

// WithIDGenerator replaces the correlation id generator.
func WithIDGenerator(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// NewClient returns a Client with no items and status not_submitted.
func NewClient(p providers.BatchProvider, opts ...Option) *Client {
	c := &Client{
		provider:  p,
		model:     DefaultModel,
		maxTokens: DefaultMaxTokens,
		newID:     uuid.NewString,
		logger:    slog.New(slog.DiscardHandler),
		backoff:   NewBackoff(),
		byID:      make(map[string]*Item),
		status:    StatusNotSubmitted,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.backoff.logger == nil {
		c.backoff.logger = c.logger
	}
	return c
}

// Enqueue adds a prompt for fileName to the batch and returns its correlation id.
func (c *Client) Enqueue(prompt, fileName string, sizeKB int) (string, error) {
	if c.status != StatusNotSubmitted {
		return "", fmt.Errorf("%w: cannot enqueue %s after submission", ErrInvalidState, fileName)
	}
	id := c.newID()
	if _, dup := c.byID[id]; dup {
		return "", fmt.Errorf("%w: duplicate correlation id %s", ErrInvalidState, id)
	}
	item := &Item{
		CorrelationID: id,
		FileName:      fileName,
		SizeLabel:     fmt.Sprintf("%d KB", sizeKB),
		Prompt:        prompt,
	}
	c.items = append(c.items, item)
	c.byID[id] = item
	return id, nil
}

// Len returns the number of enqueued items.
func (c *Client) Len() int { return len(c.items) }

// Items returns a copy of the enqueued items in submission order.
func (c *Client) Items() []Item {
	out := make([]Item, len(c.items))
	for i, it := range c.items {
		out[i] = *it
	}
	return out
}

// JobID returns the provider job id, empty before submission.
func (c *Client) JobID() string { return c.jobID }

// Status returns the last known job status.
func (c *Client) Status() Status { return c.status }

// Model returns the model requests are submitted with.
func (c *Client) Model() string { return c.model }

// Submit sends all items as one batch job. It is not idempotent: each call
// creates a new provider job, so callers submit at most once.
func (c *Client) Submit(ctx context.Context) (string, error) {
	if len(c.items) == 0 {
		return "", ErrEmptyBatch
	}

	reqs := make([]providers.BatchRequest, 0, len(c.items))
	for _, it := range c.items {
		reqs = append(reqs, providers.BatchRequest{
			CorrelationID: it.CorrelationID,
			Prompt:        it.Prompt,
			Model:         c.model,
			MaxTokens:     c.maxTokens,
		})
	}

	id, err := c.provider.CreateBatch(ctx, reqs)
	if err != nil {
		return "", fmt.Errorf("failed to send batch: %w", err)
	}
	c.jobID = id
	c.status = StatusInProgress
	c.logger.Info("batch submitted", "job", id, "items", len(reqs), "model", c.model)
	return id, nil
}

// PollStatus asks the provider for the job's status.
func (c *Client) PollStatus(ctx context.Context, jobID string) (Status, error) {
	if jobID == "" {
		return "", fmt.Errorf("%w: no batch id available", ErrUnknownJob)
	}
	s, err := c.provider.BatchStatus(ctx, jobID)
	if err != nil {
		if errors.Is(err, providers.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrUnknownJob, jobID)
		}
		return "", fmt.Errorf("failed to get batch status: %w", err)
	}
	if jobID == c.jobID && !Terminal(c.status) {
		c.status = s
	}
	c.logger.Debug("batch status", "job", jobID, "status", s)
	return s, nil
}

// Wait suspends the caller according to the backoff schedule.
func (c *Client) Wait(ctx context.Context, initial time.Duration) error {
	return c.backoff.Wait(ctx, initial)
}

// WaitForCompletion polls jobID, waiting between polls, until the job reaches
// a terminal status or the retry budget runs out. The wait schedule restarts
// at initial; the retry budget carries over from earlier waits.
func (c *Client) WaitForCompletion(ctx context.Context, jobID string, initial time.Duration) (Status, error) {
	c.backoff.Reset()
	for {
		s, err := c.PollStatus(ctx, jobID)
		if err != nil {
			return "", err
		}
		if Terminal(s) {
			return s, nil
		}
		if err := c.Wait(ctx, initial); err != nil {
			if errors.Is(err, ErrRetryBudgetExhausted) {
				return s, fmt.Errorf("batch %s still %s: %w", jobID, s, err)
			}
			return s, err
		}
	}
}

// FetchResults reads the results of an ended job and writes each response into
// its item. Results whose correlation id matches no item, or that the provider
// did not complete, are logged and left out. Order follows the provider.
func (c *Client) FetchResults(ctx context.Context, jobID string) ([]Result, error) {
	if jobID == "" {
		return nil, fmt.Errorf("%w: no batch id available", ErrUnknownJob)
	}
	if jobID == c.jobID && c.status != StatusEnded {
		return nil, fmt.Errorf("%w: batch %s is %s, not ended", ErrInvalidState, jobID, c.status)
	}

	stream, err := c.provider.BatchResults(ctx, jobID)
	if err != nil {
		if errors.Is(err, providers.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownJob, jobID)
		}
		return nil, fmt.Errorf("failed to get batch results: %w", err)
	}

	var results []Result
	for entry, err := range stream {
		if err != nil {
			return nil, fmt.Errorf("failed to get batch results: %w", err)
		}
		item, ok := c.byID[entry.CorrelationID]
		if !ok {
			c.logger.Warn("no message found for correlation id", "id", entry.CorrelationID, "job", jobID)
			continue
		}
		if !entry.Succeeded {
			c.logger.Warn("batch request did not succeed", "file", item.FileName, "reason", entry.Error)
			continue
		}
		if item.Reconciled {
			c.logger.Warn("duplicate result for correlation id", "id", entry.CorrelationID, "file", item.FileName)
			continue
		}
		item.Response = entry.Text
		item.Reconciled = true
		results = append(results, Result{
			CorrelationID: item.CorrelationID,
			FileName:      item.FileName,
			SizeLabel:     item.SizeLabel,
			Content:       item.Response,
		})
	}
	return results, nil
}

// EstimateCost prices every answered item at model's rates. Prompt and
// response are counted with separate calls; unanswered items cost nothing.
func (c *Client) EstimateCost(ctx context.Context, model string) (float64, error) {
	rate, err := Pricing(model)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, it := range c.items {
		if it.Response == "" {
			continue
		}
		inTokens, err := c.provider.CountTokens(ctx, model, []providers.Message{{Role: "user", Content: it.Prompt}})
		if err != nil {
			return 0, fmt.Errorf("counting prompt tokens for %s: %w", it.FileName, err)
		}
		outTokens, err := c.provider.CountTokens(ctx, model, []providers.Message{{Role: "user", Content: it.Response}})
		if err != nil {
			return 0, fmt.Errorf("counting response tokens for %s: %w", it.FileName, err)
		}
		inCost, outCost := rate.Cost(inTokens, outTokens)
		c.logger.Debug("input token cost", "file", it.FileName, "size", it.SizeLabel, "tokens", inTokens, "usd", inCost)
		c.logger.Debug("output token cost", "file", it.FileName, "size", it.SizeLabel, "tokens", outTokens, "usd", outCost)
		c.logger.Debug("combined cost", "file", it.FileName, "usd", inCost+outCost)
		total += inCost + outCost
	}
	c.logger.Debug("total cost of the batch", "usd", total)
	return total, nil
}
