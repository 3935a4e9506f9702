// Package batch owns the lifecycle of one provider batch job.
//
// A [Client] collects prompts with [Client.Enqueue], submits them as a single
// job, polls the job until it reaches a terminal status, matches results back
// to their prompts by correlation ID, and estimates the monetary cost of the
// run from token counts and the per-model rates in [Pricing].
//
// Polling uses [Backoff], a decreasing wait: the first wait is the longest and
// each later wait shrinks by a fixed factor down to a floor, because batch jobs
// are usually slow to start and quick to finish once they are close.
package batch
