// Package review turns a pull request into one batch of per-file analyses.
//
// Select narrows the changed files to those worth analyzing: include and
// exclude globs (doublestar syntax), significance (no deletions, pure renames,
// or diffs over MaxChanges lines), descending change count, and a file limit.
//
// BuildPromptInLanguage renders the request for one file at a given Depth.
// The checklist grows with depth; the file content is embedded verbatim. An
// optional Rules pack appends team focus areas and required checks.
//
// Pipeline drives a run end to end: list, select, fetch, enqueue, submit,
// poll, reconcile, publish. Per-file failures before submission are skipped
// and recorded in the Summary. Anything that fails after the batch is
// submitted aborts the run.
package review
