package batch

import "errors"

var (
	// ErrInvalidState is returned when an operation is not allowed in the
	// job's current status, such as enqueuing after submission.
	ErrInvalidState = errors.New("invalid batch state")

	// ErrEmptyBatch is returned by Submit when nothing was enqueued.
	ErrEmptyBatch = errors.New("no messages to send in batch")

	// ErrUnknownJob is returned for an empty or unrecognised job id.
	ErrUnknownJob = errors.New("unknown batch job")

	// ErrUnknownModel is returned when a model has no entry in the rate table.
	ErrUnknownModel = errors.New("unknown model")

	// ErrRetryBudgetExhausted is returned when polling ran out of waits before
	// the provider finished the job.
	ErrRetryBudgetExhausted = errors.New("max retries reached")
)
