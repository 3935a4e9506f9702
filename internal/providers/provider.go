package providers

import (
	"context"
	"fmt"
	"iter"
)

// BatchStatus is the provider-neutral processing state of a batch job.
type BatchStatus string

const (
	BatchNotSubmitted BatchStatus = "not_submitted"
	BatchInProgress   BatchStatus = "in_progress"
	BatchEnded        BatchStatus = "ended"
	BatchErrored      BatchStatus = "errored"
)

// BatchRequest is one prompt submitted as part of a batch.
type BatchRequest struct {
	CorrelationID string
	Prompt        string
	Model         string
	MaxTokens     int
}

// BatchResult is one entry of a finished batch. Succeeded is false for
// entries the provider errored, canceled, or expired; Error then carries
// the provider's reason.
type BatchResult struct {
	CorrelationID string
	Text          string
	Succeeded     bool
	Error         string
}

// Message is a single chat turn used for token counting.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResultStream yields batch results once, in provider order. Ranging over it
// a second time yields a single error.
type ResultStream = iter.Seq2[BatchResult, error]

// BatchProvider is the asynchronous batch abstraction a model provider exposes.
type BatchProvider interface {
	CreateBatch(ctx context.Context, reqs []BatchRequest) (string, error)
	BatchStatus(ctx context.Context, batchID string) (BatchStatus, error)
	BatchResults(ctx context.Context, batchID string) (ResultStream, error)
	CountTokens(ctx context.Context, model string, messages []Message) (int, error)
	Name() string
}

// New creates a batch provider by name.
func New(provider, apiKey string) (BatchProvider, error) {
	switch provider {
	case "anthropic", "":
		return NewAnthropic(apiKey)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}
