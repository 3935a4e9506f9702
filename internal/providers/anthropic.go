package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

var errStreamConsumed = errors.New("batch result stream already consumed")

// defaultMaxTokens applies to requests that do not set MaxTokens.
const defaultMaxTokens = 1024

// Anthropic implements BatchProvider on top of the Message Batches API.
type Anthropic struct {
	client anthropic.Client
}

// NewAnthropic creates a new Anthropic provider. An empty key falls back to
// ANTHROPIC_API_KEY. Rate-limit (429) and server (5xx) responses are retried
// by the SDK.
func NewAnthropic(apiKey string, opts ...option.RequestOption) (*Anthropic, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, &authError{message: "ANTHROPIC_API_KEY is not set"}
	}
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(3),
		option.WithRequestTimeout(120 * time.Second),
	}
	return &Anthropic{client: anthropic.NewClient(append(base, opts...)...)}, nil
}

func (a *Anthropic) Name() string { return "anthropic" }

// CreateBatch submits every request as one message batch and returns its id.
func (a *Anthropic) CreateBatch(ctx context.Context, reqs []BatchRequest) (string, error) {
	params := anthropic.MessageBatchNewParams{
		Requests: make([]anthropic.MessageBatchNewParamsRequest, 0, len(reqs)),
	}
	for _, r := range reqs {
		maxTokens := r.MaxTokens
		if maxTokens == 0 {
			maxTokens = defaultMaxTokens
		}
		params.Requests = append(params.Requests, anthropic.MessageBatchNewParamsRequest{
			CustomID: r.CorrelationID,
			Params: anthropic.MessageBatchNewParamsRequestParams{
				Model:     anthropic.Model(r.Model),
				MaxTokens: int64(maxTokens),
				Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(r.Prompt))},
			},
		})
	}

	batch, err := a.client.Messages.Batches.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("creating batch: %w", classify(err))
	}
	if batch.ID == "" {
		return "", fmt.Errorf("creating batch: response carried no batch id")
	}
	return batch.ID, nil
}

// BatchStatus retrieves the batch and maps its processing status.
func (a *Anthropic) BatchStatus(ctx context.Context, batchID string) (BatchStatus, error) {
	batch, err := a.retrieve(ctx, batchID)
	if err != nil {
		return "", err
	}
	return batchStatus(batch), nil
}

// BatchResults opens the JSONL results of an ended batch. The SDK decodes the
// response body lazily; the stream closes it when iteration stops.
func (a *Anthropic) BatchResults(ctx context.Context, batchID string) (ResultStream, error) {
	batch, err := a.retrieve(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch.ProcessingStatus != anthropic.MessageBatchProcessingStatusEnded {
		return nil, fmt.Errorf("batch %s has not ended (status %s)", batchID, batch.ProcessingStatus)
	}

	consumed := false
	return func(yield func(BatchResult, error) bool) {
		if consumed {
			yield(BatchResult{}, errStreamConsumed)
			return
		}
		consumed = true

		stream := a.client.Messages.Batches.ResultsStreaming(ctx, batchID)
		defer stream.Close()
		for stream.Next() {
			if !yield(result(stream.Current()), nil) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			yield(BatchResult{}, fmt.Errorf("reading batch results: %w", classify(err)))
		}
	}, nil
}

// CountTokens returns the input token count the model would see for messages.
func (a *Anthropic) CountTokens(ctx context.Context, model string, messages []Message) (int, error) {
	params := anthropic.MessageCountTokensParams{
		Model:    anthropic.Model(model),
		Messages: make([]anthropic.MessageParam, 0, len(messages)),
	}
	for _, m := range messages {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == "assistant" {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(block))
			continue
		}
		params.Messages = append(params.Messages, anthropic.NewUserMessage(block))
	}

	count, err := a.client.Messages.CountTokens(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("counting tokens: %w", classify(err))
	}
	return int(count.InputTokens), nil
}

func (a *Anthropic) retrieve(ctx context.Context, batchID string) (*anthropic.MessageBatch, error) {
	batch, err := a.client.Messages.Batches.Get(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("retrieving batch %s: %w", batchID, classify(err))
	}
	return batch, nil
}

// classify maps SDK API errors onto this package's error kinds.
func classify(err error) error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &authError{message: apiErr.Error()}
	case http.StatusNotFound:
		return fmt.Errorf("%w: %v", ErrNotFound, apiErr)
	default:
		return fmt.Errorf("API error (status %d): %w", apiErr.StatusCode, err)
	}
}

// batchStatus maps processing_status onto BatchStatus. An ended batch in
// which no request succeeded is reported as errored.
func batchStatus(b *anthropic.MessageBatch) BatchStatus {
	switch b.ProcessingStatus {
	case anthropic.MessageBatchProcessingStatusInProgress, anthropic.MessageBatchProcessingStatusCanceling:
		return BatchInProgress
	case anthropic.MessageBatchProcessingStatusEnded:
		c := b.RequestCounts
		if c.Succeeded == 0 && c.Errored+c.Canceled+c.Expired > 0 {
			return BatchErrored
		}
		return BatchEnded
	default:
		return BatchErrored
	}
}

func result(e anthropic.MessageBatchIndividualResponse) BatchResult {
	r := BatchResult{CorrelationID: e.CustomID}
	if e.Result.Type != "succeeded" {
		r.Error = string(e.Result.Type)
		if msg := e.Result.Error.Error.Message; msg != "" {
			r.Error += ": " + msg
		}
		return r
	}
	r.Succeeded = true
	var sb strings.Builder
	for _, block := range e.Result.Message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	r.Text = sb.String()
	return r
}
