// Package providers implements the BatchProvider interface for asynchronous
// model batch APIs.
//
// The only provider is Anthropic's Message Batches API, reached through the
// official Go SDK: one call creates a batch of prompts keyed by custom id,
// another polls its processing status, and the results are decoded lazily
// from the batch's JSONL results. Token counts for cost estimation come from
// the count_tokens endpoint.
//
// The SDK retries rate-limit (429) and overload (5xx) responses. Polling
// cadence between status calls is not handled here; see the batch package.
//
// Use [New] to obtain a BatchProvider by name.
package providers
