// Package redact removes secrets from file content before it is sent to the
// model provider.
//
// Detection uses regex heuristics covering common secret shapes: API keys,
// JWTs, private keys, AWS keys, bearer tokens, database connection strings,
// and provider-specific tokens (Anthropic, OpenAI, GitHub, Slack).
//
// A [Redactor] can also withhold whole files whose paths match configured
// globs.
package redact
