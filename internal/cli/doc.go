// Package cli wires together the Cobra command tree for the prbatch binary.
//
// It defines the root command and its subcommands (review, config, models,
// version), binds flags, loads configuration, builds the GitHub and Anthropic
// clients for a review run, and maps errors to exit codes: 0 on success, 1
// on any failure.
package cli
