// Prbatch sends the changed files of a GitHub pull request to Claude as a
// single message batch and publishes one analysis per file.
//
// Files are selected with include and exclude globs, ranked by the number of
// changed lines, and capped by count and size. Once the batch ends, each
// analysis is posted as a pull request comment, written as Markdown, or both,
// followed by a summary with the estimated batch cost.
//
// Usage:
//
//	prbatch review --pr 42 --repo octo/app             # analyze and print a summary
//	prbatch review --pr 42 --write-pr --level deep     # also comment on the PR
//	prbatch review --pr 42 --output ./analysis         # write Markdown files
//	prbatch config init                                # create the global config file
//	prbatch models list                                # show priced models
//
// Credentials come from GITHUB_TOKEN and ANTHROPIC_API_KEY, a .env file, or
// the --token and --key flags.
package main
