// Package output renders pipeline results.
//
// A run summary can be printed in two formats:
//   - table: console tables of analyzed files with the estimated cost, and of
//     skipped files with the reason (default)
//   - json: the full structured summary
//
// [Dir] persists each file's analysis as a Markdown document named after the
// flattened repository path, for runs with an output directory configured.
// [WriteRates] prints the model pricing table.
package output
