// Package decode turns raw input files into the structures the audit engine
// consumes: tabular rows for order files and positioned text tokens for
// delivery documents.
//
// Decoders never return partially decoded content together with an error.
// A malformed document yields an error and nothing else, so one bad file can
// be skipped without contaminating the run.
package decode
