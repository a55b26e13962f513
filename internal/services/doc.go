// Package services defines the error taxonomy and context helpers shared by
// the transcript pipeline and its collaborators.
//
// Key responsibilities:
//   - Sentinel markers (format, I/O, transcription, external tool, fatal) plus
//     the Wrap helper that attaches component and operation context while
//     keeping the marker matchable with errors.Is.
//   - Context helpers that stamp run identifiers and artifact kinds so log
//     lines stay attributable when batches run in parallel.
//
// Use these helpers when wiring new converters so failure classification and
// observability stay uniform across commands.
package services
