// Package transcript implements the on-disk record stream that holds one
// media file's transcription and the segment transforms around it.
//
// A stream is a JSON Lines file next to its media file (same stem, .jsonl
// extension) with exactly one header record first, zero or more segment
// records in time order, and exactly one terminal record last. A missing
// terminal means the producer crashed or is still running; a failed terminal
// means the segments are partial.
//
// Writer owns a stream for its whole lifetime and coalesces incoming segments
// whose gap is at most the merge threshold. Reader validates the header and
// yields segments lazily until the terminal. Split re-divides long segments at
// word boundaries for display.
package transcript
