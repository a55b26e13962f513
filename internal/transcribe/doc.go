// Package transcribe turns media files into record streams with WhisperX.
//
// The Service probes the media with ffprobe, extracts a mono 16 kHz WAV with
// ffmpeg, runs WhisperX through uvx with word timestamps and streams the
// decoded segments into a transcript.Writer, which coalesces close segments.
// Service implements artifact.Converter so batches reuse the same staleness
// check (media newer than its .jsonl) and fatal-error handling as the
// renderers. Runs are optionally recorded in the catalog.
//
// External commands go through an injectable runner so tests never need the
// real binaries.
package transcribe
