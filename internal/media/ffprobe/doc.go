// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect runs ffprobe; Parse decodes an already captured payload so callers
// that run the binary themselves (or fake it in tests) share the decoding.
// Result exposes the container duration and the audio stream to transcribe.
package ffprobe
