// Package render implements the artifact converters built on record streams:
// SRT and WebVTT subtitles, the HTML viewer page and JPEG thumbnails.
//
// Every converter satisfies artifact.Converter and writes its output
// atomically so a failed run never leaves a partial file under the final
// name. Subtitles split long segments to fit a duration budget; the HTML page
// keeps the coalesced segments and highlights words by probability.
package render
