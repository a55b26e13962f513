// Package textutil provides text helpers shared by the transcript and render
// packages.
//
// The primary use cases are:
//   - Formatting second offsets as subtitle timestamps
//   - Deriving human readable page titles from media file names
//   - Classifying word probabilities into display bands
package textutil
