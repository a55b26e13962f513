// Package index builds the directory index page for a tree of transcribed
// media.
//
// Aggregation walks the tree, regenerates stale artifacts for every record
// stream through the configured converters, reads the <head> of every HTML
// page and rewrites index.html only when a page is newer than the existing
// index.
package index
