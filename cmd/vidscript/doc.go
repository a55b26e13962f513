// Package main hosts the vidscript CLI entrypoint and command graph.
//
// Every subcommand resolves configuration once through commandContext, builds
// a logger that honors --log overrides, and hands the real work to the
// internal packages: transcribe for record streams, render and artifact for
// derived files, index for directory trees, and serve for local previews.
package main
