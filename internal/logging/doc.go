// Package logging assembles structured slog loggers and formatting helpers used
// across vidscript commands.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so batch code can tag log lines with run
// identifiers and artifact kinds. Per-component level overrides mirror the
// `--log component:level` command line syntax. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
//
// Core packages receive a *slog.Logger from their caller and never reach for a
// global logger; prefer these constructors over hand-rolled slog setup.
package logging
