// Package artifact decides when derived files must be regenerated and runs
// converters over batches of sources.
//
// Staleness is timestamp only: an artifact is rebuilt when forced, when either
// file cannot be stat'ed, or when it is older than its source. Batch applies a
// Converter to many sources in parallel, isolates per-file failures and stops
// early only for errors marked services.ErrFatal.
package artifact
