// Package catalog keeps a SQLite history of transcription runs.
//
// Every transcribe invocation that regenerates a record stream opens a run
// with Begin and closes it with Finish. Runs carry a uuid so log lines and
// catalog rows can be correlated. The database is a convenience history, not a
// source of truth: record streams on disk remain authoritative, and schema
// changes bump schemaVersion in schema.go; users delete catalog.db to adopt
// them.
package catalog
