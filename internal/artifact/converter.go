package artifact

import "context"

// Converter produces one kind of derived artifact from a source file.
type Converter interface {
	// Name identifies the artifact kind, for example "srt" or "thumbnail".
	Name() string
	// OutputPath deterministically derives the artifact path from source.
	OutputPath(source string) string
	// Generate writes output from source. Implementations must not leave a
	// partial file at output on failure.
	Generate(ctx context.Context, source, output string) error
}

// SourceResolver is implemented by converters whose real input differs from
// the path they are handed, such as a thumbnail built from the media file a
// record stream points at.
type SourceResolver interface {
	ResolveSource(source string) (string, error)
}
