package render

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"vidscript/internal/artifact"
	"vidscript/internal/fileutil"
	"vidscript/internal/services"
	"vidscript/internal/textutil"
	"vidscript/internal/transcript"
)

// DefaultDurationThreshold is the subtitle cue budget in seconds.
const DefaultDurationThreshold = 10.0

// SRT renders SubRip subtitles from a record stream.
type SRT struct {
	// Threshold is the longest cue duration in seconds before a segment is split.
	Threshold float64
}

// Name implements artifact.Converter.
func (SRT) Name() string { return "srt" }

// OutputPath implements artifact.Converter.
func (SRT) OutputPath(source string) string { return artifact.ReplaceExt(source, "srt") }

// Generate implements artifact.Converter.
func (s SRT) Generate(ctx context.Context, source, output string) error {
	return writeCues(ctx, "srt", source, output, s.Threshold, func(w *bufio.Writer, index int, seg transcript.Segment) error {
		_, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			index,
			textutil.FormatTimestamp(seg.Start, true, ","),
			textutil.FormatTimestamp(seg.End, true, ","),
			strings.TrimSpace(seg.Text),
		)
		return err
	}, nil)
}

// VTT renders WebVTT subtitles from a record stream.
type VTT struct {
	// Threshold is the longest cue duration in seconds before a segment is split.
	Threshold float64
}

// Name implements artifact.Converter.
func (VTT) Name() string { return "vtt" }

// OutputPath implements artifact.Converter.
func (VTT) OutputPath(source string) string { return artifact.ReplaceExt(source, "vtt") }

// Generate implements artifact.Converter.
func (v VTT) Generate(ctx context.Context, source, output string) error {
	header := func(w *bufio.Writer) error {
		_, err := io.WriteString(w, "WEBVTT\n\n")
		return err
	}
	return writeCues(ctx, "vtt", source, output, v.Threshold, func(w *bufio.Writer, _ int, seg transcript.Segment) error {
		_, err := fmt.Fprintf(w, "%s --> %s\n%s\n\n",
			textutil.FormatTimestamp(seg.Start, true, "."),
			textutil.FormatTimestamp(seg.End, true, "."),
			strings.TrimSpace(seg.Text),
		)
		return err
	}, header)
}

type cueWriter func(w *bufio.Writer, index int, seg transcript.Segment) error

func writeCues(ctx context.Context, kind, source, output string, threshold float64, cue cueWriter, header func(*bufio.Writer) error) error {
	if threshold <= 0 {
		threshold = DefaultDurationThreshold
	}
	reader, err := transcript.Open(source)
	if err != nil {
		return err
	}
	defer reader.Close()

	return fileutil.WriteAtomic(output, func(out io.Writer) error {
		w := bufio.NewWriter(out)
		if header != nil {
			if err := header(w); err != nil {
				return err
			}
		}
		index := 0
		for seg := range transcript.Split(reader.Segments(), threshold) {
			if err := ctx.Err(); err != nil {
				return err
			}
			index++
			if err := cue(w, index, seg); err != nil {
				return services.Wrap(services.ErrIO, kind, "write cue", output, err)
			}
		}
		if err := checkFinished(reader); err != nil {
			return err
		}
		return w.Flush()
	})
}

// checkFinished rejects streams whose producer never wrote a terminal record.
// Failed streams are rendered with the segments they have.
func checkFinished(reader *transcript.Reader) error {
	if err := reader.Err(); err != nil {
		return err
	}
	if reader.Finished() == nil {
		return services.Wrap(services.ErrFormat, "render", "read", reader.Path()+": record stream is incomplete", nil)
	}
	return nil
}
