package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"vidscript/internal/artifact"
	"vidscript/internal/services"
	"vidscript/internal/transcript"
)

type batchFlags struct {
	force   bool
	workers int
}

func (f *batchFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.force, "force", "f", false, "Regenerate artifacts even when they are up to date")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Files processed in parallel (default from config)")
}

func (c *commandContext) newBatch(flags batchFlags, logger *slog.Logger) artifact.Batch {
	workers := flags.workers
	if workers <= 0 {
		workers = c.config.Batch.Workers
	}
	return artifact.Batch{Logger: logger, Force: flags.force, Workers: workers}
}

// streamPaths maps every argument to its record stream; media paths are
// accepted in place of the .jsonl next to them.
func streamPaths(args []string) []string {
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		if strings.EqualFold(filepath.Ext(arg), transcript.Extension) {
			paths = append(paths, arg)
			continue
		}
		paths = append(paths, transcript.OutputPath(arg))
	}
	return paths
}

// runConverters applies each converter in order to the same sources and
// prints one summary line per converter. Per-file failures do not stop later
// converters; they are reported together once every converter has run.
func runConverters(ctx context.Context, out io.Writer, batch artifact.Batch, sources []string, convs ...artifact.Converter) error {
	ctx = withRunID(ctx)
	var failed, total int
	for _, conv := range convs {
		report, err := batch.Run(ctx, conv, sources)
		printReport(out, report)
		if err != nil {
			return err
		}
		failed += report.Count(artifact.OutcomeFailed)
		total += len(report.Results)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d artifacts failed", failed, total)
	}
	return nil
}

// withRunID tags every log record of one invocation with a shared id.
func withRunID(ctx context.Context) context.Context {
	return services.WithRunID(ctx, uuid.NewString())
}

func printReport(out io.Writer, report artifact.Report) {
	fmt.Fprintf(out, "%s: %d rebuilt, %d up to date, %d failed\n",
		report.Kind,
		report.Count(artifact.OutcomeRebuilt),
		report.Count(artifact.OutcomeSkipped),
		report.Count(artifact.OutcomeFailed),
	)
	for _, res := range report.Failures() {
		fmt.Fprintf(out, "  %s: %v\n", res.Source, res.Err)
	}
}
