package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vidscript/internal/index"
)

func newIndexCommand(ctx *commandContext) *cobra.Command {
	var flags batchFlags
	var page pageFlags

	cmd := &cobra.Command{
		Use:   "index [dir]...",
		Short: "Generate missing artifacts and an index page for each directory tree",
		Long: "Index walks each directory, regenerates stale subtitles, thumbnails and pages\n" +
			"for every record stream it finds, and rewrites index.html when any page is newer.\n" +
			"Without arguments the configured serve directory is indexed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			dirs := args
			if len(dirs) == 0 {
				if strings.TrimSpace(ctx.config.Serve.Directory) == "" {
					return errors.New("no directory given and serve.directory is not configured")
				}
				dirs = []string{ctx.config.Serve.Directory}
			}
			convs, err := page.converters(cmd, ctx.config, logger)
			if err != nil {
				return err
			}
			batch := ctx.newBatch(flags, logger)
			aggregator := index.Aggregator{
				Logger:     logger,
				Force:      batch.Force,
				Workers:    batch.Workers,
				Converters: convs,
			}

			results, err := aggregator.Batch(withRunID(cmd.Context()), dirs)
			out := cmd.OutOrStdout()
			failed := 0
			for _, result := range results {
				state := "up to date"
				if result.Rebuilt {
					state = "rebuilt"
				}
				fmt.Fprintf(out, "%s: %d pages, index %s\n", result.Index, result.Pages, state)
				for _, report := range result.Reports {
					printReport(out, report)
				}
				failed += result.Failures()
			}
			if err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d artifacts failed", failed)
			}
			return nil
		},
	}

	flags.register(cmd)
	page.register(cmd)
	return cmd
}
