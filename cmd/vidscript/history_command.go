package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"vidscript/internal/catalog"
	"vidscript/internal/textutil"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var format string
	var limit int
	var media string
	var pruneDays int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded transcription runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := validateFormat(format)
			if err != nil {
				return err
			}
			cfg := ctx.config
			if !cfg.Catalog.Enabled {
				return errors.New("run catalog is disabled (set catalog.enabled = true)")
			}
			store, err := catalog.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run catalog: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if pruneDays > 0 {
				cutoff := time.Now().AddDate(0, 0, -pruneDays)
				removed, err := store.Prune(cmd.Context(), cutoff)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %d runs started before %s\n", removed, cutoff.Format(time.DateOnly))
			}

			var runs []*catalog.Run
			if media != "" {
				runs, err = store.ForMedia(cmd.Context(), media)
			} else {
				runs, err = store.List(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			if ok, err := writeStructured(cmd, format, runs); ok || err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Started", "Media", "Status", "Language", "Duration", "Segments", "Elapsed", "Model"},
				historyRows(runs),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table, json or yaml")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show, 0 for all")
	cmd.Flags().StringVar(&media, "media", "", "Only show runs for this media file")
	cmd.Flags().IntVar(&pruneDays, "prune", 0, "Delete finished runs older than this many days first")
	return cmd
}

func historyRows(runs []*catalog.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		language := run.Language
		if language != "" && run.LanguageProbability > 0 {
			language = fmt.Sprintf("%s (%.2f)", language, run.LanguageProbability)
		}
		elapsed := "-"
		if d := run.Elapsed(); d > 0 {
			elapsed = d.Round(time.Second).String()
		}
		status := string(run.Status)
		if run.ErrorMessage != "" {
			status += ": " + run.ErrorMessage
		}
		rows = append(rows, []string{
			run.StartedAt.Local().Format(time.DateTime),
			filepath.Base(run.MediaPath),
			status,
			language,
			textutil.FormatTimestamp(run.Duration, false, "."),
			strconv.Itoa(run.Segments),
			elapsed,
			run.Model,
		})
	}
	return rows
}
