package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"vidscript/internal/textutil"
	"vidscript/internal/transcript"
)

type streamView struct {
	transcript.Summary `yaml:",inline"`
	Status             string `json:"status" yaml:"status"`
	Error              string `json:"error,omitempty" yaml:"error,omitempty"`
}

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "inspect <stream.jsonl|media>...",
		Short: "Summarize record streams",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := validateFormat(format)
			if err != nil {
				return err
			}
			var errs []error
			views := make([]streamView, 0, len(args))
			for _, path := range streamPaths(args) {
				summary, err := transcript.Inspect(path)
				view := streamView{Summary: summary, Status: summary.Status()}
				if summary.Path == "" {
					view.Path = path
				}
				if err != nil {
					view.Error = err.Error()
					errs = append(errs, fmt.Errorf("%s: %w", path, err))
				}
				views = append(views, view)
			}

			if ok, err := writeStructured(cmd, format, views); ok || err != nil {
				if err != nil {
					return err
				}
				return errors.Join(errs...)
			}

			rows := make([][]string, 0, len(views))
			for _, view := range views {
				info := view.Header.Info
				status := view.Status
				if view.Error != "" {
					status = "error"
				}
				rows = append(rows, []string{
					filepath.Base(view.Path),
					info.Language,
					textutil.ProbabilityBand(info.LanguageProbability),
					textutil.FormatTimestamp(info.Duration, false, "."),
					strconv.Itoa(view.Segments),
					strconv.Itoa(view.Words),
					textutil.FormatTimestamp(view.LastEnd, false, "."),
					status,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Stream", "Language", "Confidence", "Duration", "Segments", "Words", "Last End", "Status"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
			))
			for _, view := range views {
				if view.Terminal != nil && view.Terminal.Exc != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", filepath.Base(view.Path), view.Terminal.Exc)
				}
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table, json or yaml")
	return cmd
}
