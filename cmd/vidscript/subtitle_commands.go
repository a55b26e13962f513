package main

import (
	"github.com/spf13/cobra"

	"vidscript/internal/artifact"
	"vidscript/internal/render"
)

func newSRTCommand(ctx *commandContext) *cobra.Command {
	return newSubtitleCommand(ctx, "srt", "Generate SubRip subtitles from record streams", func(threshold float64) artifact.Converter {
		return render.SRT{Threshold: threshold}
	})
}

func newVTTCommand(ctx *commandContext) *cobra.Command {
	return newSubtitleCommand(ctx, "vtt", "Generate WebVTT subtitles from record streams", func(threshold float64) artifact.Converter {
		return render.VTT{Threshold: threshold}
	})
}

func newSubtitleCommand(ctx *commandContext, name, short string, build func(float64) artifact.Converter) *cobra.Command {
	var flags batchFlags
	var threshold float64

	cmd := &cobra.Command{
		Use:   name + " <stream.jsonl|media>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("duration-threshold") {
				threshold = ctx.config.Render.DurationThreshold
			}
			batch := ctx.newBatch(flags, logger)
			return runConverters(cmd.Context(), cmd.OutOrStdout(), batch, streamPaths(args), build(threshold))
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&threshold, "duration-threshold", render.DefaultDurationThreshold, "Split cues longer than this many seconds at word boundaries")
	return cmd
}
