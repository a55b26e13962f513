package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"vidscript/internal/artifact"
	"vidscript/internal/config"
	"vidscript/internal/render"
)

type pageFlags struct {
	threshold   float64
	thumbSize   render.Size
	stylesheet  string
	javascript  string
	headEntries []string
}

func (f *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.threshold, "duration-threshold", render.DefaultDurationThreshold, "Split subtitle cues longer than this many seconds")
	cmd.Flags().Var(&f.thumbSize, "thumb-size", "Thumbnail size as WIDTHxHEIGHT, -1 keeps the aspect ratio (default from config)")
	cmd.Flags().StringVar(&f.stylesheet, "stylesheet", "", "Stylesheet URL used instead of the built-in one")
	cmd.Flags().StringVar(&f.javascript, "javascript", "", "Script URL used instead of the built-in one")
	cmd.Flags().StringArrayVar(&f.headEntries, "html-head-entry", nil, "Raw markup added to the page <head> (repeatable)")
}

// converters returns the page pipeline in dependency order: subtitles and
// thumbnail first so the page can reference them.
func (f *pageFlags) converters(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) ([]artifact.Converter, error) {
	flags := cmd.Flags()
	threshold := f.threshold
	if !flags.Changed("duration-threshold") {
		threshold = cfg.Render.DurationThreshold
	}
	size := f.thumbSize
	if !flags.Changed("thumb-size") {
		parsed, err := render.ParseSize(cfg.Render.ThumbSize)
		if err != nil {
			return nil, err
		}
		size = parsed
	}
	page := render.HTML{
		HeadEntries: cfg.Render.HTMLHeadEntries,
		Stylesheet:  cfg.Render.Stylesheet,
		JavaScript:  cfg.Render.JavaScript,
		Logger:      logger,
	}
	if flags.Changed("html-head-entry") {
		page.HeadEntries = f.headEntries
	}
	if flags.Changed("stylesheet") {
		page.Stylesheet = f.stylesheet
	}
	if flags.Changed("javascript") {
		page.JavaScript = f.javascript
	}
	return []artifact.Converter{
		render.VTT{Threshold: threshold},
		&render.Thumbnail{Size: size, FFmpeg: cfg.FFmpegBinary()},
		page,
	}, nil
}

func newHTMLCommand(ctx *commandContext) *cobra.Command {
	var flags batchFlags
	var page pageFlags

	cmd := &cobra.Command{
		Use:   "html <stream.jsonl|media>...",
		Short: "Generate transcript pages with subtitles and thumbnails",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			convs, err := page.converters(cmd, ctx.config, logger)
			if err != nil {
				return err
			}
			batch := ctx.newBatch(flags, logger)
			return runConverters(cmd.Context(), cmd.OutOrStdout(), batch, streamPaths(args), convs...)
		},
	}

	flags.register(cmd)
	page.register(cmd)
	return cmd
}

func newThumbnailCommand(ctx *commandContext) *cobra.Command {
	var flags batchFlags
	var size render.Size

	cmd := &cobra.Command{
		Use:   "thumbnail <media|stream.jsonl>...",
		Short: "Extract a representative JPEG frame from media files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("thumb-size") {
				size, err = render.ParseSize(ctx.config.Render.ThumbSize)
				if err != nil {
					return err
				}
			}
			thumb := &render.Thumbnail{Size: size, FFmpeg: ctx.config.FFmpegBinary()}
			batch := ctx.newBatch(flags, logger)
			return runConverters(cmd.Context(), cmd.OutOrStdout(), batch, args, thumb)
		},
	}

	flags.register(cmd)
	cmd.Flags().Var(&size, "thumb-size", "Thumbnail size as WIDTHxHEIGHT, -1 keeps the aspect ratio (default from config)")
	return cmd
}
