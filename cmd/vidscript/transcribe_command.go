package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"vidscript/internal/catalog"
	"vidscript/internal/config"
	"vidscript/internal/logging"
	"vidscript/internal/transcribe"
)

type transcribeFlags struct {
	mergeThreshold float64
	language       string
	model          string
	vadMethod      string
	cuda           bool
	local          bool
}

func (f *transcribeFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.mergeThreshold, "merge-threshold", 0, "Merge segments separated by at most this many seconds (default from config)")
	cmd.Flags().StringVarP(&f.language, "language", "l", "", "Spoken language hint, empty to auto-detect")
	cmd.Flags().StringVar(&f.model, "model", "", "WhisperX model (default from config)")
	cmd.Flags().StringVar(&f.vadMethod, "vad-method", "", "Voice activity detection: silero or pyannote")
	cmd.Flags().BoolVar(&f.cuda, "cuda", false, "Run WhisperX on the GPU")
	cmd.Flags().BoolVar(&f.local, "local", false, "Never download packages or models")
}

// apply overlays the flags the user set on the [transcribe] settings.
func (f *transcribeFlags) apply(cmd *cobra.Command, cfg *config.Config) (transcribe.Config, error) {
	tc := transcribe.ConfigFrom(cfg)
	flags := cmd.Flags()
	if flags.Changed("merge-threshold") {
		tc.MergeThreshold = f.mergeThreshold
	}
	if flags.Changed("language") {
		tc.Language = f.language
	}
	if flags.Changed("model") {
		tc.Model = f.model
	}
	if flags.Changed("vad-method") {
		tc.VADMethod = f.vadMethod
	}
	if flags.Changed("cuda") {
		tc.CUDAEnabled = f.cuda
	}
	if flags.Changed("local") {
		tc.Local = f.local
	}
	language, err := transcribe.NormalizeLanguage(tc.Language)
	if err != nil {
		return tc, err
	}
	tc.Language = language
	return tc, nil
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var flags batchFlags
	var tflags transcribeFlags

	cmd := &cobra.Command{
		Use:   "transcribe <media>...",
		Short: "Transcribe media files into record streams with WhisperX",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			cfg := ctx.config
			tc, err := tflags.apply(cmd, cfg)
			if err != nil {
				return err
			}

			opts := []transcribe.Option{transcribe.WithLogger(logger)}
			if store := openCatalog(cfg, logger); store != nil {
				defer store.Close()
				opts = append(opts, transcribe.WithRecorder(store))
			}
			service := transcribe.NewService(tc, transcribe.BinariesFrom(cfg), opts...)

			logger.Info("transcribing",
				logging.Int("files", len(args)),
				logging.String("model", service.Model()),
				logging.Float64("merge_threshold", tc.MergeThreshold),
			)
			batch := ctx.newBatch(flags, logger)
			if flags.workers <= 0 {
				batch.Workers = cfg.Transcribe.Workers
			}
			return runConverters(cmd.Context(), cmd.OutOrStdout(), batch, args, service)
		},
	}

	flags.register(cmd)
	tflags.register(cmd)
	return cmd
}

// openCatalog opens the run history when enabled. The catalog is optional for
// transcription, so failures are logged and nil is returned.
func openCatalog(cfg *config.Config, logger *slog.Logger) *catalog.Store {
	if !cfg.Catalog.Enabled {
		return nil
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		logger.Warn("run catalog unavailable",
			logging.String("path", cfg.CatalogPath()),
			logging.Error(err),
		)
		return nil
	}
	return store
}
