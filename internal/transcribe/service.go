package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"vidscript/internal/catalog"
	"vidscript/internal/logging"
	"vidscript/internal/media/ffprobe"
	"vidscript/internal/services"
	"vidscript/internal/textutil"
	"vidscript/internal/transcript"
)

// Runner executes an external command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Recorder keeps a history of transcription runs. *catalog.Store implements it.
type Recorder interface {
	Begin(ctx context.Context, mediaPath, recordPath, model string) (string, error)
	Finish(ctx context.Context, id string, outcome catalog.Outcome) error
}

// Option configures a Service.
type Option func(*Service)

// WithCommandRunner sets a custom command runner (for testing).
func WithCommandRunner(runner Runner) Option {
	return func(s *Service) { s.runner = runner }
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithRecorder records every run in the provided history.
func WithRecorder(recorder Recorder) Option {
	return func(s *Service) { s.recorder = recorder }
}

// Service provides WhisperX transcription of media files into record streams.
type Service struct {
	cfg      Config
	bins     Binaries
	runner   Runner
	logger   *slog.Logger
	recorder Recorder
}

// NewService creates a transcription service with the given configuration.
func NewService(cfg Config, bins Binaries, opts ...Option) *Service {
	s := &Service{cfg: cfg, bins: bins.withDefaults()}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	s.logger = logging.NewComponentLogger(s.logger, "transcribe")
	return s
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	if s.cfg.Model != "" {
		return s.cfg.Model
	}
	return DefaultModel
}

// Name implements artifact.Converter.
func (*Service) Name() string { return "transcribe" }

// OutputPath implements artifact.Converter.
func (*Service) OutputPath(source string) string { return transcript.OutputPath(source) }

// Generate implements artifact.Converter: it transcribes source into its
// record stream. Failures before any segment is known leave an existing
// stream untouched; failures while streaming segments finalize the new
// stream with a failure terminal that keeps every segment written so far.
func (s *Service) Generate(ctx context.Context, source, output string) error {
	if output != transcript.OutputPath(source) {
		return services.Wrap(services.ErrValidation, "transcribe", "generate",
			fmt.Sprintf("record stream for %s must be %s", source, transcript.OutputPath(source)), nil)
	}
	lang, err := NormalizeLanguage(s.cfg.Language)
	if err != nil {
		return err
	}
	if err := s.lookup(); err != nil {
		return err
	}
	logger := logging.WithContext(ctx, s.logger).With(logging.String(logging.FieldSource, source))

	probe, err := s.probe(ctx, source)
	if err != nil {
		return err
	}
	audio, ok := probe.FirstAudioStream()
	if !ok {
		return services.Wrap(services.ErrValidation, "transcribe", "probe", source+" has no audio stream", nil)
	}

	workDir, err := os.MkdirTemp("", "vidscript-transcribe-")
	if err != nil {
		return services.Wrap(services.ErrIO, "transcribe", "workdir", "create temporary directory", err)
	}
	defer os.RemoveAll(workDir)

	logger.Info("transcribing",
		logging.String("language", orDefault(lang, "auto")),
		logging.Float64("merge_threshold", s.cfg.MergeThreshold),
		logging.String("model", s.Model()),
	)

	wav := filepath.Join(workDir, "audio.wav")
	if _, err := s.run(ctx, s.bins.FFmpeg, buildExtractArgs(source, audio.Index, wav)...); err != nil {
		return services.Wrap(services.ErrExternalTool, "transcribe", "extract audio", source, err)
	}
	console, err := s.run(ctx, s.bins.UVX, s.buildArgs(wav, workDir, lang)...)
	if err != nil {
		return services.Wrap(services.ErrTranscription, "transcribe", "whisperx", source, err)
	}
	result, err := loadPayload(filepath.Join(workDir, "audio.json"))
	if err != nil {
		return services.Wrap(services.ErrTranscription, "transcribe", "whisperx output", source, err)
	}

	info := buildInfo(probe.DurationSeconds(), lang, result.Language, console)
	logDetection(logger, lang != "", info)

	runID := s.begin(ctx, logger, source, output)
	segments := 0
	_, err = transcript.Write(source, info, s.cfg.MergeThreshold, func(w *transcript.Writer) error {
		for i, raw := range result.Segments {
			if err := ctx.Err(); err != nil {
				return err
			}
			seg, err := decodeSegment(raw)
			if err != nil {
				return fmt.Errorf("segment %d: %w", i, err)
			}
			if err := w.Add(seg); err != nil {
				return err
			}
			segments++
		}
		return nil
	}, transcript.WithLogger(logger))
	s.finish(ctx, logger, runID, catalog.Outcome{
		Language:            info.Language,
		LanguageProbability: info.LanguageProbability,
		Duration:            info.Duration,
		Segments:            segments,
		Err:                 err,
	})
	return err
}

// buildInfo assembles the header metadata. A forced language is certain; a
// detected one takes the probability WhisperX printed, if any.
func buildInfo(duration float64, forced, reported string, console []byte) transcript.Info {
	info := transcript.Info{Duration: duration, AllLanguageProbs: []transcript.LanguageProb{}}
	switch {
	case forced != "":
		info.Language = forced
		info.LanguageProbability = 1
	default:
		info.Language = reported
		if lang, prob, ok := detectedLanguage(console); ok {
			if info.Language == "" {
				info.Language = lang
			}
			if lang == info.Language {
				info.LanguageProbability = prob
			}
		}
	}
	if info.Language != "" && info.LanguageProbability > 0 {
		info.AllLanguageProbs = append(info.AllLanguageProbs, transcript.LanguageProb{
			Language:    info.Language,
			Probability: info.LanguageProbability,
		})
	}
	return info
}

func logDetection(logger *slog.Logger, forced bool, info transcript.Info) {
	method := "detected"
	if forced {
		method = "forced"
	}
	attrs := []slog.Attr{
		logging.String("method", method),
		logging.String("language", orDefault(info.Language, "unknown")),
		logging.String("duration", textutil.FormatTimestamp(info.Duration, false, ".")),
	}
	if info.LanguageProbability > 0 {
		attrs = append(attrs,
			logging.Float64("language_probability", info.LanguageProbability),
			logging.String("confidence", textutil.ProbabilityBand(info.LanguageProbability)),
		)
	}
	logger.Info("language", logging.Args(attrs...)...)
}

func (s *Service) probe(ctx context.Context, source string) (ffprobe.Result, error) {
	out, err := s.run(ctx, s.bins.FFprobe, ffprobe.Args(source)...)
	if err != nil {
		return ffprobe.Result{}, services.Wrap(services.ErrExternalTool, "transcribe", "ffprobe", source, err)
	}
	result, err := ffprobe.Parse(out)
	if err != nil {
		return ffprobe.Result{}, services.Wrap(services.ErrExternalTool, "transcribe", "ffprobe", source, err)
	}
	return result, nil
}

// lookup fails the whole batch when a required binary is missing.
func (s *Service) lookup() error {
	if s.runner != nil {
		return nil
	}
	for _, binary := range []string{s.bins.FFprobe, s.bins.FFmpeg, s.bins.UVX} {
		if _, err := exec.LookPath(binary); err != nil {
			return services.Wrap(services.ErrFatal, "transcribe", "lookup", fmt.Sprintf("%s not found in PATH", binary), err)
		}
	}
	return nil
}

func (s *Service) begin(ctx context.Context, logger *slog.Logger, source, output string) string {
	if s.recorder == nil {
		return ""
	}
	id, err := s.recorder.Begin(ctx, source, output, s.Model())
	if err != nil {
		logger.Warn("could not record run",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.state_dir or disable [catalog]"),
		)
		return ""
	}
	return id
}

func (s *Service) finish(ctx context.Context, logger *slog.Logger, id string, outcome catalog.Outcome) {
	if s.recorder == nil || id == "" {
		return
	}
	// The run is closed even when the transcription was canceled.
	if err := s.recorder.Finish(context.WithoutCancel(ctx), id, outcome); err != nil {
		logger.Warn("could not finish run", logging.String("catalog_id", id), logging.Error(err))
	}
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if s.runner != nil {
		return s.runner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 changed torch.load default to weights_only=true, breaking WhisperX/pyannote.
	env := os.Environ()
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		env = append(env, "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}
	if s.cfg.Local {
		env = append(env, "HF_HUB_OFFLINE=1")
	}
	cmd.Env = env

	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return output, fmt.Errorf("%s: %w: %s", name, err, lastLines(output, 5))
		}
		return output, fmt.Errorf("%s: %w", name, err)
	}
	return output, nil
}

func lastLines(output []byte, n int) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
