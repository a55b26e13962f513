package transcribe

import (
	"strings"

	"golang.org/x/text/language"

	"vidscript/internal/config"
	"vidscript/internal/services"
)

// Config captures runtime settings for one transcription service.
type Config struct {
	// Model is the WhisperX model to use (e.g., "large-v2").
	Model string
	// CUDAEnabled enables GPU acceleration.
	CUDAEnabled bool
	// VADMethod selects the voice activity detection method ("silero" or "pyannote").
	VADMethod string
	// HFToken is the Hugging Face token for pyannote VAD.
	HFToken string
	// Language hints the spoken language. Empty means auto-detect.
	Language string
	// MergeThreshold is the coalescing gap in seconds handed to the writer.
	MergeThreshold float64
	// Local forbids downloading packages or models.
	Local bool
}

// ConfigFrom maps the [transcribe] section of the application config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Model:          cfg.Transcribe.Model,
		CUDAEnabled:    cfg.Transcribe.CUDAEnabled,
		VADMethod:      cfg.Transcribe.VADMethod,
		HFToken:        cfg.Transcribe.HFToken,
		Language:       cfg.Transcribe.Language,
		MergeThreshold: cfg.Transcribe.MergeThreshold,
		Local:          cfg.Transcribe.Local,
	}
}

// Binaries names the external executables the service runs.
type Binaries struct {
	UVX     string
	FFmpeg  string
	FFprobe string
}

// BinariesFrom returns the executables configured for cfg.
func BinariesFrom(cfg *config.Config) Binaries {
	return Binaries{UVX: cfg.UVXBinary(), FFmpeg: cfg.FFmpegBinary(), FFprobe: cfg.FFprobeBinary()}
}

func (b Binaries) withDefaults() Binaries {
	if b.UVX == "" {
		b.UVX = UVXCommand
	}
	if b.FFmpeg == "" {
		b.FFmpeg = FFmpegCommand
	}
	if b.FFprobe == "" {
		b.FFprobe = FFprobeCommand
	}
	return b
}

// WhisperX configuration constants.
const (
	DefaultModel      = "large-v2"
	CUDAIndexURL      = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL      = "https://pypi.org/simple"
	BatchSize         = "4"
	ChunkSize         = "15"
	VADOnset          = "0.08"
	VADOffset         = "0.07"
	BeamSize          = "5"
	Temperature       = "0.0"
	SegmentResolution = "sentence"
	OutputFormat      = "json"
	InitialPrompt     = "Please, write with punctuation."
	CPUDevice         = "cpu"
	CUDADevice        = "cuda"
	CPUComputeType    = "float32"
	VADMethodPyannote = "pyannote"
	VADMethodSilero   = "silero"
)

// Command names for external tools.
const (
	UVXCommand     = "uvx"
	FFmpegCommand  = "ffmpeg"
	FFprobeCommand = "ffprobe"
)

// NormalizeLanguage maps a BCP 47 language hint such as "EN", "eng" or "pt-BR"
// to the ISO 639 base code WhisperX expects. An empty hint stays empty.
func NormalizeLanguage(hint string) (string, error) {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return "", nil
	}
	tag, err := language.Parse(hint)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "transcribe", "language", "unknown language "+hint, err)
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return "", services.Wrap(services.ErrValidation, "transcribe", "language", "unknown language "+hint, nil)
	}
	return base.String(), nil
}
