package config

import "runtime"

const (
	defaultStateDir          = "~/.local/share/vidscript"
	defaultMergeThreshold    = 1.0
	defaultModel             = "large-v2"
	defaultVADMethod         = "silero"
	defaultTranscribeWorkers = 1
	defaultDurationThreshold = 10.0
	defaultThumbSize         = "320x-1"
	defaultServeBind         = "127.0.0.1:8000"
	defaultServeDirectory    = "videos"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogColor          = "auto"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Transcribe: Transcribe{
			MergeThreshold: defaultMergeThreshold,
			Model:          defaultModel,
			VADMethod:      defaultVADMethod,
			Workers:        defaultTranscribeWorkers,
		},
		Render: Render{
			DurationThreshold: defaultDurationThreshold,
			ThumbSize:         defaultThumbSize,
		},
		Batch: Batch{
			Workers: runtime.NumCPU(),
		},
		Serve: Serve{
			Bind:      defaultServeBind,
			Directory: defaultServeDirectory,
		},
		Catalog: Catalog{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			Color:  defaultLogColor,
		},
	}
}
