package deps

import (
	"vidscript/internal/config"
)

// Requirements lists the external tools vidscript commands run.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for audio extraction and thumbnails",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for media duration and audio stream detection",
		},
		{
			Name:        "uvx",
			Command:     cfg.UVXBinary(),
			Description: "Required for WhisperX-driven transcription",
		},
	}
}

// CheckSystem evaluates binaries and the configured directories. The state
// directory is only checked when the run catalog is enabled.
func CheckSystem(cfg *config.Config) []Status {
	statuses := CheckBinaries(Requirements(cfg))
	if cfg.Catalog.Enabled {
		status := CheckDirectoryAccess("State directory", cfg.Paths.StateDir, true)
		status.Description = "Run catalog location"
		statuses = append(statuses, status)
	}
	if cfg.Serve.Directory != "" {
		status := CheckDirectoryAccess("Serve directory", cfg.Serve.Directory, false)
		status.Description = "Default directory for serve and index"
		status.Optional = true
		statuses = append(statuses, status)
	}
	return statuses
}
