package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTranscribe()
	c.normalizeRender()
	if c.Batch.Workers <= 0 {
		c.Batch.Workers = runtime.NumCPU()
	}
	c.Serve.Bind = strings.TrimSpace(c.Serve.Bind)
	if c.Serve.Bind == "" {
		c.Serve.Bind = defaultServeBind
	}
	c.Serve.Directory = strings.TrimSpace(c.Serve.Directory)
	if c.Serve.Directory == "" {
		c.Serve.Directory = defaultServeDirectory
	}
	return c.normalizeLogging()
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTranscribe() {
	c.Transcribe.Language = strings.ToLower(strings.TrimSpace(c.Transcribe.Language))
	if c.Transcribe.Language == "auto" {
		c.Transcribe.Language = ""
	}
	c.Transcribe.Model = strings.TrimSpace(c.Transcribe.Model)
	if c.Transcribe.Model == "" {
		if value, ok := os.LookupEnv("VIDSCRIPT_WHISPERX_MODEL"); ok && strings.TrimSpace(value) != "" {
			c.Transcribe.Model = strings.TrimSpace(value)
		} else {
			c.Transcribe.Model = defaultModel
		}
	}
	c.Transcribe.VADMethod = strings.ToLower(strings.TrimSpace(c.Transcribe.VADMethod))
	if c.Transcribe.VADMethod == "" {
		c.Transcribe.VADMethod = defaultVADMethod
	}
	if c.Transcribe.Workers <= 0 {
		c.Transcribe.Workers = defaultTranscribeWorkers
	}
	c.Transcribe.HFToken = strings.TrimSpace(c.Transcribe.HFToken)
	if c.Transcribe.HFToken == "" {
		if value, ok := os.LookupEnv("HUGGING_FACE_HUB_TOKEN"); ok {
			c.Transcribe.HFToken = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("HF_TOKEN"); ok {
			c.Transcribe.HFToken = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeRender() {
	c.Render.ThumbSize = strings.ToLower(strings.TrimSpace(c.Render.ThumbSize))
	if c.Render.ThumbSize == "" {
		c.Render.ThumbSize = defaultThumbSize
	}
	c.Render.Stylesheet = strings.TrimSpace(c.Render.Stylesheet)
	c.Render.JavaScript = strings.TrimSpace(c.Render.JavaScript)
	entries := c.Render.HTMLHeadEntries[:0]
	for _, entry := range c.Render.HTMLHeadEntries {
		if strings.TrimSpace(entry) != "" {
			entries = append(entries, entry)
		}
	}
	c.Render.HTMLHeadEntries = entries
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Color = strings.ToLower(strings.TrimSpace(c.Logging.Color))
	if c.Logging.Color == "" {
		c.Logging.Color = defaultLogColor
	}
	if file := strings.TrimSpace(c.Logging.File); file != "" {
		expanded, err := expandPath(file)
		if err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
		c.Logging.File = expanded
	}
	if len(c.Logging.Overrides) > 0 {
		overrides := make(map[string]string, len(c.Logging.Overrides))
		for component, level := range c.Logging.Overrides {
			component = strings.TrimSpace(component)
			if component == "" {
				continue
			}
			overrides[component] = strings.ToLower(strings.TrimSpace(level))
		}
		c.Logging.Overrides = overrides
	}
	return nil
}
