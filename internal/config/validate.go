package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranscribe(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTranscribe() error {
	if c.Transcribe.MergeThreshold < 0 {
		return errors.New("transcribe.merge_threshold must be >= 0")
	}
	switch c.Transcribe.VADMethod {
	case "silero":
	case "pyannote":
		if c.Transcribe.HFToken == "" {
			return errors.New("transcribe.hf_token is required when transcribe.vad_method is pyannote (or set HF_TOKEN)")
		}
	default:
		return fmt.Errorf("transcribe.vad_method: unsupported value %q", c.Transcribe.VADMethod)
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.DurationThreshold <= 0 {
		return errors.New("render.duration_threshold must be > 0")
	}
	if err := ValidateSize(c.Render.ThumbSize); err != nil {
		return fmt.Errorf("render.thumb_size: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("logging.color: unsupported value %q", c.Logging.Color)
	}
	return nil
}

// ValidateSize checks a WIDTHxHEIGHT value; at most one dimension may be -1.
func ValidateSize(value string) error {
	width, height, ok := strings.Cut(strings.TrimSpace(value), "x")
	if !ok {
		return fmt.Errorf("invalid size %q: use WIDTHxHEIGHT", value)
	}
	w, errW := strconv.Atoi(width)
	h, errH := strconv.Atoi(height)
	if errW != nil || errH != nil {
		return fmt.Errorf("invalid size %q: use WIDTHxHEIGHT", value)
	}
	if w == -1 && h == -1 {
		return fmt.Errorf("invalid size %q: only one dimension may be -1", value)
	}
	if (w <= 0 && w != -1) || (h <= 0 && h != -1) {
		return fmt.Errorf("invalid size %q: dimensions must be positive or -1", value)
	}
	return nil
}
