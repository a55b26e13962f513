package main

import (
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"vidscript/internal/config"
	"vidscript/internal/logging"
)

type commandContext struct {
	configFlag *string
	logFlags   *[]string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, logFlags *[]string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		logFlags:   logFlags,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger builds the command logger on the command's stderr. --log values win
// over the [logging] section.
func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	opts := logging.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Color:     cfg.Logging.Color,
		File:      cfg.Logging.File,
		Writer:    cmd.ErrOrStderr(),
		Overrides: maps.Clone(cfg.Logging.Overrides),
	}
	if c.logFlags != nil && len(*c.logFlags) > 0 {
		level, overrides := logging.ParseOverrides(*c.logFlags)
		if level != "" {
			opts.Level = level
		}
		if opts.Overrides == nil {
			opts.Overrides = make(map[string]string, len(overrides))
		}
		maps.Copy(opts.Overrides, overrides)
	}
	logger, err := logging.New(opts)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
