package app

import (
	"errors"

	"github.com/zclconf/go-cty/cty"
)

// Config holds everything an App instance needs to run one task.
type Config struct {
	// ProjectDir is the project root; the configuration file and .env are
	// resolved relative to it unless ConfigPath is set explicitly.
	ProjectDir string
	ConfigPath string

	// Network optionally overrides the configured default network.
	Network string

	LogFormat string
	LogLevel  string

	// TaskName is the task to run, with its named arguments and the bare
	// positional values in command-line order.
	TaskName       string
	TaskArgs       map[string]cty.Value
	PositionalArgs []cty.Value
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.TaskName == "" {
		return nil, errors.New("TaskName is a required configuration field and cannot be empty")
	}
	if cfg.ProjectDir == "" {
		cfg.ProjectDir = "."
	}
	return &cfg, nil
}
