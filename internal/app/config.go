package app

import (
	"errors"
	"fmt"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ModelPath      string // .hcl file/directory or .json config
	VariationsPath string // optional YAML/JSON variations document

	LogFormat   string
	LogLevel    string
	WorkerCount int // <= 0 means use available parallelism
	ShowDiagram bool
	TableRows   int // rows shown from each end of a scenario's series
}

// NewConfig validates a Config and applies defaults. Logging options are
// checked here, against the same tables newLogger reads, so a config that
// passes validation always produces the logger it asked for.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("ModelPath is a required configuration field and cannot be empty")
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = logFormatText
	}
	if cfg.LogFormat != logFormatText && cfg.LogFormat != logFormatJSON {
		return nil, fmt.Errorf("invalid log-format %q: must be %q or %q", cfg.LogFormat, logFormatText, logFormatJSON)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, ok := logLevels[cfg.LogLevel]; !ok {
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if cfg.TableRows <= 0 {
		cfg.TableRows = 5
	}
	return &cfg, nil
}
