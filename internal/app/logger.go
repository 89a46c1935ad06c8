package app

import (
	"fmt"

	"github.com/andy/billbook/internal/config"
	"go.uber.org/zap"
)

// newLogger writes JSON logs to the configured file so they never mix
// with CLI or TUI output. An empty file disables logging.
func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	if cfg.File == "" {
		return zap.NewNop(), nil
	}

	level := zap.InfoLevel.String()
	if cfg.Level != "" {
		level = cfg.Level
	}
	atomic, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = atomic
	zcfg.OutputPaths = []string{cfg.File}
	zcfg.ErrorOutputPaths = []string{cfg.File}
	zcfg.Sampling = nil

	return zcfg.Build()
}
