// =============================================================================
// Wide-to-Long Normalizer - Logging
// =============================================================================
//
// Builds the zap logger shared by the commands and the per-file pipeline.
// Logs go to stderr so that command output on stdout stays machine readable.
//
// =============================================================================

package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configure the logger.
type Options struct {
	// Level is "debug", "info", "warn" or "error". Empty means "info".
	Level string

	// Verbose forces debug level regardless of Level.
	Verbose bool

	// File is an optional additional output path.
	File string
}

// New builds a production zap logger.
//
// RETURNS:
//   - The logger. Call Sync before exiting.
//   - An error if the level is unknown or the log file cannot be opened.
func New(opts Options) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stderr"}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if opts.Level != "" {
		level, err := zap.ParseAtomicLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		config.Level = level
	}
	if opts.Verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		config.Sampling = nil
	}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		config.OutputPaths = append(config.OutputPaths, opts.File)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
