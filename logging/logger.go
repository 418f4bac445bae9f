// Package logging builds the process-wide zap logger.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// ResolveLogFile returns the first candidate that can be opened for appending,
// creating its directory when needed. Relative candidates are anchored at cwd.
// An empty result means no candidate is writable.
func ResolveLogFile(candidates []string, cwd string) string {
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		path := candidate
		if !filepath.IsAbs(path) {
			path = filepath.Join(cwd, path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			continue
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			continue
		}
		file.Close()
		return path
	}
	return ""
}

// NewLogger builds a JSON production logger at the given level. It writes to the first
// writable candidate and falls back to stderr. The chosen path is returned for display.
func NewLogger(level string, candidates []string, cwd string) (*zap.Logger, string, error) {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, "", fmt.Errorf("invalid log level %q: %w", level, err)
	}

	output := ResolveLogFile(candidates, cwd)
	if output == "" {
		output = "stderr"
	}

	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = atomicLevel
	loggerConfig.OutputPaths = []string{output}
	loggerConfig.ErrorOutputPaths = []string{"stderr"}

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, "", err
	}
	return logger, output, nil
}
