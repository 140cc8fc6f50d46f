// Package logger holds the process-wide structured logger used by every engine and sandbox package.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the shared logger. It is a no-op logger until Init or Set is called, so packages may log
// from tests without configuring anything.
var Log = zap.NewNop()

// Init builds the shared logger from a level name ("debug", "info", "warn", "error").
// Development mode switches to the console encoder with caller and stack traces on warnings.
//
// Parameters:
//   - level: the minimum level to emit
//   - development: whether to use the development configuration
//
// Returns:
//   - error: error if the level is unknown or the logger cannot be built
func Init(level string, development bool) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	Set(l)
	return nil
}

// Set replaces the shared logger. Tests use it to install a zaptest logger.
//
// Parameters:
//   - l: the logger to install; nil installs a no-op logger
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	Log = l
}

// Sync flushes any buffered log entries. Errors from syncing stderr on some platforms are ignored.
func Sync() {
	_ = Log.Sync()
}
