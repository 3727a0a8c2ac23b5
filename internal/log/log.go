// Package log builds the process zap logger and holds the shared level.
package log

import (
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is an alias for zapcore.Level
type Level = zapcore.Level

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
)

// globalLevel allows runtime level changes
var globalLevel = zap.NewAtomicLevelAt(InfoLevel)

// Config selects the level and encoding of the logger built by New.
type Config struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// New builds a logger writing to stderr whose level follows SetLevel.
func New(cfg Config) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	SetLevel(level)

	var zc zap.Config
	switch strings.ToLower(cfg.Format) {
	case "", "console":
		zc = zap.NewDevelopmentConfig()
		zc.Development = false
	case "json":
		zc = zap.NewProductionConfig()
	default:
		return nil, errors.Newf("unknown log format %q", cfg.Format)
	}
	zc.Level = globalLevel
	zc.DisableStacktrace = true
	return zc.Build()
}

// ParseLevel parses a level name; an empty string means info.
func ParseLevel(s string) (Level, error) {
	if s == "" {
		return InfoLevel, nil
	}
	var level Level
	if err := level.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return InfoLevel, errors.Wrapf(err, "parse log level %q", s)
	}
	return level, nil
}

// SetLevel changes the log level at runtime.
func SetLevel(level Level) {
	globalLevel.SetLevel(level)
}

// GetLevel returns the current log level.
func GetLevel() Level {
	return globalLevel.Level()
}
