// =============================================================================
// Inventory Consolidator - Logging
// =============================================================================
//
// Every module logs through the small printf-style Logger interface below.
// The production implementation is backed by zap's SugaredLogger; tests use
// Nop().
//
// =============================================================================

package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is an interface for logging.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Options controls how the logger is built.
type Options struct {
	// Level is one of "debug", "info", "warn", "error". Default: "info"
	Level string

	// Verbose forces the debug level.
	Verbose bool

	// File is an optional log file written in addition to stderr.
	File string
}

// zapLogger adapts a zap.SugaredLogger to Logger.
type zapLogger struct {
	s *zap.SugaredLogger
}

// New builds a console logger writing to stderr (and File when set).
func New(opts Options) (Logger, func(), error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.OutputPaths = []string{"stderr"}
	if opts.File != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, opts.File)
	}

	z, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	sync := func() { _ = z.Sync() }
	return &zapLogger{s: z.Sugar()}, sync, nil
}

// Wrap adapts an existing zap logger.
func Wrap(z *zap.Logger) Logger {
	return &zapLogger{s: z.Sugar()}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return Wrap(zap.NewNop())
}

// ParseLevel maps a config level name to a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

func (l *zapLogger) Debug(msg string, args ...interface{}) { l.s.Debugf(msg, args...) }
func (l *zapLogger) Info(msg string, args ...interface{})  { l.s.Infof(msg, args...) }
func (l *zapLogger) Warn(msg string, args ...interface{})  { l.s.Warnf(msg, args...) }
func (l *zapLogger) Error(msg string, args ...interface{}) { l.s.Errorf(msg, args...) }
