// Package log provides the levelled logging functions used by the commands and the pipeline.
package log

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	guard  sync.RWMutex
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger = mustBuild("text")
)

// Setup configures the default logger. Level is one of debug, info, warn or error and format is
// either "text" or "json".
func Setup(lvl, format string) error {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(lvl)))); err != nil {
		return fmt.Errorf("invalid log level '%v'", lvl)
	}

	z, err := build(format)
	if err != nil {
		return err
	}

	level.SetLevel(l)

	guard.Lock()
	defer guard.Unlock()

	logger.Sync()
	logger = z

	return nil
}

// SetDebug is a shortcut for enabling/disabling debug level logging.
func SetDebug(enabled bool) {
	if enabled {
		level.SetLevel(zapcore.DebugLevel)
	} else if level.Level() == zapcore.DebugLevel {
		level.SetLevel(zapcore.InfoLevel)
	}
}

// IsDebug returns true if debug level logging is enabled.
func IsDebug() bool {
	return level.Enabled(zapcore.DebugLevel)
}

func Debugf(format string, args ...any) {
	get().Debugf(format, args...)
}

func Infof(format string, args ...any) {
	get().Infof(format, args...)
}

func Warnf(format string, args ...any) {
	get().Warnf(format, args...)
}

func Errorf(format string, args ...any) {
	get().Errorf(format, args...)
}

// With returns a logger that adds the key/value pairs to every entry.
func With(args ...any) *zap.SugaredLogger {
	return get().With(args...)
}

func Sync() {
	get().Sync()
}

func get() *zap.SugaredLogger {
	guard.RLock()
	defer guard.RUnlock()

	return logger
}

func build(format string) (*zap.SugaredLogger, error) {
	config := zap.NewProductionConfig()

	config.Level = level
	config.Sampling = nil
	config.DisableStacktrace = true
	config.DisableCaller = true
	config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")

	switch strings.ToLower(format) {
	case "json":
		config.Encoding = "json"

	case "", "text", "console":
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	default:
		return nil, fmt.Errorf("invalid log format '%v'", format)
	}

	z, err := config.Build()
	if err != nil {
		return nil, err
	}

	return z.Sugar(), nil
}

func mustBuild(format string) *zap.SugaredLogger {
	l, err := build(format)
	if err != nil {
		panic(err)
	}

	return l
}
