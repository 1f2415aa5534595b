// Package logger provides the logging utility used across the curation store.
// It keeps a small printf-style API on top of a zap core so that call sites stay
// terse while output can be switched between console, json and rotated files.
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel is a type representing the logging level.
type LogLevel int

const (
	// LevelDebug is the log level used for detailed debugging information.
	LevelDebug LogLevel = iota
	// LevelInfo is the log level used for general informational messages.
	LevelInfo
	// LevelWarn is the log level used for potential issues or warning messages.
	LevelWarn
	// LevelError is the log level used for error messages.
	LevelError
	// LevelFatal is the log level used for fatal error messages that cause application termination.
	LevelFatal
)

// Options configures the zap backend.
type Options struct {
	Level  string // DEBUG, INFO, WARN, ERROR, FATAL
	Format string // "console" (default) or "json"
	// File enables a json-encoded rotating log file in addition to stderr.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	atomicLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	sugared     atomic.Pointer[zap.SugaredLogger]
)

func init() {
	sugared.Store(build(Options{Format: "console"}, zapcore.Lock(os.Stderr)))
}

// Configure replaces the backend according to opts. It is safe to call more than once.
func Configure(opts Options) {
	configure(opts, zapcore.Lock(os.Stderr))
}

// ConfigureWithWriter is Configure with an explicit console sink. Tests use it to capture output.
func ConfigureWithWriter(opts Options, w zapcore.WriteSyncer) {
	configure(opts, w)
}

func configure(opts Options, w zapcore.WriteSyncer) {
	if opts.Level != "" {
		SetLogLevel(opts.Level)
	}
	old := sugared.Swap(build(opts, w))
	if old != nil {
		_ = old.Sync()
	}
}

func build(opts Options, console zapcore.WriteSyncer) *zap.SugaredLogger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var consoleEnc zapcore.Encoder
	if strings.EqualFold(opts.Format, "json") {
		consoleEnc = zapcore.NewJSONEncoder(encCfg)
	} else {
		consoleEnc = zapcore.NewConsoleEncoder(encCfg)
	}
	cores := []zapcore.Core{zapcore.NewCore(consoleEnc, console, atomicLevel)}

	if opts.File != "" {
		// lumberjack handles rotation and concurrent writes.
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), fileWriter, atomicLevel))
	}
	return zap.New(zapcore.NewTee(cores...)).Named("intactdb").Sugar()
}

// SetLogLevel sets the global log level.
// Valid string values are "DEBUG", "INFO", "WARN", "ERROR", "FATAL" (case-insensitive).
// If an invalid value is specified, the default "INFO" level is used.
func SetLogLevel(level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		atomicLevel.SetLevel(zapcore.DebugLevel)
	case "INFO":
		atomicLevel.SetLevel(zapcore.InfoLevel)
	case "WARN":
		atomicLevel.SetLevel(zapcore.WarnLevel)
	case "ERROR":
		atomicLevel.SetLevel(zapcore.ErrorLevel)
	case "FATAL":
		atomicLevel.SetLevel(zapcore.FatalLevel)
	default:
		fmt.Fprintf(os.Stderr, "Unknown log level '%s' specified. Defaulting to INFO level.\n", level)
		atomicLevel.SetLevel(zapcore.InfoLevel)
	}
}

// GetLogLevel returns the current global log level.
func GetLogLevel() LogLevel {
	switch atomicLevel.Level() {
	case zapcore.DebugLevel:
		return LevelDebug
	case zapcore.WarnLevel:
		return LevelWarn
	case zapcore.ErrorLevel:
		return LevelError
	case zapcore.FatalLevel:
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Sync flushes buffered log entries.
func Sync() error {
	return sugared.Load().Sync()
}

// Debugf formats and outputs a DEBUG level log message.
func Debugf(format string, v ...interface{}) {
	sugared.Load().Debugf(format, v...)
}

// Infof formats and outputs an INFO level log message.
func Infof(format string, v ...interface{}) {
	sugared.Load().Infof(format, v...)
}

// Warnf formats and outputs a WARN level log message.
func Warnf(format string, v ...interface{}) {
	sugared.Load().Warnf(format, v...)
}

// Errorf formats and outputs an ERROR level log message.
func Errorf(format string, v ...interface{}) {
	sugared.Load().Errorf(format, v...)
}

// Fatalf formats and outputs a FATAL level log message,
// then terminates the program by calling os.Exit(1).
func Fatalf(format string, v ...interface{}) {
	sugared.Load().Fatalf(format, v...)
}
