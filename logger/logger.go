// Package logger provides a configurable logging facility that can be enabled or disabled
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the verbosity level of logging
type LogLevel int

// Available log levels
const (
	LevelNone  LogLevel = iota // No logging
	LevelError                 // Only errors
	LevelWarn                  // Warnings and errors
	LevelInfo                  // Informational messages, warnings, and errors
	LevelDebug                 // Debug messages, informational messages, warnings, and errors
)

var (
	defaultLogger *Logger
	defaultMu     sync.RWMutex
)

// Logger wraps a zap SugaredLogger with printf-style helpers
type Logger struct {
	enabled bool
	level   LogLevel
	sugar   *zap.SugaredLogger
}

// Config holds configuration for the logger
type Config struct {
	Enabled bool
	Level   LogLevel
	Output  io.Writer
}

func init() {
	defaultLogger = New(Config{Enabled: true, Level: LevelInfo})
}

// New creates a new logger with the provided configuration
func New(config Config) *Logger {
	if !config.Enabled || config.Level == LevelNone {
		return &Logger{enabled: false, level: LevelNone, sugar: zap.NewNop().Sugar()}
	}

	output := config.Output
	if output == nil {
		output = os.Stdout
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(output),
		config.Level.zapLevel(),
	)

	return &Logger{
		enabled: true,
		level:   config.Level,
		sugar:   zap.New(core).Sugar(),
	}
}

// SetDefault sets the default logger instance
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// Default returns the logger used by the package-level functions
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// Configure replaces the default logger
func Configure(config Config) {
	SetDefault(New(config))
}

// Sync flushes the default logger
func Sync() {
	_ = Default().sugar.Sync()
}

// Debug logs a debug message if the logger is enabled and level is appropriate
func Debug(format string, v ...interface{}) { Default().Debug(format, v...) }

// Info logs an info message if the logger is enabled and level is appropriate
func Info(format string, v ...interface{}) { Default().Info(format, v...) }

// Warn logs a warning message if the logger is enabled and level is appropriate
func Warn(format string, v ...interface{}) { Default().Warn(format, v...) }

// Error logs an error message if the logger is enabled and level is appropriate
func Error(format string, v ...interface{}) { Default().Error(format, v...) }

// Fatal logs a fatal error message and exits
func Fatal(format string, v ...interface{}) { Default().Fatal(format, v...) }

// Methods for Logger instance

func (l *Logger) Debug(format string, v ...interface{}) {
	if l.enabled && l.level >= LevelDebug {
		l.sugar.Debugf(format, v...)
	}
}

func (l *Logger) Info(format string, v ...interface{}) {
	if l.enabled && l.level >= LevelInfo {
		l.sugar.Infof(format, v...)
	}
}

func (l *Logger) Warn(format string, v ...interface{}) {
	if l.enabled && l.level >= LevelWarn {
		l.sugar.Warnf(format, v...)
	}
}

func (l *Logger) Error(format string, v ...interface{}) {
	if l.enabled && l.level >= LevelError {
		l.sugar.Errorf(format, v...)
	}
}

// Fatal logs a fatal error message and exits
func (l *Logger) Fatal(format string, v ...interface{}) {
	if l.enabled {
		l.sugar.Errorf("[FATAL] "+format, v...)
		_ = l.sugar.Sync()
	}
	// Even if logging is disabled, we still need to exit
	os.Exit(1)
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LevelError:
		return zapcore.ErrorLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelDebug:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// String returns a string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelNone:
		return "NONE"
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return fmt.Sprintf("LogLevel(%d)", l)
	}
}

// LevelFromString converts a string to a LogLevel
func LevelFromString(level string) LogLevel {
	switch level {
	case "NONE":
		return LevelNone
	case "ERROR":
		return LevelError
	case "WARN":
		return LevelWarn
	case "INFO":
		return LevelInfo
	case "DEBUG":
		return LevelDebug
	default:
		return LevelInfo // Default to INFO if not recognized
	}
}
