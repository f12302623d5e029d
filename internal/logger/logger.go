package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger *zap.Logger
	once         sync.Once
)

// Init initializes the global logger. Logs go to stderr so command output on
// stdout stays machine readable.
func Init(level string, development bool) error {
	var err error
	once.Do(func() {
		var zapLevel zapcore.Level
		if err = zapLevel.UnmarshalText([]byte(level)); err != nil {
			return
		}

		var config zap.Config
		if development {
			config = zap.NewDevelopmentConfig()
		} else {
			config = zap.NewProductionConfig()
			config.Encoding = "console"
			config.DisableStacktrace = true
		}
		config.Level = zap.NewAtomicLevelAt(zapLevel)
		config.OutputPaths = []string{"stderr"}
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

		globalLogger, err = config.Build()
	})
	return err
}

// Get returns the global logger instance
func Get() *zap.Logger {
	if globalLogger == nil {
		return zap.NewNop()
	}
	return globalLogger
}

// Named returns a child of the global logger for one component.
func Named(component string) *zap.Logger {
	return Get().Named(component)
}

// Sync flushes any buffered log entries
func Sync() error {
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}
