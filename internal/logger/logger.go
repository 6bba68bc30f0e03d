package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName is attached to every log line emitted by the production logger.
const ServiceName = "finance-dashboard-api"

// Log formats accepted by New.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New builds the process logger. json is the production encoder; console is
// the human-readable development encoder.
func New(format string, debugMode bool, version string) (*zap.Logger, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		return NewProductionLogger(debugMode, version)
	case FormatConsole:
		return NewDevelopmentLogger(debugMode)
	default:
		return nil, fmt.Errorf("unknown log format %q (want %s or %s)", format, FormatJSON, FormatConsole)
	}
}

func level(debugMode bool) zap.AtomicLevel {
	if debugMode {
		return zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zap.NewAtomicLevelAt(zapcore.InfoLevel)
}

// NewProductionLogger creates a JSON logger tagged with service and version.
func NewProductionLogger(debugMode bool, version string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = level(debugMode)
	config.Encoding = FormatJSON
	config.EncoderConfig = zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	config.InitialFields = map[string]any{
		"service": ServiceName,
		"version": version,
	}

	return config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
}

// NewDevelopmentLogger creates a console logger for local runs.
func NewDevelopmentLogger(debugMode bool) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.Level = level(debugMode)
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return config.Build()
}

// Sync flushes any buffered log entries. Safe to call with a nil logger.
func Sync(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}
	return logger.Sync()
}
