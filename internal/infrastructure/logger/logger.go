package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New cria um logger estruturado. Production gets sampled JSON with ISO8601
// timestamps; anything else gets the colourised development console.
// format overrides the encoding ("json" or "console").
func New(env, level, format string) (*zap.Logger, error) {
	var config zap.Config

	if strings.EqualFold(env, "production") {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.DisableStacktrace = true
		config.Sampling = &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		}
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	config.Level = zap.NewAtomicLevelAt(ParseLevel(level))

	switch strings.ToLower(format) {
	case "json":
		config.Encoding = "json"
		// colour codes make no sense inside JSON strings
		config.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	case "console":
		config.Encoding = "console"
	}

	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	log, err := config.Build(zap.AddCaller())
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return log, nil
}

// NewNop descarta tudo; used by tests and commands that must stay quiet
func NewNop() *zap.Logger {
	return zap.NewNop()
}

// ParseLevel maps a config string to a zap level, defaulting to info
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
