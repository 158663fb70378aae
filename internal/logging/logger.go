package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	DefaultLevel  = "warn"
	DefaultFormat = FormatConsole

	FormatConsole    = "console"
	FormatStructured = "structured"
)

var levels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

var encodings = map[string]string{
	FormatConsole:    "console",
	FormatStructured: "json",
}

// New builds a zap logger writing to stderr so that it never interleaves
// with the commit list and summary printed on stdout.
func New(level, format string) (*zap.Logger, error) {
	zapLevel, ok := levels[strings.ToLower(level)]
	if !ok {
		return nil, fmt.Errorf("unsupported log level: %s", level)
	}

	encoding, ok := encodings[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}

	configuration := zap.NewProductionConfig()
	configuration.Level = zap.NewAtomicLevelAt(zapLevel)
	configuration.Encoding = encoding
	configuration.OutputPaths = []string{"stderr"}
	configuration.ErrorOutputPaths = []string{"stderr"}
	if encoding == "console" {
		configuration.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		configuration.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		configuration.DisableStacktrace = true
	}

	return configuration.Build()
}
