package tlog

import (
	"fmt"
	"testing"

	"github.com/ridge/must/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// New creates a top-level logger writing to stderr
func New(config Config) *zap.Logger {
	var encoding string
	var color bool
	switch config.Format {
	case FormatJSON:
		encoding = "json"
	case FormatText:
		encoding = "console"
		switch config.Color {
		case ColorYes:
			color = true
		case ColorNo:
		case ColorAuto, "":
			color = term.IsTerminal(unix.Stderr)
		default:
			panic(fmt.Errorf("unexpected color setting: %s", config.Color))
		}
	default:
		panic(fmt.Errorf("unexpected log format: %s", config.Format))
	}

	level := zapcore.InfoLevel
	if config.Verbose {
		level = zapcore.DebugLevel
	}

	logger := must.OK1(zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      config.Format == FormatText,
		Encoding:         encoding,
		EncoderConfig:    encoderConfig(config.Format, color),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}.Build())

	if config.Name != "" {
		logger = logger.Named(config.Name)
	}
	return logger
}

// NewForTesting creates a debug-level logger writing to the test log
func NewForTesting(t testing.TB) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.Level(zapcore.DebugLevel))
}
