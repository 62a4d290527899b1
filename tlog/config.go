package tlog

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format is the log output format
type Format string

// Format values
const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Color selects coloring of the text format
type Color string

// Color values
const (
	ColorAuto Color = "auto"
	ColorYes  Color = "yes"
	ColorNo   Color = "no"
)

// Config describes a top-level logger
type Config struct {
	Name    string // logger name (optional)
	Format  Format
	Color   Color
	Verbose bool // log at Debug level
}

// AddFlags registers the logging flags on the flag set. The returned
// function reads the parsed values.
func AddFlags(fs *pflag.FlagSet) func() (Config, error) {
	format := fs.String("log-format", string(FormatText), "log format: text or json")
	color := fs.String("log-color", string(ColorAuto), "color text logs: auto, yes or no")
	verbose := fs.BoolP("verbose", "v", false, "log debug messages")
	return func() (Config, error) {
		config := Config{Format: Format(*format), Color: Color(*color), Verbose: *verbose}
		switch config.Format {
		case FormatJSON, FormatText:
		default:
			return Config{}, fmt.Errorf("invalid --log-format value %q", *format)
		}
		switch config.Color {
		case ColorAuto, ColorYes, ColorNo:
		default:
			return Config{}, fmt.Errorf("invalid --log-color value %q", *color)
		}
		return config, nil
	}
}

func iso8601MicroTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02T15:04:05.000000Z0700"))
}

func encoderConfig(format Format, color bool) zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = iso8601MicroTimeEncoder
	if format == FormatText {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		if color {
			ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
	}
	return ec
}
