package utils

import (
	"io"
	"os"
	"strings"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
)

// NewLogger builds the process logger writing to stderr
func NewLogger(level string, json bool) (log.Logger, error) {
	return NewLoggerTo(os.Stderr, level, json)
}

// NewLoggerTo builds a leveled logger on w; an empty level means info
func NewLoggerTo(w io.Writer, level string, json bool) (log.Logger, error) {
	if level == "" {
		level = "info"
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, err
	}

	opts := []log.Option{log.LevelOption(lvl)}
	if json {
		opts = append(opts, log.OutputJSONOption())
	} else {
		opts = append(opts, log.ColorOption(false))
	}
	return log.NewLogger(w, opts...), nil
}
