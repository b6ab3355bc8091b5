// Package logger builds the charmbracelet logger shared by the commands.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// Options configures New.
type Options struct {
	Level      string
	Prefix     string
	TimeFormat string
	Writer     io.Writer
}

// New returns a stderr logger at the requested level. An unknown level is
// an error so that typos in config files surface early.
func New(opts Options) (*charmlog.Logger, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	level := charmlog.InfoLevel
	if opts.Level != "" {
		l, err := charmlog.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = l
	}

	timeFormat := opts.TimeFormat
	if timeFormat == "" {
		timeFormat = time.Kitchen
	}

	return charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		Prefix:          opts.Prefix,
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
	}), nil
}

// Discard returns a logger that drops everything. Used as a default by
// packages that accept an optional logger.
func Discard() *charmlog.Logger {
	return charmlog.NewWithOptions(io.Discard, charmlog.Options{Level: charmlog.FatalLevel})
}
