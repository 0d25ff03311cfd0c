package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how verbosely setsim logs
type Options struct {
	// Verbose enables debug level logging
	Verbose bool

	// Quiet restricts logging to errors, ignored when Verbose is set
	Quiet bool

	// Console receives human readable output, typically os.Stderr. nil disables it.
	Console io.Writer

	// File, when set, also writes JSON logs to a size-rotated file
	File string
}

// Setup configures the global zerolog logger. Log output never goes to
// stdout, which is reserved for results.
func Setup(opts Options) error {
	var writers []io.Writer

	if opts.Console != nil {
		writers = append(writers, zerolog.ConsoleWriter{Out: opts.Console, TimeFormat: "15:04:05"})
	}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o750); err != nil {
			return err
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    1,
			MaxBackups: 2,
		})
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.SetGlobalLevel(Level(opts.Verbose, opts.Quiet))

	if len(writers) == 0 {
		log.Logger = zerolog.Nop()
		return nil
	}

	log.Logger = zerolog.New(io.MultiWriter(writers...)).
		With().Timestamp().Logger()
	return nil
}

// Level maps the CLI verbosity flags to a zerolog level
func Level(verbose, quiet bool) zerolog.Level {
	switch {
	case verbose:
		return zerolog.DebugLevel
	case quiet:
		return zerolog.ErrorLevel
	default:
		return zerolog.WarnLevel
	}
}
