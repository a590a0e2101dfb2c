// Package logger configures the global zerolog logger for the portal.
package logger

import (
	"io"
	"os"
	"path"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelWriter routes log lines to a writer per level group.
type LevelWriter struct {
	io.Writer
	ErrorWriter io.Writer
	InfoWriter  io.Writer
	TraceWriter io.Writer
	WarnWriter  io.Writer
}

// WriteLevel picks the target writer for the given level. Error, fatal
// and panic share the error writer; debug and info share the info
// writer.
func (lw *LevelWriter) WriteLevel(l zerolog.Level, p []byte) (n int, err error) {
	var w io.Writer

	if l == zerolog.Disabled {
		return 0, nil
	}

	switch {
	case l == zerolog.TraceLevel:
		w = lw.TraceWriter
	case l == zerolog.WarnLevel:
		w = lw.WarnWriter
	case l > zerolog.WarnLevel:
		w = lw.ErrorWriter
	default:
		w = lw.InfoWriter
	}

	return w.Write(p) //nolint:wrapcheck
}

// Init configures the global zerolog logger from the Log config
// section. At least one of the console or file writers should be
// enabled, otherwise log output is discarded.
func Init(cfg Log) error {
	logLevel, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrapf(err, "loglevel %s is not supported", cfg.LogLevel)
	}

	if cfg.ServiceName == "" {
		return ErrServiceNameIsEmpty
	}

	if cfg.AppName == "" {
		return ErrAppNameIsEmpty
	}

	// trace level carries error stacks
	stack := logLevel == zerolog.TraceLevel
	if stack {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack //nolint:reassign
	}

	zerolog.SetGlobalLevel(logLevel)
	zerolog.ErrorHandler = ErrorHandler //nolint:reassign

	ph := NewPrometheusHook(cfg.ServiceName)

	var writers []io.Writer

	if cfg.Console.Enabled {
		writers = append(writers, NewConsoleWriter(cfg))
	}

	if cfg.File.Enabled {
		writers = append(writers, newRollingLevelFiles(cfg))
	}

	mw := zerolog.MultiLevelWriter(writers...)

	switch {
	case cfg.ReportCaller && stack:
		log.Logger = zerolog.New(mw).Hook(ph).With().Timestamp().Stack().Logger()
	case cfg.ReportCaller:
		log.Logger = zerolog.New(mw).Hook(ph).With().Timestamp().Caller().Logger()
	default:
		log.Logger = zerolog.New(mw).Hook(ph).With().Timestamp().Logger()
	}

	return nil
}

func rollingFile(dir, filename string, maxSize, maxAge, maxBackups int) io.Writer {
	return &lumberjack.Logger{
		Filename:   path.Join(dir, filename),
		MaxSize:    maxSize,
		MaxAge:     maxAge,
		MaxBackups: maxBackups,
		LocalTime:  false,
		Compress:   false,
	}
}

// newRollingLevelFiles builds a LevelWriter over one lumberjack rolling
// file per level group.
func newRollingLevelFiles(cfg Log) io.Writer {
	if err := os.MkdirAll(cfg.File.Path, 0o750); err != nil { //nolint: mnd
		log.Error().Err(err).Str("path", cfg.File.Path).Msg("can't create log directory")

		return nil
	}

	return &LevelWriter{
		ErrorWriter: rollingFile(cfg.File.Path, cfg.File.ErrorLog,
			cfg.File.ErrorMaxSize, cfg.File.ErrorMaxAge, cfg.File.ErrorMaxBackups),
		InfoWriter: rollingFile(cfg.File.Path, cfg.File.InfoLog,
			cfg.File.InfoMaxSize, cfg.File.InfoMaxAge, cfg.File.InfoMaxBackups),
		TraceWriter: rollingFile(cfg.File.Path, cfg.File.TraceLog,
			cfg.File.TraceMaxSize, cfg.File.TraceMaxAge, cfg.File.TraceMaxBackups),
		WarnWriter: rollingFile(cfg.File.Path, cfg.File.WarnLog,
			cfg.File.WarnMaxSize, cfg.File.WarnMaxAge, cfg.File.WarnMaxBackups),
	}
}

// NewConsoleWriter writes info to stdout and everything else to stderr,
// optionally through zerolog's human readable ConsoleWriter.
func NewConsoleWriter(cfg Log) io.Writer {
	lw := LevelWriter{
		ErrorWriter: os.Stderr,
		InfoWriter:  os.Stdout,
		TraceWriter: os.Stderr,
		WarnWriter:  os.Stderr,
	}

	if cfg.Console.UseConsoleWriter {
		pretty := func(out io.Writer) io.Writer {
			return zerolog.ConsoleWriter{
				Out:        out,
				NoColor:    false,
				TimeFormat: zerolog.TimeFieldFormat,
			}
		}

		lw.ErrorWriter = pretty(os.Stderr)
		lw.InfoWriter = pretty(os.Stdout)
		lw.TraceWriter = pretty(os.Stderr)
		lw.WarnWriter = pretty(os.Stderr)
	}

	return &lw
}
