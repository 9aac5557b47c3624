/*
Package logx wraps zerolog for the SeaSnap server and CLI.

The process keeps one global logger, set up by InitServerLogger or InitCLILogger.
Handlers log through Ctx to pick up the request-scoped fields added by RequestLogger;
everything else uses the key/value helpers below.
*/
package logx

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitServerLogger installs the server logger. Development logs go to stderr through the
// console writer at debug level; other environments write JSON lines to stdout at info.
// A non-empty level overrides the environment default.
func InitServerLogger(development bool, level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var (
		out io.Writer = os.Stdout
		lvl           = zerolog.InfoLevel
	)
	if development {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		lvl = zerolog.DebugLevel
	}
	if parsed, err := zerolog.ParseLevel(level); err == nil && level != "" {
		lvl = parsed
	}

	log.Logger = zerolog.New(out).Level(lvl).With().Timestamp().Caller().Logger()
}

// InitCLILogger installs a console logger on w for the command-line client. Only warnings
// and errors are shown unless verbose is set.
func InitCLILogger(w io.Writer, verbose bool) {
	lvl := zerolog.WarnLevel
	if verbose {
		lvl = zerolog.DebugLevel
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(lvl).With().Timestamp().Logger()
}

// Logger returns the global logger.
func Logger() *zerolog.Logger {
	return &log.Logger
}

// Ctx returns the request-scoped logger stored in ctx, or the global logger.
func Ctx(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return Logger()
}

// checkFields drops a field list that is not made of key/value pairs, since zerolog
// would otherwise panic on it.
func checkFields(level string, fields []any) []any {
	if len(fields)%2 == 0 {
		return fields
	}
	Logger().Warn().
		Str("log_level", level).
		Int("fields_count", len(fields)).
		Msg("Odd number of log fields, dropping them")
	return nil
}

func emit(ev *zerolog.Event, level, msg string, fields []any) {
	ev.Fields(checkFields(level, fields)).CallerSkipFrame(2).Msg(msg)
}

func Debug(msg string, fields ...any) { emit(Logger().Debug(), "debug", msg, fields) }

func Info(msg string, fields ...any) { emit(Logger().Info(), "info", msg, fields) }

func Warn(msg string, fields ...any) { emit(Logger().Warn(), "warn", msg, fields) }

// Error logs err with msg and the key/value fields.
func Error(err error, msg string, fields ...any) {
	emit(Logger().Error().Err(err), "error", msg, fields)
}

// Fatal logs like Error and exits the process with status 1.
func Fatal(err error, msg string, fields ...any) {
	emit(Logger().Fatal().Err(err), "fatal", msg, fields)
}
