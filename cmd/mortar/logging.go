package main

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/LukeThoma5/mortar/internal/diagnostic"
)

func newLogger(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	f, ok := w.(*os.File)
	color := ok && isatty.IsTerminal(f.Fd())
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: !color}).
		Level(level).
		With().Timestamp().
		Logger()
}

// reportDiagnostics logs every collected diagnostic at its own level.
func reportDiagnostics(logger zerolog.Logger, diags *diagnostic.Collector) {
	for _, d := range diags.Diagnostics() {
		var ev *zerolog.Event
		switch d.Severity {
		case diagnostic.SeverityError:
			ev = logger.Error()
		case diagnostic.SeverityWarning:
			ev = logger.Warn()
		default:
			ev = logger.Debug()
		}
		ev = ev.Str("category", string(d.Category)).Str("subject", d.Subject)
		if d.Hint != "" {
			ev = ev.Str("hint", d.Hint)
		}
		ev.Msg(d.Message)
	}
	if diags.ErrorCount()+diags.WarningCount() > 0 {
		logger.Info().Msg(diags.Summary())
	}
}
