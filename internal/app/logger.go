package app

import (
	"io"
	"log/slog"
)

// logLevels is the accepted spelling of each logging level. Config
// validation and logger construction both read it, so the two can never
// disagree about what a valid level is.
var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

const (
	logFormatText = "text"
	logFormatJSON = "json"
)

// newLogger builds the logger for one App instance. It never touches the
// process-wide default logger, so concurrent scenario batches in tests stay
// isolated from each other. Callers go through NewConfig first, which
// rejects unknown levels and formats; info/text cover anything that slips
// past.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	level, ok := logLevels[levelStr]
	if !ok {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if formatStr == logFormatJSON {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
