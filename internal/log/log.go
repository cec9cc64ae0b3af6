// Package log builds [slog.Handler]s from command line level and format
// strings.
package log

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	charmlog "charm.land/log/v2"
)

// Format represents the log output format.
type Format string

const (
	// FormatText outputs human-oriented, colourized lines.
	FormatText Format = "text"
	// FormatJSON outputs logs as JSON objects.
	FormatJSON Format = "json"
	// FormatLogfmt outputs logs in logfmt format.
	FormatLogfmt Format = "logfmt"
)

var (
	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownLogLevel indicates an unrecognized log level string.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrUnknownLogFormat indicates an unrecognized log format string.
	ErrUnknownLogFormat = errors.New("unknown log format")
)

var (
	allLevels  = []string{"error", "warn", "info", "debug"}
	allFormats = []Format{FormatText, FormatJSON, FormatLogfmt}
)

// NewHandlerFromStrings creates a [slog.Handler] from level and format
// strings.
func NewHandlerFromStrings(w io.Writer, logLevel, logFormat string) (slog.Handler, error) {
	logLvl, err := GetLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	logFmt, err := GetFormat(logFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return NewHandler(w, logLvl, logFmt), nil
}

// NewHandler creates a [slog.Handler] with the specified level and format.
func NewHandler(w io.Writer, logLvl slog.Level, logFmt Format) slog.Handler {
	switch logFmt {
	case FormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLvl})

	case FormatLogfmt:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLvl})
	}

	return charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmlog.Level(logLvl),
		ReportTimestamp: false,
	})
}

// GetLevel parses a log level string and returns the corresponding
// [slog.Level].
func GetLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownLogLevel, level)
}

// GetFormat parses a log format string and returns the corresponding [Format].
func GetFormat(format string) (Format, error) {
	logFmt := Format(strings.ToLower(format))
	if slices.Contains(allFormats, logFmt) {
		return logFmt, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownLogFormat, format)
}

// GetAllLevelStrings returns the accepted level names.
func GetAllLevelStrings() []string {
	return slices.Clone(allLevels)
}

// GetAllFormatStrings returns the accepted format names.
func GetAllFormatStrings() []string {
	out := make([]string, len(allFormats))
	for i, f := range allFormats {
		out[i] = string(f)
	}
	return out
}
