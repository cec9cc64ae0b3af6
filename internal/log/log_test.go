package log_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/docjs/internal/log"
)

func TestGetLevel(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input       string
		expected    slog.Level
		expectError bool
	}{
		"error level":      {input: "error", expected: slog.LevelError},
		"warn level":       {input: "warn", expected: slog.LevelWarn},
		"warning level":    {input: "warning", expected: slog.LevelWarn},
		"info level":       {input: "info", expected: slog.LevelInfo},
		"debug level":      {input: "debug", expected: slog.LevelDebug},
		"case insensitive": {input: "DEBUG", expected: slog.LevelDebug},
		"unknown level":    {input: "loud", expectError: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			lvl, err := log.GetLevel(tc.input)
			if tc.expectError {
				require.ErrorIs(t, err, log.ErrUnknownLogLevel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, lvl)
		})
	}
}

func TestGetFormat(t *testing.T) {
	t.Parallel()

	for _, f := range []string{"text", "json", "logfmt", "JSON"} {
		_, err := log.GetFormat(f)
		require.NoError(t, err, f)
	}
	_, err := log.GetFormat("xml")
	require.ErrorIs(t, err, log.ErrUnknownLogFormat)
}

func TestNewHandlerFromStrings(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h, err := log.NewHandlerFromStrings(&buf, "info", "json")
	require.NoError(t, err)

	logger := slog.New(h)
	logger.Debug("hidden")
	logger.Info("resolved files", slog.Int("files", 2))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "resolved files", rec["msg"])
	assert.InDelta(t, 2, rec["files"], 0)

	_, err = log.NewHandlerFromStrings(&buf, "nope", "json")
	require.ErrorIs(t, err, log.ErrInvalidArgument)
	_, err = log.NewHandlerFromStrings(&buf, "info", "nope")
	require.ErrorIs(t, err, log.ErrUnknownLogFormat)
}

func TestTextHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h, err := log.NewHandlerFromStrings(&buf, "warn", "text")
	require.NoError(t, err)

	logger := slog.New(h)
	logger.Info("quiet")
	logger.Warn("skipping dependency", slog.String("file", "a.js"))

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "skipping dependency")
	assert.Contains(t, buf.String(), "a.js")
}

func TestConfig(t *testing.T) {
	t.Parallel()

	cfg := log.NewConfig()
	cmd := &cobra.Command{Use: "test"}
	cfg.RegisterFlags(cmd.Flags())
	require.NoError(t, cfg.RegisterCompletions(cmd))

	require.NoError(t, cmd.Flags().Parse([]string{"--log-level", "debug", "--log-format", "logfmt"}))
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "logfmt", cfg.Format)

	var buf bytes.Buffer
	logger, err := cfg.NewLogger(&buf)
	require.NoError(t, err)
	logger.Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")
}
