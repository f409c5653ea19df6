package logger

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, fn func()) (stdout string, stderr string) {
	origOut, origErr := os.Stdout, os.Stderr
	defer func() { os.Stdout, os.Stderr = origOut, origErr }()

	rOut, wOut, err := os.Pipe()
	require.NoError(t, err, "failed to create stdout pipe")
	rErr, wErr, err := os.Pipe()
	require.NoError(t, err, "failed to create stderr pipe")

	os.Stdout, os.Stderr = wOut, wErr

	fn()

	err = wOut.Close()
	require.NoError(t, err, "failed to close stdout pipe")
	err = wErr.Close()
	require.NoError(t, err, "failed to close stderr pipe")

	outBytes, err := io.ReadAll(rOut)
	require.NoError(t, err, "failed to read stdout pipe")
	errBytes, err := io.ReadAll(rErr)
	require.NoError(t, err, "failed to read stderr pipe")

	return string(outBytes), string(errBytes)
}

func TestLogger_parseLevelString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected slog.Level
	}{
		{"Debug level", "DEBUG", slog.LevelDebug},
		{"Debug level lowercase", "debug", slog.LevelDebug},
		{"Info level", "INFO", slog.LevelInfo},
		{"Info level lowercase", "info", slog.LevelInfo},
		{"Warn level", "WARN", slog.LevelWarn},
		{"Warn level lowercase", "warn", slog.LevelWarn},
		{"Error level", "ERROR", slog.LevelError},
		{"Error level lowercase", "error", slog.LevelError},
		{"Empty level falls back to info", "", slog.LevelInfo},
		{"Unknown level falls back to info", "uknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseLevelString(tt.input)

			require.Equal(t, tt.expected, got, "parseLevelString(%q) should return %v", tt.input, tt.expected)
		})
	}
}

func TestLogger_New(t *testing.T) {
	t.Run("dev is text", func(t *testing.T) {
		stdout, _ := capture(t, func() {
			logger, err := New(EnvDevelopment, LevelInfo)
			require.NoError(t, err, "New should not return an error for dev")

			logger.Info("test message", "key", "value")
		})

		require.Contains(t, stdout, "test message")
		require.Contains(t, stdout, "key=value")
	})

	t.Run("prod is JSON", func(t *testing.T) {
		stdout, _ := capture(t, func() {
			logger, err := New(EnvProduction, LevelInfo)
			require.NoError(t, err, "New should not return an error for prod")

			logger.Info("test message")
		})

		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(stdout), &entry), "prod log should be valid JSON")
	})

	t.Run("unknown environment", func(t *testing.T) {
		_, err := New("staging", LevelInfo)

		require.Error(t, err)
	})
}

func TestLogger_NewLogger(t *testing.T) {
	stdout, stderr := capture(t, func() {
		logger := NewLogger(LevelInfo)

		logger.Info("test message", "key", "value")
	})

	require.Empty(t, stderr, "Text logger should not write to stderr")
	require.NotEmpty(t, stdout, "Text logger should write to stdout")

	require.Contains(t, stdout, "test message")
	require.Contains(t, stdout, "key=value")
	require.Contains(t, stdout, "INFO")
}

func TestLogger_NewJSONLogger(t *testing.T) {
	stdout, stderr := capture(t, func() {
		logger := NewJSONLogger(LevelInfo)

		logger.Info("test message", "key", "value")
	})

	require.Empty(t, stderr, "JSON logger should not write to stderr")
	require.NotEmpty(t, stdout, "JSON logger should write to stdout")

	var entry map[string]any
	err := json.Unmarshal([]byte(stdout), &entry)
	require.NoError(t, err, "JSON log should be valid")
	require.Equal(t, "test message", entry["msg"], "JSON log should contain the message")
	require.Equal(t, "INFO", entry["level"], "JSON log should contain the level")
	require.Equal(t, "value", entry["key"], "JSON log should contain key-value pairs")
}

func TestLogger_NewNoOpLogger(t *testing.T) {
	stdout, stderr := capture(t, func() {
		logger := NewNoOpLogger()
		logger.Debug("debug message")
		logger.Info("info message")
		logger.Warn("warn message")
		logger.Error("error message")
	})

	require.Empty(t, stdout, "NoOp logger should not write to stdout")
	require.Empty(t, stderr, "NoOp logger should not write to stderr")
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		logFn    func(Logger)
		isLogged bool
	}{
		{"Debug logger logs debug", LevelDebug, func(l Logger) { l.Debug("test") }, true},
		{"Debug logger logs info", LevelDebug, func(l Logger) { l.Info("test") }, true},
		{"Debug logger logs warn", LevelDebug, func(l Logger) { l.Warn("test") }, true},
		{"Debug logger logs error", LevelDebug, func(l Logger) { l.Error("test") }, true},

		{"Info logger skips debug", LevelInfo, func(l Logger) { l.Debug("test") }, false},
		{"Info logger logs info", LevelInfo, func(l Logger) { l.Info("test") }, true},
		{"Info logger logs warn", LevelInfo, func(l Logger) { l.Warn("test") }, true},
		{"Info logger logs error", LevelInfo, func(l Logger) { l.Error("test") }, true},

		{"Warn logger skips debug", LevelWarn, func(l Logger) { l.Debug("test") }, false},
		{"Warn logger skips info", LevelWarn, func(l Logger) { l.Info("test") }, false},
		{"Warn logger logs warn", LevelWarn, func(l Logger) { l.Warn("test") }, true},
		{"Warn logger logs error", LevelWarn, func(l Logger) { l.Error("test") }, true},

		{"Error logger skips debug", LevelError, func(l Logger) { l.Debug("test") }, false},
		{"Error logger skips info", LevelError, func(l Logger) { l.Info("test") }, false},
		{"Error logger skips warn", LevelError, func(l Logger) { l.Warn("test") }, false},
		{"Error logger logs error", LevelError, func(l Logger) { l.Error("test") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _ := capture(t, func() {
				logger := NewLogger(tt.level)

				tt.logFn(logger)
			})

			hasLog := len(stdout) > 0
			require.Equal(t, tt.isLogged, hasLog, "Logger level %s: expected isLogged=%v, got hasLog=%v", tt.level, tt.isLogged, hasLog)
		})
	}
}

func TestLogger_With(t *testing.T) {
	stdout, _ := capture(t, func() {
		logger := NewLogger(LevelInfo)

		withLogger := logger.With("component", "test", "version", "1.0")

		withLogger.Info("test message")
	})

	require.NotEmpty(t, stdout, "Logger.With() should write to stdout")

	require.Contains(t, stdout, "component=test")
	require.Contains(t, stdout, "version=1.0")
	require.Contains(t, stdout, "test message")
}
