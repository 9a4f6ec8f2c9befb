package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	t.Run("Should return logger from context when present", func(t *testing.T) {
		expectedLogger := NewLogger(TestConfig())
		ctx := ContextWithLogger(t.Context(), expectedLogger)

		actualLogger := FromContext(ctx)

		require.NotNil(t, actualLogger)
		assert.Equal(t, expectedLogger, actualLogger)
	})

	t.Run("Should return default logger when wrong type in context", func(t *testing.T) {
		ctx := context.WithValue(t.Context(), LoggerCtxKey, "not a logger")

		logger := FromContext(ctx)

		require.NotNil(t, logger)
		assert.Equal(t, GetDefault(), logger)
	})
}

func TestLogLevel_ToCharmlogLevel(t *testing.T) {
	t.Run("Should convert all log levels to charm log levels correctly", func(t *testing.T) {
		testCases := []struct {
			level    LogLevel
			expected int
		}{
			{DebugLevel, -4},
			{InfoLevel, 0},
			{WarnLevel, 4},
			{ErrorLevel, 8},
			{DisabledLevel, 1000},
			{LogLevel("unknown"), 0},
		}

		for _, tc := range testCases {
			assert.Equal(t, tc.expected, int(tc.level.ToCharmlogLevel()), "level %s", tc.level)
		}
	})
}

func TestParseLevel(t *testing.T) {
	t.Run("Should accept known names in any case", func(t *testing.T) {
		assert.Equal(t, DebugLevel, ParseLevel(" DEBUG "))
		assert.Equal(t, WarnLevel, ParseLevel("warn"))
	})

	t.Run("Should default to info", func(t *testing.T) {
		assert.Equal(t, InfoLevel, ParseLevel("verbose"))
		assert.Equal(t, InfoLevel, ParseLevel(""))
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("Should write structured fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&Config{Level: InfoLevel, Output: &buf, TimeFormat: "15:04:05"})

		logger.With("component", "converter").Info("script generated", "name", "221")

		output := buf.String()
		assert.Contains(t, output, "script generated")
		assert.Contains(t, output, "component")
		assert.Contains(t, output, "221")
	})

	t.Run("Should emit JSON when enabled", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&Config{Level: InfoLevel, Output: &buf, JSON: true})

		logger.Info("test message")

		output := strings.TrimSpace(buf.String())
		assert.True(t, strings.HasPrefix(output, "{") && strings.HasSuffix(output, "}"))
		assert.Contains(t, output, "test message")
	})

	t.Run("Should respect log level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&Config{Level: WarnLevel, Output: &buf})

		logger.Debug("debug message")
		logger.Info("info message")
		logger.Warn("warn message")

		output := buf.String()
		assert.NotContains(t, output, "debug message")
		assert.NotContains(t, output, "info message")
		assert.Contains(t, output, "warn message")
	})
}
