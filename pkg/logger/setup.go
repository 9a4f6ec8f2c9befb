package logger

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ParseLevel maps a level name to a LogLevel; unknown names mean info.
func ParseLevel(name string) LogLevel {
	switch level := LogLevel(strings.ToLower(strings.TrimSpace(name))); level {
	case DebugLevel, InfoLevel, WarnLevel, ErrorLevel, DisabledLevel:
		return level
	default:
		return InfoLevel
	}
}

func SetupLogger(logLevel string, logJSON, logSource bool) {
	Init(&Config{
		Level:      ParseLevel(logLevel),
		JSON:       logJSON,
		AddSource:  logSource,
		TimeFormat: "15:04:05",
	})
}

func GetLoggerConfig(cmd *cobra.Command) (string, bool, bool, error) {
	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return "", false, false, fmt.Errorf("failed to get log-level flag: %w", err)
	}

	logJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		return "", false, false, fmt.Errorf("failed to get log-json flag: %w", err)
	}

	logSource, err := cmd.Flags().GetBool("log-source")
	if err != nil {
		return "", false, false, fmt.Errorf("failed to get log-source flag: %w", err)
	}

	return logLevel, logJSON, logSource, nil
}
