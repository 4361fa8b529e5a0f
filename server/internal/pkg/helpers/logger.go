package helpers

import (
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
)

// NewLogger creates a named logger using the level and format from the environment
func NewLogger(name string) hclog.Logger {
	return NewLoggerWithLevel(name, GetLogLevel(), nil)
}

// NewLoggerWithLevel creates a named hclog logger writing to output (stderr when nil)
func NewLoggerWithLevel(name string, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level),
		JSONFormat: os.Getenv("TFCIPHER_JSON_LOG") == "1",
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z",
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// GetLogLevel returns the configured log level from environment
func GetLogLevel() string {
	level := os.Getenv("TFCIPHER_LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	return level
}
