// Package logging creates the process-level logger for the test runner.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Options configures New.
type Options struct {
	// Level is the minimum level: debug, info, warn or error. The default is info.
	Level  string
	Output io.Writer
	Prefix string
}

// New creates a structured logger.
func New(opts Options) *log.Logger {
	return log.NewWithOptions(opts.Output, log.Options{
		Level:           ParseLevel(opts.Level),
		Prefix:          opts.Prefix,
		TimeFormat:      time.TimeOnly,
		ReportTimestamp: true,
	})
}

// ParseLevel converts a level name to a log.Level. Unknown names mean info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// IsDebug returns true if the level name enables debug messages.
func IsDebug(level string) bool {
	return ParseLevel(level) <= log.DebugLevel
}

// Printf adapts a structured logger to the Printf-style logger used by the test framework.
// Every message is logged at debug level.
type Printf struct {
	Logger *log.Logger
}

func (p Printf) Printf(message string, args ...interface{}) {
	p.Logger.Debug(fmt.Sprintf(message, args...))
}
