// Package output holds the CLI's terminal surface: the logger, lipgloss
// styles and the network spinner.
package output

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/maa-labs/maa-cli/internal/branding"
)

// Logger is shared by every command. SetupLogging replaces it once flags
// are parsed.
var Logger = newLogger(os.Stderr, log.InfoLevel, false)

// SetupLogging picks the level from --verbose, or from MAA_LOG_LEVEL when
// that names a valid level. Verbose runs also stamp each line.
func SetupLogging(verbose bool) {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	} else if l, err := log.ParseLevel(os.Getenv(branding.EnvVar("LOG_LEVEL"))); err == nil {
		level = l
	}
	Logger = newLogger(os.Stderr, level, verbose)
}

// NewLogger returns a debug-level logger writing to w.
func NewLogger(w io.Writer) *log.Logger {
	return newLogger(w, log.DebugLevel, false)
}

func newLogger(w io.Writer, level log.Level, timestamps bool) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          branding.CLIName(),
		ReportTimestamp: timestamps,
	})
}

func Debug(msg string, keyvals ...interface{}) { Logger.Debug(msg, keyvals...) }
func Info(msg string, keyvals ...interface{})  { Logger.Info(msg, keyvals...) }
func Warn(msg string, keyvals ...interface{})  { Logger.Warn(msg, keyvals...) }
func Error(msg string, keyvals ...interface{}) { Logger.Error(msg, keyvals...) }
