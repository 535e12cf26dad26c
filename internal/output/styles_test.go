package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/maa-labs/maa-cli/internal/branding"
	"github.com/stretchr/testify/assert"
)

func TestFormatCheckmark(t *testing.T) {
	got := FormatCheckmark("project created")
	assert.Contains(t, got, "✔")
	assert.Contains(t, got, "project created")
}

func TestFormatFailure(t *testing.T) {
	got := FormatFailure("patch failed")
	assert.Contains(t, got, "✘")
	assert.Contains(t, got, "patch failed")
}

func TestNewLoggerWritesToBuffer(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Warn("unknown choice", "feature", "ui", "choice", "qt")

	out := buf.String()
	assert.True(t, strings.Contains(out, "unknown choice"))
	assert.Contains(t, out, "feature=ui")
}

func TestNewLoggerPrefixesCLIName(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf).Info("template synced")
	assert.Contains(t, buf.String(), branding.CLIName())
}

func TestSetupLoggingLevel(t *testing.T) {
	saved := Logger
	t.Cleanup(func() { Logger = saved })

	tests := []struct {
		name    string
		verbose bool
		env     string
		want    log.Level
	}{
		{"default", false, "", log.InfoLevel},
		{"verbose", true, "", log.DebugLevel},
		{"env level", false, "warn", log.WarnLevel},
		{"verbose wins over env", true, "error", log.DebugLevel},
		{"bad env level", false, "loud", log.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(branding.EnvVar("LOG_LEVEL"), tt.env)
			SetupLogging(tt.verbose)
			assert.Equal(t, tt.want, Logger.GetLevel())
		})
	}
}
