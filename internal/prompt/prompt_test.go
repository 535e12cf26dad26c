package prompt

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var uiOptions = []Option{
	{Value: "mfaa", Description: "MFAAvalonia"},
	{Value: "mfw"},
}

func TestConsoleSelect(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "number", input: "2\n", want: "mfw"},
		{name: "empty picks default", input: "\n", want: "mfaa"},
		{name: "retry after invalid", input: "9\nx\n2\n", want: "mfw"},
		{name: "last line without newline", input: "1", want: "mfaa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := NewConsole(strings.NewReader(tt.input), &out)

			got, err := c.Select(context.Background(), SelectRequest{Title: "UI", Options: uiOptions, Default: "mfaa"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "1) mfaa - MFAAvalonia (default)")
		})
	}
}

func TestConsoleSelectEOFCancels(t *testing.T) {
	c := NewConsole(strings.NewReader(""), &bytes.Buffer{})
	_, err := c.Select(context.Background(), SelectRequest{Title: "UI", Options: uiOptions})
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestConsoleSelectCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewConsole(strings.NewReader("1\n"), &bytes.Buffer{})
	_, err := c.Select(ctx, SelectRequest{Title: "UI", Options: uiOptions})
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestConsoleMultiSelect(t *testing.T) {
	opts := []Option{{Value: "lint"}, {Value: "release"}, {Value: "docs"}}
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "entry order kept", input: "3,1\n", want: []string{"docs", "lint"}},
		{name: "spaces and repeats", input: "2 2  1\n", want: []string{"release", "lint"}},
		{name: "empty keeps default", input: "\n", want: []string{"lint"}},
		{name: "dash selects none", input: "-\n", want: []string{}},
		{name: "retry after out of range", input: "4\n2\n", want: []string{"release"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConsole(strings.NewReader(tt.input), &bytes.Buffer{})
			got, err := c.MultiSelect(context.Background(), MultiSelectRequest{Title: "CI", Options: opts, Default: []string{"lint"}})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConsoleText(t *testing.T) {
	notEmpty := func(s string) error {
		if s == "" {
			return errors.New("required")
		}
		return nil
	}

	var out bytes.Buffer
	c := NewConsole(strings.NewReader("\nmy-project\n"), &out)
	got, err := c.Text(context.Background(), TextRequest{Title: "Project name", Validate: notEmpty})
	require.NoError(t, err)
	assert.Equal(t, "my-project", got)
	assert.Contains(t, out.String(), "required")

	c = NewConsole(strings.NewReader("\n"), &bytes.Buffer{})
	got, err = c.Text(context.Background(), TextRequest{Title: "Branch", Default: "main"})
	require.NoError(t, err)
	assert.Equal(t, "main", got)
}

func TestSilent(t *testing.T) {
	ctx := context.Background()
	var s Silent

	got, err := s.Select(ctx, SelectRequest{Options: uiOptions, Default: "mfw"})
	require.NoError(t, err)
	assert.Equal(t, "mfw", got)

	got, err = s.Select(ctx, SelectRequest{Options: uiOptions})
	require.NoError(t, err)
	assert.Equal(t, "mfaa", got)

	multi, err := s.MultiSelect(ctx, MultiSelectRequest{Options: uiOptions, Default: []string{"mfw"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"mfw"}, multi)

	_, err = s.Text(ctx, TextRequest{Title: "Token"})
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestOptions(t *testing.T) {
	opts := Options([]string{"a", "b"}, []string{"first"})
	assert.Equal(t, []Option{{Value: "a", Description: "first"}, {Value: "b"}}, opts)
	assert.Equal(t, "a - first", opts[0].Label())
	assert.Equal(t, "b", opts[1].Label())
}
