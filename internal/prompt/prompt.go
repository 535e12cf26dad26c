package prompt

import (
	"context"
	"errors"
)

var (
	// ErrCancelled is returned when the user aborts a prompt.
	ErrCancelled = errors.New("prompt cancelled")
	// ErrNoInput is returned by Silent when a request has no default to fall back on.
	ErrNoInput = errors.New("no input available")
)

// Option is one entry of a selection menu.
type Option struct {
	Value       string
	Description string
}

// Label renders the option for menus.
func (o Option) Label() string {
	if o.Description == "" {
		return o.Value
	}
	return o.Value + " - " + o.Description
}

// SelectRequest asks for exactly one option.
type SelectRequest struct {
	Title       string
	Description string
	Options     []Option
	Default     string
}

// MultiSelectRequest asks for zero or more options.
type MultiSelectRequest struct {
	Title       string
	Description string
	Options     []Option
	Default     []string
}

// TextRequest asks for free text.
type TextRequest struct {
	Title       string
	Description string
	Default     string
	Secret      bool
	Validate    func(string) error
}

// InputSource supplies values for features and settings that were not given
// non-interactively.
type InputSource interface {
	Select(ctx context.Context, req SelectRequest) (string, error)
	MultiSelect(ctx context.Context, req MultiSelectRequest) ([]string, error)
	Text(ctx context.Context, req TextRequest) (string, error)
}

// Options builds menu options from parallel value and description slices.
func Options(values, descriptions []string) []Option {
	opts := make([]Option, len(values))
	for i, v := range values {
		opts[i] = Option{Value: v}
		if i < len(descriptions) {
			opts[i].Description = descriptions[i]
		}
	}
	return opts
}

func defaultIndex(opts []Option, value string) int {
	for i, o := range opts {
		if o.Value == value {
			return i
		}
	}
	return -1
}
