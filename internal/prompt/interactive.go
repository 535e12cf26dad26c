package prompt

import (
	"context"
	"errors"
	"os"
	"slices"

	"github.com/charmbracelet/huh"
)

// Interactive draws huh forms on the terminal.
type Interactive struct {
	accessible bool
}

// NewInteractive returns an Interactive source. Setting ACCESSIBLE in the
// environment switches huh to its screen-reader friendly mode.
func NewInteractive() *Interactive {
	return &Interactive{accessible: os.Getenv("ACCESSIBLE") != ""}
}

func (p *Interactive) Select(ctx context.Context, req SelectRequest) (string, error) {
	value := req.Default
	field := huh.NewSelect[string]().
		Title(req.Title).
		Description(req.Description).
		Options(huhOptions(req.Options, nil)...).
		Value(&value)
	if err := p.run(ctx, field); err != nil {
		return "", err
	}
	return value, nil
}

// MultiSelect returns the picked values in option order, not pick order.
func (p *Interactive) MultiSelect(ctx context.Context, req MultiSelectRequest) ([]string, error) {
	var picked []string
	field := huh.NewMultiSelect[string]().
		Title(req.Title).
		Description(req.Description).
		Options(huhOptions(req.Options, req.Default)...).
		Value(&picked)
	if err := p.run(ctx, field); err != nil {
		return nil, err
	}
	return picked, nil
}

func (p *Interactive) Text(ctx context.Context, req TextRequest) (string, error) {
	value := req.Default
	field := huh.NewInput().
		Title(req.Title).
		Description(req.Description).
		Value(&value)
	if req.Secret {
		field = field.EchoMode(huh.EchoModePassword)
	}
	if req.Validate != nil {
		field = field.Validate(req.Validate)
	}
	if err := p.run(ctx, field); err != nil {
		return "", err
	}
	return value, nil
}

func (p *Interactive) run(ctx context.Context, field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).
		WithAccessible(p.accessible).
		WithOutput(os.Stderr)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, context.Canceled) {
			return ErrCancelled
		}
		return err
	}
	return nil
}

func huhOptions(opts []Option, selected []string) []huh.Option[string] {
	out := make([]huh.Option[string], len(opts))
	for i, o := range opts {
		out[i] = huh.NewOption(o.Label(), o.Value).Selected(slices.Contains(selected, o.Value))
	}
	return out
}
