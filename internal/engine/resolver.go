package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/maa-labs/maa-cli/internal/manifest"
	"github.com/maa-labs/maa-cli/internal/prompt"
)

// Resolver picks the value of one feature at a time.
type Resolver struct {
	Input  prompt.InputSource
	Logger *log.Logger
}

// Resolve returns the selected choices of f. The second result is false
// when the feature's requirement does not hold; the feature is then skipped
// and not recorded. override is the command-line value, used only when
// present is true and every value names a choice.
func (r *Resolver) Resolve(ctx context.Context, f *manifest.FeatureDef, st *State, override []string, present bool) ([]string, bool, error) {
	if f.Requirement != nil && !f.Requirement.Eval(st) {
		r.Logger.Debug("feature skipped", "feature", f.Name, "require", f.Requirement.String())
		return nil, false, nil
	}

	if present {
		if values, ok := r.accept(f, override); ok {
			st.record(f.Name, values)
			return values, true, nil
		}
	}

	values, err := r.ask(ctx, f)
	if err != nil {
		return nil, false, err
	}
	st.record(f.Name, values)
	return values, true, nil
}

// accept validates an override against the feature's choices. Mismatches
// are logged and rejected as a whole.
func (r *Resolver) accept(f *manifest.FeatureDef, override []string) ([]string, bool) {
	switch f.Kind {
	case manifest.KindSingle:
		if len(override) == 1 && f.HasChoice(override[0]) {
			return override, true
		}
		r.Logger.Warn("ignoring invalid choice", "feature", f.Name, "value", override, "choices", f.ChoiceNames())
		return nil, false
	default:
		var values []string
		for _, v := range override {
			if !f.HasChoice(v) {
				r.Logger.Warn("ignoring invalid choices", "feature", f.Name, "value", v, "choices", f.ChoiceNames())
				return nil, false
			}
			if !slices.Contains(values, v) {
				values = append(values, v)
			}
		}
		if values == nil {
			values = []string{}
		}
		return values, true
	}
}

func (r *Resolver) ask(ctx context.Context, f *manifest.FeatureDef) ([]string, error) {
	opts := make([]prompt.Option, len(f.Choices))
	for i, c := range f.Choices {
		opts[i] = prompt.Option{Value: c.Name, Description: c.Description}
	}
	title := fmt.Sprintf("Select %s", f.Name)

	if f.Kind == manifest.KindSingle {
		def := ""
		if len(f.Default) > 0 {
			def = f.Default[0]
		}
		v, err := r.Input.Select(ctx, prompt.SelectRequest{
			Title:       title,
			Description: f.Description,
			Options:     opts,
			Default:     def,
		})
		if err != nil {
			return nil, promptError(f.Name, err)
		}
		return []string{v}, nil
	}

	values, err := r.Input.MultiSelect(ctx, prompt.MultiSelectRequest{
		Title:       title,
		Description: f.Description,
		Options:     opts,
		Default:     f.Default,
	})
	if err != nil {
		return nil, promptError(f.Name, err)
	}
	for _, v := range values {
		if !f.HasChoice(v) {
			return nil, fmt.Errorf("%w: feature %q: %q is not a choice", ErrValidation, f.Name, v)
		}
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

func promptError(feature string, err error) error {
	if errors.Is(err, prompt.ErrCancelled) {
		return fmt.Errorf("%w: feature %q: %w", ErrCancelled, feature, err)
	}
	return fmt.Errorf("%w: feature %q: %w", ErrIO, feature, err)
}
