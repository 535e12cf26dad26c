package engine

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/maa-labs/maa-cli/internal/manifest"
)

// Action applies one bundle. Feature and Choice record where it came from.
type Action struct {
	Feature string
	Choice  string
	Bundle  string
}

// Planner accumulates the bundle actions of a run.
type Planner struct {
	Logger *log.Logger
	plan   []Action
}

// Add appends the declarations of the selected choices in selection order.
// Variable assignments take effect on st immediately, so later requirement
// expressions see them.
func (p *Planner) Add(f *manifest.FeatureDef, values []string, st *State) error {
	for _, v := range values {
		c, ok := f.Choice(v)
		if !ok {
			return fmt.Errorf("%w: feature %q has no choice %q", ErrValidation, f.Name, v)
		}
		for _, d := range c.Apply {
			switch d.Kind {
			case manifest.DeclVar:
				st.SetVar(d.Key, d.Value)
				p.Logger.Debug("var set", "key", d.Key, "value", d.Value, "feature", f.Name)
			default:
				if !manifest.ValidRef(d.Ref) {
					return fmt.Errorf("%w: bundle reference %q escapes the features directory", ErrValidation, d.Ref)
				}
				p.plan = append(p.plan, Action{Feature: f.Name, Choice: c.Name, Bundle: d.Ref})
			}
		}
	}
	return nil
}

// Plan returns the accumulated actions.
func (p *Planner) Plan() []Action {
	return p.plan
}
