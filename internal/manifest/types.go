package manifest

import (
	"fmt"
	"slices"

	"github.com/maa-labs/maa-cli/internal/expr"
	"go.yaml.in/yaml/v3"
)

// Kind is the selection mode of a feature.
type Kind string

// Feature kinds.
const (
	KindSingle Kind = "single"
	KindMulti  Kind = "multi"
)

// DeclKind discriminates apply declarations.
type DeclKind string

// Apply declaration kinds. The manifest spells them "feature" and "var".
const (
	DeclBundle DeclKind = "feature"
	DeclVar    DeclKind = "var"
)

// Manifest is the parsed feature manifest of a template.
type Manifest struct {
	// Vars are "key=value" seeds for the variable store.
	Vars     []string     `yaml:"var,omitempty" json:"var,omitempty"`
	Features []FeatureDef `yaml:"features" json:"features"`

	// Warnings collects non-fatal problems found while loading.
	Warnings []string `yaml:"-" json:"-"`
}

// Feature returns the named feature definition.
func (m *Manifest) Feature(name string) (*FeatureDef, bool) {
	for i := range m.Features {
		if m.Features[i].Name == name {
			return &m.Features[i], true
		}
	}
	return nil, false
}

// FeatureDef is one user-selectable axis of customization.
type FeatureDef struct {
	Name        string   `yaml:"name" json:"name"`
	Kind        Kind     `yaml:"type" json:"type"`
	Description string   `yaml:"desc,omitempty" json:"desc,omitempty"`
	Default     Values   `yaml:"default,omitempty" json:"default,omitempty"`
	Choices     []Choice `yaml:"choices" json:"choices"`
	Require     string   `yaml:"require,omitempty" json:"require,omitempty"`

	// Requirement is Require parsed at load time. Nil means ungated.
	Requirement expr.Node `yaml:"-" json:"-"`
}

// Choice is one selectable value of a feature.
type Choice struct {
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"desc,omitempty" json:"desc,omitempty"`
	Apply       []ApplyDecl `yaml:"apply,omitempty" json:"apply,omitempty"`
}

// ApplyDecl either applies a feature bundle (Ref) or sets a variable (Key, Value).
type ApplyDecl struct {
	Kind  DeclKind
	Ref   string
	Key   string
	Value string
}

// Values holds a default: a single string for single-choice features, a
// list for multi-choice ones. Both spellings decode into a slice.
type Values []string

// Choice returns the named choice of the feature.
func (f *FeatureDef) Choice(name string) (*Choice, bool) {
	for i := range f.Choices {
		if f.Choices[i].Name == name {
			return &f.Choices[i], true
		}
	}
	return nil, false
}

// ChoiceNames returns the choice names in declaration order.
func (f *FeatureDef) ChoiceNames() []string {
	names := make([]string, len(f.Choices))
	for i, c := range f.Choices {
		names[i] = c.Name
	}
	return names
}

// HasChoice reports whether name is one of the feature's choices.
func (f *FeatureDef) HasChoice(name string) bool {
	return slices.Contains(f.ChoiceNames(), name)
}

// Bundle returns a declaration applying the named bundle.
func Bundle(ref string) ApplyDecl {
	return ApplyDecl{Kind: DeclBundle, Ref: ref}
}

// SetVar returns a declaration assigning value to key.
func SetVar(key, value string) ApplyDecl {
	return ApplyDecl{Kind: DeclVar, Key: key, Value: value}
}

// String renders the declaration for logs.
func (d ApplyDecl) String() string {
	if d.Kind == DeclVar {
		return fmt.Sprintf("var %s=%s", d.Key, d.Value)
	}
	return "feature " + d.Ref
}

// UnmarshalYAML accepts the legacy bare-string form as a bundle reference,
// and the tagged object form {type, ref} / {type, key, value}.
func (d *ApplyDecl) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*d = Bundle(node.Value)
		return nil
	}

	var raw struct {
		Type  string `yaml:"type"`
		Ref   string `yaml:"ref"`
		Key   string `yaml:"key"`
		Value string `yaml:"value"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	switch DeclKind(raw.Type) {
	case "", DeclBundle:
		if raw.Ref == "" {
			return fmt.Errorf("line %d: feature declaration needs a ref", node.Line)
		}
		*d = Bundle(raw.Ref)
	case DeclVar:
		if raw.Key == "" {
			return fmt.Errorf("line %d: var declaration needs a key", node.Line)
		}
		*d = SetVar(raw.Key, raw.Value)
	default:
		return fmt.Errorf("line %d: unknown apply type %q", node.Line, raw.Type)
	}
	return nil
}

// MarshalYAML writes bundle declarations in the legacy string form.
func (d ApplyDecl) MarshalYAML() (interface{}, error) {
	if d.Kind == DeclVar {
		return map[string]string{"type": string(DeclVar), "key": d.Key, "value": d.Value}, nil
	}
	return d.Ref, nil
}

// UnmarshalYAML accepts either a scalar or a sequence of scalars.
func (v *Values) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*v = Values{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*v = list
		return nil
	}
	return fmt.Errorf("line %d: default must be a string or a list of strings", node.Line)
}
