package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/maa-labs/maa-cli/internal/expr"
	"go.yaml.in/yaml/v3"
)

// Manifest locations relative to a template checkout.
const (
	FeaturesDir = "features"
	FileJSON    = "meta.json"
	FileYAML    = "meta.yaml"
)

// ErrInvalid marks manifests rejected by the schema or by semantic checks.
var ErrInvalid = errors.New("invalid manifest")

// Locate returns the manifest path inside a template checkout. meta.json
// wins when both spellings exist.
func Locate(templateDir string) (string, error) {
	for _, name := range []string{FileJSON, FileYAML} {
		p := filepath.Join(templateDir, FeaturesDir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no %s or %s under %s", FileJSON, FileYAML, filepath.Join(templateDir, FeaturesDir))
}

// Load reads, validates, and decodes the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse validates and decodes a manifest document. Requirements are parsed
// into expression trees; forward references are reported as warnings.
func Parse(data []byte) (*Manifest, error) {
	result, err := Validate(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, result)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := check(&m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return &m, nil
}

// check enforces the rules the schema cannot express and fills in
// parsed requirements and default choices.
func check(m *Manifest) error {
	seen := make(map[string]bool, len(m.Features))
	for i := range m.Features {
		f := &m.Features[i]
		if seen[f.Name] {
			return fmt.Errorf("duplicate feature %q", f.Name)
		}

		if err := checkChoices(f); err != nil {
			return err
		}
		if err := checkDefault(f); err != nil {
			return err
		}

		if strings.TrimSpace(f.Require) != "" {
			node, err := expr.Parse(f.Require)
			if err != nil {
				return fmt.Errorf("feature %q: require: %w", f.Name, err)
			}
			f.Requirement = node
			for _, ref := range expr.Features(node) {
				if !seen[ref] {
					m.Warnings = append(m.Warnings, fmt.Sprintf(
						"feature %q requires %q, which is not declared before it; the reference is always unset", f.Name, ref))
				}
			}
		}
		seen[f.Name] = true
	}

	_, malformed := ParseVars(m.Vars)
	for _, v := range malformed {
		m.Warnings = append(m.Warnings, fmt.Sprintf("ignoring malformed var %q", v))
	}
	return nil
}

func checkChoices(f *FeatureDef) error {
	names := make(map[string]bool, len(f.Choices))
	for _, c := range f.Choices {
		if names[c.Name] {
			return fmt.Errorf("feature %q: duplicate choice %q", f.Name, c.Name)
		}
		names[c.Name] = true
		for _, d := range c.Apply {
			if d.Kind == DeclBundle && !ValidRef(d.Ref) {
				return fmt.Errorf("feature %q choice %q: bundle reference %q escapes the features directory", f.Name, c.Name, d.Ref)
			}
		}
	}
	return nil
}

func checkDefault(f *FeatureDef) error {
	for _, v := range f.Default {
		if !f.HasChoice(v) {
			return fmt.Errorf("feature %q: default %q is not a choice", f.Name, v)
		}
	}

	switch f.Kind {
	case KindSingle:
		switch len(f.Default) {
		case 0:
			f.Default = Values{f.Choices[0].Name}
		case 1:
		default:
			return fmt.Errorf("feature %q: single-choice feature has %d defaults", f.Name, len(f.Default))
		}
	case KindMulti:
	default:
		return fmt.Errorf("feature %q: unknown type %q", f.Name, f.Kind)
	}
	return nil
}

// ValidRef reports whether a bundle reference stays inside the features
// directory.
func ValidRef(ref string) bool {
	if ref == "" || strings.Contains(ref, `\`) {
		return false
	}
	return filepath.IsLocal(ref)
}

// ParseVars splits "key=value" seeds. Entries without '=' or with an empty
// key are returned in malformed. Later seeds override earlier ones.
func ParseVars(seeds []string) (vars map[string]string, malformed []string) {
	vars = make(map[string]string, len(seeds))
	for _, s := range seeds {
		key, value, ok := strings.Cut(s, "=")
		if !ok || key == "" {
			malformed = append(malformed, s)
			continue
		}
		vars[key] = value
	}
	return vars, malformed
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
