package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const schemaURL = "features.schema.json"

//go:embed schema/features.schema.json
var schemaBytes []byte

var (
	loadSchema = sync.OnceValues(compileSchema)
	printer    = message.NewPrinter(language.English)
)

// Keywords that only group other failures.
var groupingKeywords = map[string]bool{
	"":      true,
	"$ref":  true,
	"allOf": true,
	"anyOf": true,
	"oneOf": true,
}

// ValidationResult is the outcome of checking a document against the
// feature schema.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationIssue is one schema violation.
type ValidationIssue struct {
	// Path is the JSON pointer of the offending value, e.g. /features/1/choices/0.
	Path string
	// Where names the same location by feature and choice, e.g.
	// feature "ui" choice "mfw" apply[0].
	Where   string
	Message string
	Keyword string
}

func (i ValidationIssue) String() string {
	if i.Where == "" {
		return i.Message
	}
	return i.Where + ": " + i.Message
}

// String joins the issues for use in a single error message.
func (r *ValidationResult) String() string {
	parts := make([]string, len(r.Issues))
	for i, issue := range r.Issues {
		parts[i] = issue.String()
	}
	return strings.Join(parts, "; ")
}

func compileSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
	if err != nil {
		return nil, fmt.Errorf("decoding feature schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("registering feature schema: %w", err)
	}
	return c.Compile(schemaURL)
}

// Validate checks a manifest document, JSON or YAML, against the feature
// schema. Violations are reported in the result; the error is for
// documents that cannot be decoded at all.
func Validate(data []byte) (*ValidationResult, error) {
	schema, err := loadSchema()
	if err != nil {
		return nil, err
	}

	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	doc = jsonCompatible(doc)

	// The validator wants json.Number for numbers, so go through JSON once.
	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return &ValidationResult{Valid: true}, nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return nil, err
	}
	return &ValidationResult{Issues: issuesOf(ve, doc)}, nil
}

// ValidateFile validates the manifest at path.
func ValidateFile(path string) (*ValidationResult, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Validate(data)
}

// issuesOf flattens the error tree into its leaves. A failed oneOf over
// apply declarations reports every branch, so identical leaves are merged.
func issuesOf(ve *jsonschema.ValidationError, doc interface{}) []ValidationIssue {
	var (
		issues []ValidationIssue
		seen   = make(map[string]bool)
		stack  = []*jsonschema.ValidationError{ve}
	)
	for len(stack) > 0 {
		e := stack[0]
		stack = stack[1:]
		if len(e.Causes) > 0 {
			stack = append(append([]*jsonschema.ValidationError{}, e.Causes...), stack...)
			continue
		}
		if e.ErrorKind == nil {
			continue
		}
		kw := e.ErrorKind.KeywordPath()
		keyword := ""
		if len(kw) > 0 {
			keyword = kw[len(kw)-1]
		}
		if groupingKeywords[keyword] {
			continue
		}

		issue := ValidationIssue{
			Where:   describe(doc, e.InstanceLocation),
			Message: e.ErrorKind.LocalizedString(printer),
			Keyword: keyword,
		}
		if len(e.InstanceLocation) > 0 {
			issue.Path = "/" + strings.Join(e.InstanceLocation, "/")
		}
		key := issue.Path + "\x00" + keyword + "\x00" + issue.Message
		if !seen[key] {
			seen[key] = true
			issues = append(issues, issue)
		}
	}
	if len(issues) == 0 {
		issues = append(issues, ValidationIssue{Message: ve.Error()})
	}
	return issues
}

// describe renders a JSON pointer into the manifest by feature and choice
// name. Features and choices without a usable name fall back to their index.
func describe(doc interface{}, ptr []string) string {
	var (
		parts []string
		cur   = doc
	)
	for i := 0; i < len(ptr); i++ {
		seg := ptr[i]
		next := child(cur, seg)
		switch {
		case (seg == "features" || seg == "choices") && i+1 < len(ptr):
			idx := ptr[i+1]
			item := child(next, idx)
			label := "feature"
			if seg == "choices" {
				label = "choice"
			}
			if name, ok := nameOf(item); ok {
				parts = append(parts, label+" "+strconv.Quote(name))
			} else {
				parts = append(parts, label+" #"+idx)
			}
			cur = item
			i++
			continue
		case seg == "apply" && i+1 < len(ptr):
			parts = append(parts, "apply["+ptr[i+1]+"]")
			cur = child(next, ptr[i+1])
			i++
			continue
		case seg == "var" && i+1 < len(ptr):
			parts = append(parts, "var["+ptr[i+1]+"]")
			cur = child(next, ptr[i+1])
			i++
			continue
		}
		parts = append(parts, seg)
		cur = next
	}
	return strings.Join(parts, " ")
}

func child(v interface{}, seg string) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return val[seg]
	case []interface{}:
		if i, err := strconv.Atoi(seg); err == nil && i >= 0 && i < len(val) {
			return val[i]
		}
	}
	return nil
}

func nameOf(v interface{}) (string, bool) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return "", false
	}
	name, ok := m["name"].(string)
	return name, ok && name != ""
}

// jsonCompatible rewrites YAML-decoded maps with non-string keys, which
// only hand-written YAML manifests produce, into string-keyed maps.
func jsonCompatible(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, item := range val {
			val[k] = jsonCompatible(item)
		}
		return val
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = jsonCompatible(item)
		}
		return out
	case []interface{}:
		for i, item := range val {
			val[i] = jsonCompatible(item)
		}
		return val
	}
	return v
}
