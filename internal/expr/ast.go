package expr

import (
	"slices"
	"strings"
)

// Env is the read-only view an expression is evaluated against.
type Env interface {
	// Feature returns the resolved choices of a feature (one element for a
	// single-choice feature) and whether the feature has been resolved.
	Feature(name string) ([]string, bool)
	// Var returns the value of a variable and whether it is set.
	Var(key string) (string, bool)
}

// Node is a parsed requirement expression.
type Node interface {
	Eval(env Env) bool
	String() string
}

// Literal is a constant true/false.
type Literal struct {
	Value bool
}

func (n Literal) Eval(Env) bool { return n.Value }

func (n Literal) String() string {
	if n.Value {
		return "true"
	}
	return "false"
}

// VarRef is true when the variable is set to a non-empty value other than
// "false" or "0".
type VarRef struct {
	Key string
}

func (n VarRef) Eval(env Env) bool {
	v, _ := env.Var(n.Key)
	return truthy(v)
}

func (n VarRef) String() string { return "var." + n.Key }

// VarEquals compares a variable against a string. Unset variables compare as "".
type VarEquals struct {
	Key   string
	Value string
}

func (n VarEquals) Eval(env Env) bool {
	v, _ := env.Var(n.Key)
	return v == n.Value
}

func (n VarEquals) String() string { return "var." + n.Key + " == " + quote(n.Value) }

// FeatureSet is true when the feature was resolved to at least one choice.
type FeatureSet struct {
	Feature string
}

func (n FeatureSet) Eval(env Env) bool {
	vals, ok := env.Feature(n.Feature)
	return ok && len(vals) > 0
}

func (n FeatureSet) String() string { return n.Feature }

// FeatureEquals is true when the feature's resolved value contains Value.
// For single-choice features this is plain equality.
type FeatureEquals struct {
	Feature string
	Value   string
}

func (n FeatureEquals) Eval(env Env) bool {
	vals, ok := env.Feature(n.Feature)
	if !ok {
		return false
	}
	return slices.Contains(vals, n.Value)
}

func (n FeatureEquals) String() string { return n.Feature + " == " + quote(n.Value) }

// And is the logical conjunction of two nodes.
type And struct {
	Left, Right Node
}

func (n And) Eval(env Env) bool { return n.Left.Eval(env) && n.Right.Eval(env) }

func (n And) String() string { return "(" + n.Left.String() + " && " + n.Right.String() + ")" }

// Or is the logical disjunction of two nodes.
type Or struct {
	Left, Right Node
}

func (n Or) Eval(env Env) bool { return n.Left.Eval(env) || n.Right.Eval(env) }

func (n Or) String() string { return "(" + n.Left.String() + " || " + n.Right.String() + ")" }

// Not negates a node.
type Not struct {
	Operand Node
}

func (n Not) Eval(env Env) bool { return !n.Operand.Eval(env) }

func (n Not) String() string { return "!" + n.Operand.String() }

// Features returns the feature names referenced by n, in first-seen order.
func Features(n Node) []string {
	var names []string
	walk(n, func(node Node) {
		var name string
		switch v := node.(type) {
		case FeatureSet:
			name = v.Feature
		case FeatureEquals:
			name = v.Feature
		default:
			return
		}
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	})
	return names
}

func walk(n Node, fn func(Node)) {
	fn(n)
	switch v := n.(type) {
	case And:
		walk(v.Left, fn)
		walk(v.Right, fn)
	case Or:
		walk(v.Left, fn)
		walk(v.Right, fn)
	case Not:
		walk(v.Operand, fn)
	}
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "false", "0":
		return false
	}
	return true
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
