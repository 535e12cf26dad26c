package expr

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

const (
	rootVar     = "var"
	rootFeature = "feature"
)

// Parse parses a requirement expression. An empty source parses to a
// Literal true so that absent requirements never gate anything.
func Parse(src string) (Node, error) {
	if src == "" {
		return Literal{Value: true}, nil
	}

	syntax, diags := hclsyntax.ParseExpression([]byte(src), "require", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing requirement %q: %s", src, diags.Error())
	}

	node, err := convert(syntax)
	if err != nil {
		return nil, fmt.Errorf("requirement %q: %w", src, err)
	}
	return node, nil
}

// convert walks the HCL syntax tree and builds the equivalent Node. Only the
// subset of HCL that maps onto the AST is accepted.
func convert(e hclsyntax.Expression) (Node, error) {
	switch v := e.(type) {
	case *hclsyntax.ParenthesesExpr:
		return convert(v.Expression)

	case *hclsyntax.LiteralValueExpr:
		if v.Val.Type() == cty.Bool && v.Val.IsKnown() && !v.Val.IsNull() {
			return Literal{Value: v.Val.True()}, nil
		}
		return nil, fmt.Errorf("unsupported literal of type %s", v.Val.Type().FriendlyName())

	case *hclsyntax.ScopeTraversalExpr:
		ref, err := reference(v.Traversal)
		if err != nil {
			return nil, err
		}
		if ref.isVar {
			return VarRef{Key: ref.name}, nil
		}
		return FeatureSet{Feature: ref.name}, nil

	case *hclsyntax.UnaryOpExpr:
		if v.Op != hclsyntax.OpLogicalNot {
			return nil, fmt.Errorf("unsupported unary operator")
		}
		operand, err := convert(v.Val)
		if err != nil {
			return nil, err
		}
		return Not{Operand: operand}, nil

	case *hclsyntax.BinaryOpExpr:
		switch v.Op {
		case hclsyntax.OpLogicalAnd, hclsyntax.OpLogicalOr:
			left, err := convert(v.LHS)
			if err != nil {
				return nil, err
			}
			right, err := convert(v.RHS)
			if err != nil {
				return nil, err
			}
			if v.Op == hclsyntax.OpLogicalAnd {
				return And{Left: left, Right: right}, nil
			}
			return Or{Left: left, Right: right}, nil
		case hclsyntax.OpEqual:
			return comparison(v.LHS, v.RHS)
		case hclsyntax.OpNotEqual:
			node, err := comparison(v.LHS, v.RHS)
			if err != nil {
				return nil, err
			}
			return Not{Operand: node}, nil
		}
		return nil, fmt.Errorf("unsupported binary operator")
	}

	return nil, fmt.Errorf("unsupported expression %T", e)
}

// comparison accepts `ref == "literal"` in either operand order.
func comparison(lhs, rhs hclsyntax.Expression) (Node, error) {
	traversal, literal := lhs, rhs
	if _, ok := lhs.(*hclsyntax.ScopeTraversalExpr); !ok {
		traversal, literal = rhs, lhs
	}

	t, ok := traversal.(*hclsyntax.ScopeTraversalExpr)
	if !ok {
		return nil, fmt.Errorf("comparison needs a feature or var reference on one side")
	}
	ref, err := reference(t.Traversal)
	if err != nil {
		return nil, err
	}
	value, err := stringLiteral(literal)
	if err != nil {
		return nil, err
	}

	if ref.isVar {
		return VarEquals{Key: ref.name, Value: value}, nil
	}
	return FeatureEquals{Feature: ref.name, Value: value}, nil
}

type ref struct {
	name  string
	isVar bool
}

// reference decodes `name`, `feature.name`, or `var.name`.
func reference(t hcl.Traversal) (ref, error) {
	root, ok := t[0].(hcl.TraverseRoot)
	if !ok {
		return ref{}, fmt.Errorf("unsupported reference")
	}

	switch len(t) {
	case 1:
		if root.Name == rootVar || root.Name == rootFeature {
			return ref{}, fmt.Errorf("%q needs an attribute, e.g. %s.name", root.Name, root.Name)
		}
		return ref{name: root.Name}, nil
	case 2:
		attr, ok := t[1].(hcl.TraverseAttr)
		if !ok {
			return ref{}, fmt.Errorf("unsupported index in reference %q", root.Name)
		}
		switch root.Name {
		case rootVar:
			return ref{name: attr.Name, isVar: true}, nil
		case rootFeature:
			return ref{name: attr.Name}, nil
		}
		return ref{}, fmt.Errorf("unknown reference namespace %q", root.Name)
	}
	return ref{}, fmt.Errorf("reference %q is too deep", root.Name)
}

func stringLiteral(e hclsyntax.Expression) (string, error) {
	switch v := e.(type) {
	case *hclsyntax.TemplateExpr:
		if len(v.Parts) == 0 {
			return "", nil
		}
		if !v.IsStringLiteral() {
			return "", fmt.Errorf("string interpolation is not supported")
		}
		return literalString(v.Parts[0])
	case *hclsyntax.LiteralValueExpr:
		return literalString(v)
	}
	return "", fmt.Errorf("comparison needs a string literal on one side")
}

func literalString(e hclsyntax.Expression) (string, error) {
	lit, ok := e.(*hclsyntax.LiteralValueExpr)
	if !ok || lit.Val.IsNull() || !lit.Val.IsKnown() {
		return "", fmt.Errorf("comparison needs a string literal on one side")
	}
	switch lit.Val.Type() {
	case cty.String:
		return lit.Val.AsString(), nil
	case cty.Bool:
		if lit.Val.True() {
			return "true", nil
		}
		return "false", nil
	case cty.Number:
		return lit.Val.AsBigFloat().Text('f', -1), nil
	}
	return "", fmt.Errorf("unsupported literal of type %s", lit.Val.Type().FriendlyName())
}
