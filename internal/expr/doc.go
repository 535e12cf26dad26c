// Package expr implements the boolean requirement expressions that gate
// features in a template manifest. Expressions are written in HCL expression
// syntax, parsed once into a small AST, and evaluated against the resolved
// feature values and the variable store. Manifest text is never executed.
package expr
