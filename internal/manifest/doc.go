// Package manifest handles parsing and validation of the feature manifest
// (features/meta.json) shipped with a project template. The manifest lists
// the features a template offers, their choices, and the apply declarations
// each choice contributes. Documents are checked against an embedded JSON
// Schema before decoding and against cross-field rules after.
package manifest
