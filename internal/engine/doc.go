// Package engine composes a new project from a template checkout.
//
// A run copies the template's base tree into a fresh folder, initializes a
// git repository there, and then walks the feature manifest in order. Each
// feature is resolved from command-line overrides, a prompt, or its default;
// the selected choices contribute bundle references and variable
// assignments. Once every feature is resolved the bundles are applied in
// the order they were planned (files copied, .patch files applied with
// git, .post-hook.json files queued), and finally the queued hooks run with
// ${key} placeholders replaced from the variable store.
package engine
