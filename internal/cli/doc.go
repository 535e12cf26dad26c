// Package cli defines the Cobra command tree for the maa CLI. Each file in
// this package registers one top-level command with the root command.
// Commands only parse flags, pick an input source, and format results; the
// work is done by the engine, template, release, and archive packages.
package cli
