package engine

import "errors"

// Error categories. Every error returned by Run wraps exactly one of them.
var (
	// ErrValidation covers bad folder names, malformed manifests, unknown
	// bundles and bundle references that escape the features directory.
	ErrValidation = errors.New("validation failed")
	// ErrCommand covers failures of git and post-hook processes.
	ErrCommand = errors.New("command failed")
	// ErrIO covers filesystem failures while copying or creating files.
	ErrIO = errors.New("filesystem error")
	// ErrCancelled is returned when the user aborts a prompt.
	ErrCancelled = errors.New("cancelled")
)
