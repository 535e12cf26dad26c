// Package platform hides the filesystem differences between Unix and
// Windows that the CLI runs into: symlinks (which need developer mode on
// Windows) and Unix permission bits.
package platform
