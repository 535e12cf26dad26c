// Package prompt resolves values from a user when none were supplied on the
// command line. InputSource has three implementations: Interactive draws
// huh forms on a terminal, Console reads numbered answers from any reader,
// and Silent always answers with the request's default.
package prompt
