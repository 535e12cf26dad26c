package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/charmbracelet/log"
)

// HookKindProcess runs a program. It is the only hook kind.
const HookKindProcess = "process"

// PostHook is a command queued by a bundle's .post-hook.json.
type PostHook struct {
	Kind    string            `json:"kind,omitempty"`
	Command []string          `json:"command"`
	Cwd     string            `json:"cwd,omitempty"`
	Env     map[string]string `json:"env,omitempty"`

	// Bundle is the bundle that queued the hook.
	Bundle string `json:"-"`
}

// ParseHooks decodes a .post-hook.json document: a JSON array of hooks. A
// missing kind means process; any other kind, an empty command, or a cwd
// outside the project is rejected.
func ParseHooks(data []byte) ([]PostHook, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var hooks []PostHook
	if err := dec.Decode(&hooks); err != nil {
		return nil, fmt.Errorf("parsing post hooks: %w", err)
	}
	for i := range hooks {
		h := &hooks[i]
		if h.Kind == "" {
			h.Kind = HookKindProcess
		}
		if h.Kind != HookKindProcess {
			return nil, fmt.Errorf("post hook %d: unknown kind %q", i, h.Kind)
		}
		if len(h.Command) == 0 || h.Command[0] == "" {
			return nil, fmt.Errorf("post hook %d: empty command", i)
		}
		if h.Cwd != "" && !filepath.IsLocal(filepath.FromSlash(h.Cwd)) {
			return nil, fmt.Errorf("post hook %d: cwd %q is outside the project", i, h.Cwd)
		}
	}
	return hooks, nil
}

var placeholder = regexp.MustCompile(`\$\{([^}]*)\}`)

// Substitute replaces ${key} with the value of key in vars. Placeholders
// naming unset keys are left as they are.
func Substitute(s string, vars map[string]string) string {
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		key := m[2 : len(m)-1]
		if v, ok := vars[key]; ok {
			return v
		}
		return m
	})
}

// Expand returns the hook with placeholders substituted in its command
// and environment values.
func (h PostHook) Expand(vars map[string]string) PostHook {
	out := h
	out.Command = make([]string, len(h.Command))
	for i, arg := range h.Command {
		out.Command[i] = Substitute(arg, vars)
	}
	if h.Env != nil {
		out.Env = make(map[string]string, len(h.Env))
		for k, v := range h.Env {
			out.Env[k] = Substitute(v, vars)
		}
	}
	return out
}

// HookRunner executes queued hooks inside the project directory.
type HookRunner struct {
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *log.Logger
}

// Run executes hooks in order and stops at the first failure.
func (r *HookRunner) Run(ctx context.Context, hooks []PostHook, vars map[string]string) error {
	for i, h := range hooks {
		h = h.Expand(vars)
		r.Logger.Info("running post hook", "command", h.Command, "bundle", h.Bundle)
		if err := r.run(ctx, h); err != nil {
			return fmt.Errorf("%w: post hook %d (%s) from %s: %w", ErrCommand, i, h.Command[0], h.Bundle, err)
		}
	}
	return nil
}

func (r *HookRunner) run(ctx context.Context, h PostHook) error {
	cmd := exec.CommandContext(ctx, h.Command[0], h.Command[1:]...)
	cmd.Dir = filepath.Join(r.Dir, filepath.FromSlash(h.Cwd))
	cmd.Env = mergeEnv(os.Environ(), h.Env)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	return cmd.Run()
}

// mergeEnv overlays extra on base. exec keeps the last value of a
// duplicated key; extra keys are appended in sorted order.
func mergeEnv(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(base)+len(extra))
	env = append(env, base...)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}
