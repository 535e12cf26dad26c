// Package template keeps a local checkout of the project template repository
// in sync with its remote. The checkout lives under the cache directory and
// is refreshed with fetch and hard reset, so local edits there are discarded.
package template

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/maa-labs/maa-cli/internal/config"
	"github.com/maa-labs/maa-cli/internal/output"
)

const (
	// freshnessFile is written inside .git so it never shows up in the tree.
	freshnessFile = "maa-synced"

	// DefaultMaxAge is how long a checkout is used before Ensure refreshes it.
	DefaultMaxAge = 7 * 24 * time.Hour

	// BaseDir is the template subtree copied into every new project.
	BaseDir = "base"
)

// Provider manages one template checkout.
type Provider struct {
	url    string
	branch string
	dir    string
	proxy  string
	maxAge time.Duration
}

// Option configures a Provider.
type Option func(*Provider)

// WithDir overrides the checkout location.
func WithDir(dir string) Option {
	return func(p *Provider) { p.dir = dir }
}

// WithMaxAge sets the staleness threshold used by Ensure. Zero disables
// refreshing of an existing checkout.
func WithMaxAge(d time.Duration) Option {
	return func(p *Provider) { p.maxAge = d }
}

// New returns a Provider for the template configured in s.
func New(s config.Settings, opts ...Option) *Provider {
	p := &Provider{
		url:    s.TemplateURL,
		branch: s.TemplateBranch,
		dir:    s.TemplateDir(),
		proxy:  s.Proxy,
		maxAge: DefaultMaxAge,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Dir returns the checkout path.
func (p *Provider) Dir() string { return p.dir }

// Ensure makes sure a checkout exists and returns its path. A missing
// checkout is cloned. A stale one is synced; if that fails the existing
// checkout is used and a warning is logged.
func (p *Provider) Ensure(ctx context.Context) (string, error) {
	if !IsRepo(ctx, p.dir) {
		output.Warn("template not synced yet, cloning", "url", p.url)
		if err := p.Sync(ctx); err != nil {
			return "", err
		}
		return p.dir, nil
	}

	if p.maxAge > 0 && IsStale(p.dir, p.maxAge) {
		if err := p.Sync(ctx); err != nil {
			output.Warn("template refresh failed, using existing checkout", "err", err)
		}
	}
	return p.dir, nil
}

// Sync brings the checkout to the tip of the configured branch, cloning it
// when absent.
func (p *Provider) Sync(ctx context.Context) error {
	if err := ensureGit(); err != nil {
		return err
	}

	if !IsRepo(ctx, p.dir) {
		if err := p.clone(ctx); err != nil {
			return err
		}
		writeFreshnessMarker(p.dir)
		return nil
	}

	steps := [][]string{
		{"remote", "set-url", "origin", p.url},
		{"fetch", "--depth=1", "origin", p.branch},
		{"reset", "--hard", "FETCH_HEAD"},
	}
	for _, args := range steps {
		if _, err := p.git(ctx, p.dir, args...); err != nil {
			return fmt.Errorf("syncing template: %w", err)
		}
	}
	output.Debug("template synced", "dir", p.dir, "branch", p.branch)
	writeFreshnessMarker(p.dir)
	return nil
}

// clone writes to a temporary sibling directory first and renames it into
// place, so an interrupted clone never leaves a half-populated checkout.
func (p *Provider) clone(ctx context.Context) error {
	tmpDir := p.dir + ".tmp"
	_ = os.RemoveAll(tmpDir)

	if err := os.MkdirAll(filepath.Dir(p.dir), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	if _, err := p.git(ctx, "", "clone", "--depth=1", "--branch", p.branch, p.url, tmpDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return fmt.Errorf("cloning template: %w", err)
	}

	if err := os.RemoveAll(p.dir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return fmt.Errorf("removing old template dir: %w", err)
	}
	if err := os.Rename(tmpDir, p.dir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return fmt.Errorf("finalizing template clone: %w", err)
	}
	output.Debug("template cloned", "url", p.url, "dir", p.dir)
	return nil
}

func (p *Provider) git(ctx context.Context, dir string, args ...string) (string, error) {
	sub := args[0]
	if p.proxy != "" {
		args = append([]string{"-c", "http.proxy=" + p.proxy}, args...)
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %w\n%s", sub, err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// IsRepo reports whether dir is the top of a git work tree.
func IsRepo(ctx context.Context, dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	cmd := exec.CommandContext(ctx, "git", "-C", dir, "rev-parse", "--show-toplevel")
	out, err := cmd.Output()
	if err != nil {
		return false
	}
	top, err := filepath.EvalSymlinks(strings.TrimSpace(string(out)))
	if err != nil {
		return false
	}
	abs, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return false
	}
	return filepath.Clean(top) == filepath.Clean(abs)
}

func markerPath(dir string) string {
	return filepath.Join(dir, ".git", freshnessFile)
}

func writeFreshnessMarker(dir string) {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	_ = os.WriteFile(markerPath(dir), []byte(ts), 0o644)
}

// LastSynced returns when the checkout was last cloned or synced. The zero
// time means unknown.
func LastSynced(dir string) time.Time {
	data, err := os.ReadFile(markerPath(dir))
	if err != nil {
		return time.Time{}
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}

// IsStale reports whether the checkout was last synced more than maxAge ago.
func IsStale(dir string, maxAge time.Duration) bool {
	last := LastSynced(dir)
	if last.IsZero() {
		return true
	}
	return time.Since(last) > maxAge
}

func ensureGit() error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("git is required but not found in PATH")
	}
	return nil
}
