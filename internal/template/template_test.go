package template

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/maa-labs/maa-cli/internal/config"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	args = append([]string{"-c", "user.name=test", "-c", "user.email=test@example.com", "-c", "commit.gpgsign=false"}, args...)
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

// newUpstream creates a repository with base/README.md committed on main.
func newUpstream(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	runGit(t, dir, "init", "-q", "-b", "main")
	writeFile(t, filepath.Join(dir, "base", "README.md"), "v1\n")
	runGit(t, dir, "add", "-A")
	runGit(t, dir, "commit", "-q", "-m", "init")
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func newProvider(upstream string, opts ...Option) *Provider {
	s := config.Settings{
		TemplateURL:    upstream,
		TemplateBranch: "main",
		CacheDir:       filepath.Join(filepath.Dir(upstream), filepath.Base(upstream)+"-cache"),
	}
	return New(s, opts...)
}

func TestEnsureClonesWhenMissing(t *testing.T) {
	requireGit(t)
	upstream := newUpstream(t)
	p := newProvider(upstream, WithDir(filepath.Join(t.TempDir(), "template")))

	dir, err := p.Ensure(context.Background())
	if err != nil {
		t.Fatalf("Ensure() error: %v", err)
	}
	if dir != p.Dir() {
		t.Errorf("Ensure() = %q, want %q", dir, p.Dir())
	}
	if got := readFile(t, filepath.Join(dir, BaseDir, "README.md")); got != "v1\n" {
		t.Errorf("README = %q, want v1", got)
	}
	if !IsRepo(context.Background(), dir) {
		t.Error("checkout is not a repository")
	}
	if IsStale(dir, time.Hour) {
		t.Error("fresh clone reported stale")
	}
	if _, err := os.Stat(dir + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary clone dir left behind")
	}
}

func TestSyncResetsToUpstream(t *testing.T) {
	requireGit(t)
	upstream := newUpstream(t)
	p := newProvider(upstream, WithDir(filepath.Join(t.TempDir(), "template")))
	ctx := context.Background()

	if err := p.Sync(ctx); err != nil {
		t.Fatalf("first Sync() error: %v", err)
	}

	writeFile(t, filepath.Join(upstream, "base", "README.md"), "v2\n")
	runGit(t, upstream, "commit", "-q", "-am", "update")

	// Local edits in the checkout are discarded.
	writeFile(t, filepath.Join(p.Dir(), "base", "README.md"), "local\n")

	if err := p.Sync(ctx); err != nil {
		t.Fatalf("second Sync() error: %v", err)
	}
	if got := readFile(t, filepath.Join(p.Dir(), "base", "README.md")); got != "v2\n" {
		t.Errorf("README = %q, want v2", got)
	}
}

func TestEnsureSkipsFreshCheckout(t *testing.T) {
	requireGit(t)
	upstream := newUpstream(t)
	p := newProvider(upstream, WithDir(filepath.Join(t.TempDir(), "template")))
	ctx := context.Background()

	if _, err := p.Ensure(ctx); err != nil {
		t.Fatalf("Ensure() error: %v", err)
	}

	writeFile(t, filepath.Join(upstream, "base", "README.md"), "v2\n")
	runGit(t, upstream, "commit", "-q", "-am", "update")

	if _, err := p.Ensure(ctx); err != nil {
		t.Fatalf("Ensure() error: %v", err)
	}
	if got := readFile(t, filepath.Join(p.Dir(), "base", "README.md")); got != "v1\n" {
		t.Errorf("fresh checkout was synced: README = %q", got)
	}

	// An old marker triggers a refresh.
	old := strconv.FormatInt(time.Now().Add(-2*DefaultMaxAge).Unix(), 10)
	writeFile(t, markerPath(p.Dir()), old)
	if _, err := p.Ensure(ctx); err != nil {
		t.Fatalf("Ensure() error: %v", err)
	}
	if got := readFile(t, filepath.Join(p.Dir(), "base", "README.md")); got != "v2\n" {
		t.Errorf("stale checkout not synced: README = %q", got)
	}
}

func TestEnsureKeepsCheckoutWhenRefreshFails(t *testing.T) {
	requireGit(t)
	upstream := newUpstream(t)
	dir := filepath.Join(t.TempDir(), "template")
	p := newProvider(upstream, WithDir(dir))
	ctx := context.Background()
	if err := p.Sync(ctx); err != nil {
		t.Fatalf("Sync() error: %v", err)
	}

	broken := New(config.Settings{TemplateURL: filepath.Join(t.TempDir(), "missing"), TemplateBranch: "main"},
		WithDir(dir), WithMaxAge(time.Nanosecond))
	time.Sleep(time.Millisecond)

	got, err := broken.Ensure(ctx)
	if err != nil {
		t.Fatalf("Ensure() error: %v", err)
	}
	if got != dir {
		t.Errorf("Ensure() = %q, want %q", got, dir)
	}
}

func TestSyncCloneFailure(t *testing.T) {
	requireGit(t)
	p := New(config.Settings{TemplateURL: filepath.Join(t.TempDir(), "missing"), TemplateBranch: "main"},
		WithDir(filepath.Join(t.TempDir(), "template")))

	if err := p.Sync(context.Background()); err == nil {
		t.Fatal("expected clone error")
	}
	if _, err := os.Stat(p.Dir()); !os.IsNotExist(err) {
		t.Error("failed clone left a checkout behind")
	}
}

func TestIsRepo(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	if IsRepo(ctx, filepath.Join(t.TempDir(), "nope")) {
		t.Error("missing dir reported as repo")
	}

	upstream := newUpstream(t)
	if !IsRepo(ctx, upstream) {
		t.Error("repo root not detected")
	}
	if IsRepo(ctx, filepath.Join(upstream, "base")) {
		t.Error("subdirectory of a repo reported as repo root")
	}
}

func TestIsStaleWithoutMarker(t *testing.T) {
	if !IsStale(t.TempDir(), time.Hour) {
		t.Error("missing marker should be stale")
	}
	if !LastSynced(t.TempDir()).IsZero() {
		t.Error("missing marker should give zero time")
	}
}
