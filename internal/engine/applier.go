package engine

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
)

// Names with special meaning at the top level of a bundle.
const (
	PatchFile    = ".patch"
	PostHookFile = ".post-hook.json"
)

// Applier applies bundles from the template's features directory to the
// project. Each bundle is applied at most once.
type Applier struct {
	// Bundles is rooted at <template>/features.
	Bundles billy.Filesystem
	// Target is rooted at the project directory.
	Target billy.Filesystem
	// TargetDir is the project directory on disk, where patches are applied.
	TargetDir string
	VCS       VCS
	Logger    *log.Logger

	applied []string
	seen    map[string]bool
	hooks   []PostHook
}

// Apply runs one action. It reports false when the bundle was already
// applied in this run.
func (a *Applier) Apply(ctx context.Context, act Action) (bool, error) {
	if a.seen == nil {
		a.seen = make(map[string]bool)
	}
	if a.seen[act.Bundle] {
		a.Logger.Debug("bundle already applied", "bundle", act.Bundle, "feature", act.Feature)
		return false, nil
	}

	info, err := a.Bundles.Stat(act.Bundle)
	if err != nil || !info.IsDir() {
		return false, fmt.Errorf("%w: bundle %q (feature %s=%s) not found", ErrValidation, act.Bundle, act.Feature, act.Choice)
	}
	a.seen[act.Bundle] = true

	a.Logger.Info("applying bundle", "bundle", act.Bundle, "feature", act.Feature, "choice", act.Choice)
	err = walk(a.Bundles, act.Bundle, func(rel string, info os.FileInfo) error {
		return a.entry(ctx, act.Bundle, rel, info)
	})
	if err != nil {
		return false, err
	}
	a.applied = append(a.applied, act.Bundle)
	return true, nil
}

func (a *Applier) entry(ctx context.Context, bundle, rel string, info os.FileInfo) error {
	src := a.Bundles.Join(bundle, rel)

	switch {
	case info.IsDir():
		if err := a.Target.MkdirAll(rel, 0o755); err != nil {
			return fmt.Errorf("%w: creating %s: %w", ErrIO, rel, err)
		}
	case rel == PatchFile:
		diff, err := a.read(src)
		if err != nil {
			return err
		}
		a.Logger.Debug("applying patch", "bundle", bundle)
		if err := a.VCS.Apply(ctx, a.TargetDir, diff); err != nil {
			return fmt.Errorf("%w: applying patch of bundle %q: %w", ErrCommand, bundle, err)
		}
	case rel == PostHookFile:
		data, err := a.read(src)
		if err != nil {
			return err
		}
		hooks, err := ParseHooks(data)
		if err != nil {
			return fmt.Errorf("%w: bundle %q: %w", ErrValidation, bundle, err)
		}
		for i := range hooks {
			hooks[i].Bundle = bundle
		}
		a.hooks = append(a.hooks, hooks...)
		a.Logger.Debug("post hooks queued", "bundle", bundle, "count", len(hooks))
	default:
		if err := copyFile(a.Bundles, src, a.Target, rel, info); err != nil {
			return fmt.Errorf("%w: copying %s from bundle %q: %w", ErrIO, rel, bundle, err)
		}
	}
	return nil
}

func (a *Applier) read(path string) ([]byte, error) {
	f, err := a.Bundles.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrIO, path, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrIO, path, err)
	}
	return data, nil
}

// Applied returns the bundles applied so far, in order.
func (a *Applier) Applied() []string {
	return a.applied
}

// Hooks returns the queued post hooks in enqueue order.
func (a *Applier) Hooks() []PostHook {
	return a.hooks
}
