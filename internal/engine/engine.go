package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/maa-labs/maa-cli/internal/manifest"
	"github.com/maa-labs/maa-cli/internal/output"
	"github.com/maa-labs/maa-cli/internal/prompt"
	"github.com/maa-labs/maa-cli/internal/template"
)

// ProjectVar is seeded with the project folder name before manifest seeds.
const ProjectVar = "project"

// TemplateSource provides a local template checkout.
type TemplateSource interface {
	Ensure(ctx context.Context) (string, error)
}

// Options configure a run.
type Options struct {
	// Folder is the project folder to create. Empty asks Input for it.
	Folder string
	// Parent is the directory Folder is created in. Defaults to the
	// working directory.
	Parent string
	// Overrides maps feature names to values given on the command line.
	Overrides map[string][]string

	Input    prompt.InputSource
	Template TemplateSource
	// VCS defaults to Git.
	VCS    VCS
	Logger *log.Logger

	// Standard streams handed to post hooks. Nil means the process streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Result describes a run. Target and the fields after it are filled in as
// far as the run got.
type Result struct {
	// Stage is StageDone on success and StageAborted on failure.
	Stage Stage
	// Reached is the last stage completed.
	Reached Stage

	Target   string
	Resolved map[string][]string
	// Order lists resolved features in manifest order. Skipped features
	// are not included.
	Order    []string
	Skipped  []string
	Vars     map[string]string
	Applied  []string
	Hooks    []PostHook
	Warnings []string
}

// Run creates a project. The project folder is left on disk whatever the
// outcome.
func Run(ctx context.Context, opts Options) (*Result, error) {
	r := &runner{opts: opts, res: &Result{Stage: StageInit, Reached: StageInit}}
	r.defaults()
	err := r.run(ctx)
	if err != nil {
		r.res.Stage = StageAborted
		return r.res, err
	}
	r.res.Stage = StageDone
	return r.res, nil
}

type runner struct {
	opts  Options
	res   *Result
	log   *log.Logger
	state *State
}

func (r *runner) defaults() {
	r.log = r.opts.Logger
	if r.log == nil {
		r.log = output.Logger
	}
	if r.opts.Input == nil {
		r.opts.Input = prompt.Silent{}
	}
	if r.opts.VCS == nil {
		r.opts.VCS = Git{}
	}
	if r.opts.Stdin == nil {
		r.opts.Stdin = os.Stdin
	}
	if r.opts.Stdout == nil {
		r.opts.Stdout = os.Stdout
	}
	if r.opts.Stderr == nil {
		r.opts.Stderr = os.Stderr
	}
	r.state = NewState()
}

func (r *runner) reach(s Stage) {
	r.res.Reached = s
	r.log.Debug("stage reached", "stage", s.String())
}

func (r *runner) warn(msg string, keyvals ...interface{}) {
	r.log.Warn(msg, keyvals...)
	r.res.Warnings = append(r.res.Warnings, msg)
}

func (r *runner) run(ctx context.Context) error {
	if r.opts.Template == nil {
		return fmt.Errorf("%w: no template source", ErrValidation)
	}
	tmpl, err := r.opts.Template.Ensure(ctx)
	if err != nil {
		return fmt.Errorf("%w: preparing template: %w", ErrCommand, err)
	}
	r.reach(StageTemplateReady)

	m, err := r.loadManifest(tmpl)
	if err != nil {
		return err
	}

	target, name, err := r.folder(ctx)
	if err != nil {
		return err
	}
	r.res.Target = target

	targetFS, err := r.createProject(ctx, tmpl, target)
	if err != nil {
		return err
	}

	r.seed(name, m)

	planner := &Planner{Logger: r.log}
	if err := r.resolve(ctx, m, planner); err != nil {
		return err
	}
	r.reach(StageFeaturesResolved)

	applier := &Applier{
		Bundles:   osfs.New(filepath.Join(tmpl, manifest.FeaturesDir)),
		Target:    targetFS,
		TargetDir: target,
		VCS:       r.opts.VCS,
		Logger:    r.log,
	}
	for _, act := range planner.Plan() {
		_, err := applier.Apply(ctx, act)
		r.res.Applied = applier.Applied()
		if err != nil {
			return err
		}
	}
	r.res.Hooks = applier.Hooks()
	r.reach(StageBundlesApplied)

	hooks := &HookRunner{
		Dir:    target,
		Stdin:  r.opts.Stdin,
		Stdout: r.opts.Stdout,
		Stderr: r.opts.Stderr,
		Logger: r.log,
	}
	if err := hooks.Run(ctx, applier.Hooks(), r.state.Vars()); err != nil {
		return err
	}
	r.reach(StageHooksRun)
	return nil
}

func (r *runner) loadManifest(tmpl string) (*manifest.Manifest, error) {
	path, err := manifest.Locate(tmpl)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	m, err := manifest.Load(path)
	if err != nil {
		if errors.Is(err, manifest.ErrInvalid) {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	for _, w := range m.Warnings {
		r.warn(w)
	}

	var unknown []string
	for name := range r.opts.Overrides {
		if _, ok := m.Feature(name); !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		r.warn(fmt.Sprintf("ignoring override for unknown feature %q", name))
	}
	return m, nil
}

// folder returns the absolute project path and its folder name.
func (r *runner) folder(ctx context.Context) (string, string, error) {
	parent := r.opts.Parent
	if parent == "" {
		parent = "."
	}
	parent, err := filepath.Abs(parent)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrIO, err)
	}

	name := r.opts.Folder
	if name == "" {
		name, err = r.opts.Input.Text(ctx, prompt.TextRequest{
			Title:    "Project folder name",
			Validate: func(s string) error { return ValidateFolder(parent, s) },
		})
		if errors.Is(err, prompt.ErrCancelled) {
			return "", "", fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		if err != nil {
			return "", "", fmt.Errorf("%w: project folder name is required", ErrValidation)
		}
	}
	if err := ValidateFolder(parent, name); err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return filepath.Join(parent, name), name, nil
}

// ValidateFolder checks a new project folder name: it must be non-empty,
// a single path element, and not exist yet under parent.
func ValidateFolder(parent, name string) error {
	switch {
	case name == "":
		return errors.New("empty name")
	case strings.ContainsAny(name, `/\`), name == ".", name == "..":
		return fmt.Errorf("invalid name %q", name)
	}
	if _, err := os.Lstat(filepath.Join(parent, name)); err == nil {
		return fmt.Errorf("folder %q exists", name)
	}
	return nil
}

// createProject copies the template base into target and initializes the
// repository there.
func (r *runner) createProject(ctx context.Context, tmpl, target string) (billy.Filesystem, error) {
	if err := os.MkdirAll(target, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %w", ErrIO, target, err)
	}
	targetFS := osfs.New(target)

	src := osfs.New(tmpl)
	if info, err := src.Stat(template.BaseDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: template has no %s directory", ErrValidation, template.BaseDir)
	}
	if err := copyTree(src, template.BaseDir, targetFS); err != nil {
		return nil, fmt.Errorf("%w: copying template base: %w", ErrIO, err)
	}
	r.log.Info("project created", "path", target)

	if err := r.opts.VCS.Init(ctx, target); err != nil {
		return nil, fmt.Errorf("%w: initializing repository: %w", ErrCommand, err)
	}
	return targetFS, nil
}

func (r *runner) seed(name string, m *manifest.Manifest) {
	r.state.SetVar(ProjectVar, name)
	vars, _ := manifest.ParseVars(m.Vars)
	for k, v := range vars {
		r.state.SetVar(k, v)
	}
	r.res.Vars = r.state.Vars()
}

func (r *runner) resolve(ctx context.Context, m *manifest.Manifest, planner *Planner) error {
	resolver := &Resolver{Input: r.opts.Input, Logger: r.log}
	defer func() {
		r.res.Resolved = r.state.Resolved()
		r.res.Order = r.state.Order()
		r.res.Vars = r.state.Vars()
	}()

	for i := range m.Features {
		f := &m.Features[i]
		override, present := r.opts.Overrides[f.Name]
		values, ok, err := resolver.Resolve(ctx, f, r.state, override, present)
		if err != nil {
			return err
		}
		if !ok {
			r.res.Skipped = append(r.res.Skipped, f.Name)
			continue
		}
		r.log.Debug("feature resolved", "feature", f.Name, "value", values)
		if err := planner.Add(f, values, r.state); err != nil {
			return err
		}
	}
	return nil
}
