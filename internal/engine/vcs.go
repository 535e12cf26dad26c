package engine

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// VCS is the version control the engine drives in the new project.
type VCS interface {
	// Init creates an empty repository in dir.
	Init(ctx context.Context, dir string) error
	// Apply applies a unified diff to the work tree rooted at dir.
	Apply(ctx context.Context, dir string, diff []byte) error
}

// Git implements VCS with the git executable.
type Git struct{}

func (Git) Init(ctx context.Context, dir string) error {
	_, err := runGit(ctx, dir, nil, "init", "-q")
	return err
}

func (Git) Apply(ctx context.Context, dir string, diff []byte) error {
	_, err := runGit(ctx, dir, diff, "apply", "--whitespace=nowarn", "-")
	return err
}

func runGit(ctx context.Context, dir string, stdin []byte, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %w\n%s", args[0], err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}
