package engine

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// skipNames are never copied out of a template tree.
var skipNames = map[string]bool{
	".git":      true,
	".DS_Store": true,
}

// walkFunc is called for every entry below the walk root with its path
// relative to that root.
type walkFunc func(rel string, info os.FileInfo) error

// walk visits the tree under root depth-first with siblings in lexical
// order, so every run over the same tree sees the same sequence. The root
// itself and anything in skipNames are not reported.
func walk(fs billy.Filesystem, root string, fn walkFunc) error {
	return util.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if skipNames[info.Name()] {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		return fn(rel, info)
	})
}

// copyTree copies everything under srcRoot in src to the root of dst.
func copyTree(src billy.Filesystem, srcRoot string, dst billy.Filesystem) error {
	return walk(src, srcRoot, func(rel string, info os.FileInfo) error {
		if info.IsDir() {
			return dst.MkdirAll(rel, 0o755)
		}
		return copyFile(src, src.Join(srcRoot, rel), dst, rel, info)
	})
}

// copyFile copies one entry, creating parents and overwriting an existing
// file. The source permission bits are preserved where dst supports it.
// Symlinks are recreated as links.
func copyFile(src billy.Filesystem, from string, dst billy.Filesystem, to string, info os.FileInfo) error {
	if dir := parentOf(to); dir != "" {
		if err := dst.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	if info.Mode()&os.ModeSymlink != 0 {
		return copyLink(src, from, dst, to)
	}

	in, err := src.Open(from)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := dst.OpenFile(to, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if ch, ok := dst.(billy.Change); ok {
		return ch.Chmod(to, info.Mode().Perm())
	}
	return nil
}

func copyLink(src billy.Filesystem, from string, dst billy.Filesystem, to string) error {
	target, err := src.Readlink(from)
	if err != nil {
		return err
	}
	if _, err := dst.Lstat(to); err == nil {
		if err := dst.Remove(to); err != nil {
			return err
		}
	}
	if err := dst.Symlink(target, to); err != nil {
		return fmt.Errorf("linking %s: %w", to, err)
	}
	return nil
}

func parentOf(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' || p[i] == os.PathSeparator {
			return p[:i]
		}
	}
	return ""
}
