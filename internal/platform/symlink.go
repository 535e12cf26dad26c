package platform

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// sidecarSuffix marks the file recording the target of a copy fallback.
const sidecarSuffix = ".target"

// Link makes link point at target, replacing whatever is at link. A
// relative target is resolved against link's directory. When Windows
// refuses to create the symlink, the target (file or directory) is copied
// instead and the target path is recorded in a sidecar file.
func Link(target, link string) error {
	if err := Unlink(link); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing existing %s: %w", link, err)
	}
	if err := os.MkdirAll(filepath.Dir(link), 0o755); err != nil {
		return fmt.Errorf("creating link parent: %w", err)
	}

	err := os.Symlink(target, link)
	if err == nil || runtime.GOOS != "windows" {
		return err
	}

	src := target
	if !filepath.IsAbs(src) {
		src = filepath.Join(filepath.Dir(link), src)
	}
	if err := copyTree(src, link); err != nil {
		return fmt.Errorf("symlink fallback (copy) failed: %w", err)
	}
	_ = os.WriteFile(link+sidecarSuffix, []byte(target), 0o644)
	return nil
}

// Unlink removes a link created by Link, including a copy fallback and its
// sidecar. Plain files are removed too; a real directory is left alone
// unless it carries a sidecar.
func Unlink(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	sidecar := path + sidecarSuffix
	if _, serr := os.Stat(sidecar); serr == nil {
		_ = os.Remove(sidecar)
		return os.RemoveAll(path)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a link", path)
	}
	return os.Remove(path)
}

// Readlink returns the target of a link created by Link.
func Readlink(path string) (string, error) {
	target, err := os.Readlink(path)
	if err == nil {
		return target, nil
	}
	data, readErr := os.ReadFile(path + sidecarSuffix)
	if readErr != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// SymlinksSupported reports whether native symlinks can be created here.
// On Windows this tries a throwaway link.
func SymlinksSupported() bool {
	if runtime.GOOS != "windows" {
		return true
	}
	link := filepath.Join(os.TempDir(), ".maa-symlink-test")
	_ = os.Remove(link)
	defer os.Remove(link)
	return os.Symlink(os.TempDir(), link) == nil
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		out := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(out, 0o755)
		}
		return copyFile(path, out)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
