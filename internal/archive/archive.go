// Package archive extracts release archives (zip and gzip-compressed tar)
// into a destination directory. The format is detected from the content,
// not the file name.
package archive

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/maa-labs/maa-cli/internal/platform"
)

// Format identifies an archive encoding.
type Format string

// Supported formats.
const (
	FormatZip   Format = "zip"
	FormatTarGz Format = "tar.gz"
)

var (
	// ErrUnknownFormat is returned for content that is neither zip nor gzip.
	ErrUnknownFormat = errors.New("unknown archive format")
	// ErrUnsafePath is returned for entries that would land outside dest.
	ErrUnsafePath = errors.New("archive entry escapes destination")
)

// Stats summarizes an extraction.
type Stats struct {
	Files int
	Dirs  int
	Links int
}

// Detect returns the format of data by its magic bytes.
func Detect(data []byte) (Format, error) {
	switch {
	case bytes.HasPrefix(data, []byte("PK\x03\x04")), bytes.HasPrefix(data, []byte("PK\x05\x06")):
		return FormatZip, nil
	case bytes.HasPrefix(data, []byte{0x1f, 0x8b}):
		return FormatTarGz, nil
	}
	return "", ErrUnknownFormat
}

// Extract unpacks data into dest, creating dest and any parent directories
// of entries. Existing files are overwritten. Every entry is placed by
// following the links already on disk and must land inside dest; a symlink
// entry must point inside dest without passing through another link.
func Extract(data []byte, dest string) (Stats, error) {
	format, err := Detect(data)
	if err != nil {
		return Stats{}, err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return Stats{}, fmt.Errorf("creating %s: %w", dest, err)
	}
	root, err := filepath.EvalSymlinks(dest)
	if err != nil {
		return Stats{}, fmt.Errorf("resolving %s: %w", dest, err)
	}
	if root, err = filepath.Abs(root); err != nil {
		return Stats{}, fmt.Errorf("resolving %s: %w", dest, err)
	}

	x := &extractor{dest: dest, root: root}
	switch format {
	case FormatZip:
		return x.zip(data)
	default:
		return x.tarGz(data)
	}
}

// extractor writes entries below root, the link-free absolute form of dest.
type extractor struct {
	dest string
	root string
	st   Stats
}

func (x *extractor) zip(data []byte) (Stats, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return x.st, fmt.Errorf("opening zip archive: %w", err)
	}

	for _, f := range r.File {
		rel, err := x.rel(f.Name)
		if err != nil {
			return x.st, err
		}
		if rel == "" {
			continue
		}

		if f.FileInfo().IsDir() {
			if err := x.mkdir(f.Name, rel); err != nil {
				return x.st, err
			}
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return x.st, fmt.Errorf("opening zip entry %s: %w", f.Name, err)
		}
		err = x.file(f.Name, rel, rc, f.Mode())
		rc.Close()
		if err != nil {
			return x.st, err
		}
	}
	return x.st, nil
}

func (x *extractor) tarGz(data []byte) (Stats, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return x.st, fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return x.st, nil
		}
		if err != nil {
			return x.st, fmt.Errorf("reading tar entry: %w", err)
		}

		rel, err := x.rel(hdr.Name)
		if err != nil {
			return x.st, err
		}
		if rel == "" {
			continue
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			err = x.mkdir(hdr.Name, rel)
		case tar.TypeReg:
			err = x.file(hdr.Name, rel, tr, hdr.FileInfo().Mode())
		case tar.TypeSymlink:
			err = x.symlink(hdr.Name, rel, hdr.Linkname)
		}
		if err != nil {
			return x.st, err
		}
	}
}

// rel validates an entry name and returns it relative to dest. The archive
// root maps to "" and is not an error.
func (x *extractor) rel(name string) (string, error) {
	target, err := entryPath(x.dest, name)
	if err != nil || target == "" {
		return "", err
	}
	return filepath.Rel(x.dest, target)
}

func (x *extractor) mkdir(name, rel string) error {
	path, err := x.place(name, rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", name, err)
	}
	x.st.Dirs++
	return nil
}

func (x *extractor) file(name, rel string, r io.Reader, mode os.FileMode) error {
	dir, err := x.place(name, filepath.Dir(rel))
	if err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, filepath.Base(rel)), r, mode); err != nil {
		return fmt.Errorf("extracting %s: %w", name, err)
	}
	x.st.Files++
	return nil
}

func (x *extractor) symlink(name, rel, linkname string) error {
	dir, err := x.place(name, filepath.Dir(rel))
	if err != nil {
		return err
	}
	if !x.linkInside(dir, linkname) {
		return fmt.Errorf("%w: %s -> %s", ErrUnsafePath, name, linkname)
	}
	if err := platform.Link(filepath.FromSlash(linkname), filepath.Join(dir, filepath.Base(rel))); err != nil {
		return fmt.Errorf("linking %s: %w", name, err)
	}
	x.st.Links++
	return nil
}

// place resolves rel below root the way the OS will when the entry is
// written, following links that exist on disk. Components after the first
// missing one are appended as they are.
func (x *extractor) place(name, rel string) (string, error) {
	cur := x.root
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for i, part := range parts {
		if part == "" || part == "." {
			continue
		}
		next := filepath.Join(cur, part)
		info, err := os.Lstat(next)
		if os.IsNotExist(err) {
			cur = filepath.Join(append([]string{next}, parts[i+1:]...)...)
			break
		}
		if err != nil {
			return "", fmt.Errorf("inspecting %s: %w", name, err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			// Dangling links cannot be placed.
			if next, err = filepath.EvalSymlinks(next); err != nil {
				return "", fmt.Errorf("%w: %s: %w", ErrUnsafePath, name, err)
			}
		}
		cur = next
	}
	if !within(x.root, cur) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return cur, nil
}

// linkInside reports whether linkname, read from the real directory dir,
// stays inside root. Targets may not pass through another link, and ".."
// may not follow a component that does not exist yet, so links created
// later cannot change where this one points.
func (x *extractor) linkInside(dir, linkname string) bool {
	if linkname == "" || filepath.IsAbs(linkname) || strings.HasPrefix(linkname, "/") || strings.Contains(linkname, `\`) {
		return false
	}
	cur := dir
	missing := false
	for _, part := range strings.Split(linkname, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			if missing {
				return false
			}
			cur = filepath.Dir(cur)
			if !within(x.root, cur) {
				return false
			}
			continue
		}
		cur = filepath.Join(cur, part)
		if missing {
			continue
		}
		info, err := os.Lstat(cur)
		switch {
		case os.IsNotExist(err):
			missing = true
		case err != nil, info.Mode()&os.ModeSymlink != 0:
			return false
		}
	}
	return within(x.root, cur)
}

// entryPath maps an archive name to a path under dest. The archive root
// itself maps to "".
func entryPath(dest, name string) (string, error) {
	clean := strings.TrimPrefix(filepath.ToSlash(name), "./")
	clean = strings.TrimSuffix(clean, "/")
	if clean == "" || clean == "." {
		return "", nil
	}
	if strings.Contains(name, `\`) || !filepath.IsLocal(filepath.FromSlash(clean)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return filepath.Join(dest, filepath.FromSlash(clean)), nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && (rel == "." || filepath.IsLocal(rel))
}

func writeFile(path string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	// A previous extraction may have left a link here.
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		_ = os.Remove(path)
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, platform.FileMode(mode))
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return platform.Chmod(path, platform.FileMode(mode))
}
