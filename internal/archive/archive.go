// Package archive packages a source directory as a zip stream for upload.
// Entry names are relative to the directory root, use forward slashes, and
// are NFC-normalised so trees created on macOS (NFD file names) produce the
// same archive as on Linux.
package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/zip"
	"golang.org/x/text/unicode/norm"
)

// ErrNotDirectory is returned when the source path is not a directory.
var ErrNotDirectory = errors.New("archive: not a directory")

// Options controls which files are packaged.
type Options struct {
	// SkipDirs lists directory names (not paths) that are left out entirely,
	// e.g. ".git".
	SkipDirs []string
	// SkipDotfiles leaves out files and directories whose name starts with ".".
	SkipDotfiles bool
}

// Zipper writes zip archives of directories. The zero value packages
// everything.
type Zipper struct {
	opts Options
}

// New creates a Zipper with the given options.
func New(opts Options) *Zipper {
	return &Zipper{opts: opts}
}

// Archive writes a zip of dir's contents to w. Only the archive's central
// directory is buffered; file contents are streamed.
func (z *Zipper) Archive(dir string, w io.Writer) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	zw := zip.NewWriter(w)

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path == dir {
			return nil
		}

		if z.skip(d) {
			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		return addFile(zw, path, entryName(rel))
	})
	if walkErr != nil {
		zw.Close()
		return fmt.Errorf("archive: %w", walkErr)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("archive: finishing zip: %w", err)
	}

	return nil
}

// skip reports whether d is excluded by the options.
func (z *Zipper) skip(d fs.DirEntry) bool {
	name := d.Name()

	if z.opts.SkipDotfiles && strings.HasPrefix(name, ".") {
		return true
	}

	return d.IsDir() && slices.Contains(z.opts.SkipDirs, name)
}

// entryName converts a relative OS path into a zip entry name.
func entryName(rel string) string {
	return norm.NFC.String(filepath.ToSlash(rel))
}

// addFile copies the file at path into the archive as name. Symlinks are
// followed when they point at regular files and skipped otherwise.
func addFile(zw *zip.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if !info.Mode().IsRegular() {
		return nil
	}

	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}

	hdr.Name = name
	hdr.Method = zip.Deflate

	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}

	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copying %s: %w", name, err)
	}

	return nil
}
