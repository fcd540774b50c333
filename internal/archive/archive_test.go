package archive

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates files (relative path -> content) under a temp dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()

	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	return root
}

// readZip returns entry name -> content for the archive in data.
func readZip(t *testing.T, data []byte) map[string]string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	out := make(map[string]string, len(zr.File))

	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)

		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())

		out[f.Name] = string(content)
	}

	return out
}

func names(entries map[string]string) []string {
	out := make([]string, 0, len(entries))
	for name := range entries {
		out = append(out, name)
	}

	sort.Strings(out)

	return out
}

func TestArchive_RelativeEntries(t *testing.T) {
	root := writeTree(t, map[string]string{
		"Main.java":                 "class Main {}",
		"edu/kit/Terminal.java":     "class Terminal {}",
		"edu/kit/util/Helpers.java": "class Helpers {}",
	})

	var buf bytes.Buffer
	require.NoError(t, New(Options{}).Archive(root, &buf))

	entries := readZip(t, buf.Bytes())
	assert.Equal(t, []string{"Main.java", "edu/kit/Terminal.java", "edu/kit/util/Helpers.java"}, names(entries))
	assert.Equal(t, "class Terminal {}", entries["edu/kit/Terminal.java"])
}

func TestArchive_SkipRules(t *testing.T) {
	root := writeTree(t, map[string]string{
		"Main.java":       "x",
		".git/HEAD":       "ref",
		".idea/misc.xml":  "<x/>",
		"out/Main.class":  "bin",
		".editorconfig":   "root = true",
		"src/.hidden/A.j": "a",
	})

	t.Run("skip dirs only", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, New(Options{SkipDirs: []string{".git", "out"}}).Archive(root, &buf))

		assert.Equal(t, []string{".editorconfig", ".idea/misc.xml", "Main.java", "src/.hidden/A.j"},
			names(readZip(t, buf.Bytes())))
	})

	t.Run("skip dotfiles", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, New(Options{SkipDotfiles: true}).Archive(root, &buf))

		assert.Equal(t, []string{"Main.java", "out/Main.class"}, names(readZip(t, buf.Bytes())))
	})
}

func TestArchive_NFCNames(t *testing.T) {
	nfd := "U\u0308bung.java"
	root := writeTree(t, map[string]string{nfd: "class Uebung {}"})

	var buf bytes.Buffer
	require.NoError(t, New(Options{}).Archive(root, &buf))

	entries := readZip(t, buf.Bytes())
	assert.Contains(t, entries, "\u00dcbung.java")
	assert.NotContains(t, entries, nfd)
}

func TestArchive_EmptyDirectory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(Options{}).Archive(t.TempDir(), &buf))
	assert.Empty(t, readZip(t, buf.Bytes()))
}

func TestArchive_MissingDirectory(t *testing.T) {
	var buf bytes.Buffer
	err := New(Options{}).Archive(filepath.Join(t.TempDir(), "missing"), &buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestArchive_NotADirectory(t *testing.T) {
	root := writeTree(t, map[string]string{"Main.java": "x"})

	var buf bytes.Buffer
	err := New(Options{}).Archive(filepath.Join(root, "Main.java"), &buf)
	require.ErrorIs(t, err, ErrNotDirectory)
}

func TestArchive_FollowsFileSymlinks(t *testing.T) {
	root := writeTree(t, map[string]string{"real/Main.java": "class Main {}"})
	src := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(src, 0o755))

	if err := os.Symlink(filepath.Join(root, "real", "Main.java"), filepath.Join(src, "Main.java")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(src, "linked-dir")))

	var buf bytes.Buffer
	require.NoError(t, New(Options{}).Archive(src, &buf))

	assert.Equal(t, map[string]string{"Main.java": "class Main {}"}, readZip(t, buf.Bytes()))
}
