package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func relAll(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		assert.True(t, filepath.IsAbs(p), "expected absolute path, got %s", p)
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestWalker_ExtensionsAndIgnoredDirs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b.md":                     "b",
		"a.js":                     "a",
		"src/app.ts":               "app",
		"src/app.go":               "go",
		"README":                   "no ext",
		"node_modules/lib/x.js":    "dep",
		".git/config.txt":          "git",
		"dist/bundle.js":           "dist",
		"docs/build/notes.txt":     "ignored by base name",
		"docs/guide/intro.txt":     "intro",
		".ragctx/config.json":      "state",
		"src/components/view.tsx":  "view",
		"src/components/data.json": "{}",
	})

	w := NewWalker(
		WithExtensions([]string{".js", ".ts", ".tsx", ".json", ".md", "txt"}),
		WithIgnoreDirs([]string{"node_modules", ".git", "dist", "build", ".ragctx"}),
	)

	files, err := w.Walk(root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"a.js",
		"b.md",
		"docs/guide/intro.txt",
		"src/app.ts",
		"src/components/data.json",
		"src/components/view.tsx",
	}, relAll(t, root, files))
}

func TestWalker_Patterns(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"pkg/a.go":         "a",
		"pkg/a_test.go":    "a test",
		"vendor/x/b.go":    "vendored",
		"cmd/tool/main.go": "main",
	})

	w := NewWalker(
		WithExtensions([]string{".go"}),
		WithPatterns([]string{"**/*.go"}, []string{"vendor/**", "**/*_test.go"}),
	)

	files, err := w.Walk(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"cmd/tool/main.go", "pkg/a.go"}, relAll(t, root, files))
}

func TestWalker_NoExtensionFilter(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"Makefile": "all:", "x.c": "int x;"})

	files, err := NewWalker().Walk(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"Makefile", "x.c"}, relAll(t, root, files))
}

func TestWalker_InvalidRoot(t *testing.T) {
	root := t.TempDir()

	_, err := NewWalker().Walk(filepath.Join(root, "missing"))
	assert.ErrorIs(t, err, ErrRootNotFound)

	file := filepath.Join(root, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	_, err = NewWalker().Walk(file)
	assert.ErrorIs(t, err, ErrNotDirectory)
}

func TestWalker_EmptyDir(t *testing.T) {
	files, err := NewWalker(WithExtensions([]string{".md"})).Walk(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.txt")
	require.NoError(t, os.WriteFile(good, []byte("héllo 世界"), 0644))
	text, err := ReadFile(good)
	require.NoError(t, err)
	assert.Equal(t, "héllo 世界", text)

	bad := filepath.Join(dir, "bad.bin")
	require.NoError(t, os.WriteFile(bad, []byte{0xff, 0xfe, 0x00}, 0644))
	_, err = ReadFile(bad)
	assert.ErrorIs(t, err, ErrInvalidUTF8)

	_, err = ReadFile(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}
