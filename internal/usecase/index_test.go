package usecase

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragctx/internal/adapter/chunker"
)

func writeFiles(t *testing.T, root string, files map[string]string) []string {
	t.Helper()
	var paths []string
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		paths = append(paths, p)
	}
	return paths
}

func TestIndexer_IDsFollowFileThenChunkOrder(t *testing.T) {
	root := "/repo"
	files := []string{"/repo/a.txt", "/repo/b.txt", "/repo/c.txt", "/repo/d.txt"}
	contents := map[string]string{
		"/repo/a.txt": "aaaaaaaaaa",
		"/repo/b.txt": "bbbbb",
		"/repo/c.txt": "cccccccccccc",
		"/repo/d.txt": "dd",
	}

	// Earlier files finish later so completion order is reversed.
	reader := func(path string) (string, error) {
		for i, f := range files {
			if f == path {
				time.Sleep(time.Duration(len(files)-i) * 5 * time.Millisecond)
			}
		}
		return contents[path], nil
	}

	ix := NewIndexer(chunker.NewWindowChunker(5, 0), WithReader(reader), WithWorkers(4))
	docs := ix.Index(root, files)

	require.Len(t, docs, 7)
	wantPaths := []string{"a.txt", "a.txt", "b.txt", "c.txt", "c.txt", "c.txt", "d.txt"}
	for i, d := range docs {
		assert.Equal(t, i, d.ID)
		assert.Equal(t, wantPaths[i], d.Path)
	}
	assert.Equal(t, "cc", docs[5].Text)
}

func TestIndexer_SkipsUnreadableFiles(t *testing.T) {
	root := t.TempDir()
	paths := writeFiles(t, root, map[string]string{
		"ok.md":  "readable content",
		"bad.md": "\xff\xfe broken",
	})
	missing := filepath.Join(root, "missing.md")

	ix := NewIndexer(chunker.NewWindowChunker(800, 120))
	docs := ix.Index(root, append(paths, missing))

	require.Len(t, docs, 1)
	assert.Equal(t, "ok.md", docs[0].Path)
	assert.Equal(t, 0, docs[0].ID)
	assert.Equal(t, "readable content", docs[0].Text)
}

func TestIndexer_ReaderErrorsDoNotAbort(t *testing.T) {
	reader := func(path string) (string, error) {
		if strings.HasSuffix(path, "2") {
			return "", errors.New("permission denied")
		}
		return "text of " + path, nil
	}

	ix := NewIndexer(chunker.NewWindowChunker(100, 0), WithReader(reader))
	docs := ix.Index("/r", []string{"/r/f1", "/r/f2", "/r/f3"})

	require.Len(t, docs, 2)
	assert.Equal(t, "f1", docs[0].Path)
	assert.Equal(t, "f3", docs[1].Path)
	assert.Equal(t, 1, docs[1].ID)
}

func TestIndexer_Progress(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []int
		total int
	)
	progress := func(processed, n int, _ string) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, processed)
		total = n
	}

	reader := func(string) (string, error) { return "x", nil }
	ix := NewIndexer(chunker.NewWindowChunker(10, 0), WithReader(reader), WithProgress(progress))
	ix.Index("/r", []string{"/r/1", "/r/2", "/r/3"})

	assert.Equal(t, []int{1, 2, 3}, calls)
	assert.Equal(t, 3, total)
}

func TestIndexer_EmptyFileList(t *testing.T) {
	ix := NewIndexer(chunker.NewWindowChunker(10, 0))
	docs := ix.Index("/r", nil)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestRelPath(t *testing.T) {
	root := filepath.Join("base", "repo")
	assert.Equal(t, "src/a.ts", RelPath(root, filepath.Join(root, "src", "a.ts")))
	assert.Equal(t, "a.md", RelPath(root, filepath.Join(root, "a.md")))
}
