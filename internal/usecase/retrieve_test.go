package usecase

import (
	"bytes"
	"path/filepath"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragctx/internal/adapter/analyzer"
	"ragctx/internal/adapter/chunker"
	"ragctx/internal/adapter/retriever"
	"ragctx/internal/domain"
)

func newRetrieve(maxChars int, fallback retriever.Fallback, log zerolog.Logger) *RetrieveUseCase {
	return NewRetrieveUseCase(
		NewIndexer(chunker.NewWindowChunker(800, 120)),
		analyzer.NewTokenizer(analyzer.StopwordSet([]string{"the", "a", "and"})),
		RetrieveOptions{
			Params:   retriever.DefaultParams(),
			Fallback: fallback,
			MaxChars: maxChars,
		},
		log,
	)
}

func sortedFiles(paths []string) []string {
	sort.Strings(paths)
	return paths
}

func TestRetrieve_RanksMatchingFileFirst(t *testing.T) {
	root := t.TempDir()
	files := sortedFiles(writeFiles(t, root, map[string]string{
		"docs/auth.md":  "The login handler validates tokens before the session starts.",
		"docs/cache.md": "Cache entries expire after a configurable interval.",
		"src/util.ts":   "export function sum(a: number, b: number) { return a + b }",
	}))

	uc := newRetrieve(8000, retriever.FallbackRawTopK, zerolog.Nop())
	res := uc.Retrieve(root, files, "session tokens", 3)

	require.Len(t, res.Hits, 1)
	assert.Equal(t, "docs/auth.md", res.Hits[0].Path)
	assert.Greater(t, res.Hits[0].Score, 0.0)
	assert.Contains(t, res.Context, "--- CHUNK: docs/auth.md#0 (score = ")
	assert.Contains(t, res.Context, "login handler")
}

func TestRetrieve_NoMatchFallback(t *testing.T) {
	root := t.TempDir()
	files := sortedFiles(writeFiles(t, root, map[string]string{
		"a.md": "alpha beta",
		"b.md": "gamma delta",
	}))

	raw := newRetrieve(8000, retriever.FallbackRawTopK, zerolog.Nop()).
		Retrieve(root, files, "nothing matches", 5)
	require.Len(t, raw.Hits, 2)
	for _, h := range raw.Hits {
		assert.Equal(t, 0.0, h.Score)
	}
	assert.NotEmpty(t, raw.Context)

	none := newRetrieve(8000, retriever.FallbackNone, zerolog.Nop()).
		Retrieve(root, files, "nothing matches", 5)
	assert.Empty(t, none.Hits)
	assert.Equal(t, "", none.Context)
}

func TestRetrieve_EmptyCorpus(t *testing.T) {
	root := t.TempDir()
	uc := newRetrieve(8000, retriever.FallbackRawTopK, zerolog.Nop())

	res := uc.Retrieve(root, nil, "anything", 8)
	assert.NotNil(t, res.Hits)
	assert.Empty(t, res.Hits)
	assert.Equal(t, "", res.Context)

	res = uc.Retrieve(root, []string{filepath.Join(root, "gone.md")}, "anything", 8)
	assert.Empty(t, res.Hits)
}

func TestRetrieve_Deterministic(t *testing.T) {
	root := t.TempDir()
	files := sortedFiles(writeFiles(t, root, map[string]string{
		"one.md":   "retrieval retrieval budget",
		"two.md":   "budget budget retrieval",
		"three.md": "retrieval budget context",
		"four.md":  "context window",
	}))

	uc := newRetrieve(8000, retriever.FallbackRawTopK, zerolog.Nop())
	first := uc.Retrieve(root, files, "retrieval budget", 3)
	for i := 0; i < 5; i++ {
		again := uc.Retrieve(root, files, "retrieval budget", 3)
		assert.Equal(t, first, again)
	}
}

func TestRetrieve_ContextBudget(t *testing.T) {
	root := t.TempDir()
	body := ""
	for i := 0; i < 60; i++ {
		body += "budget words fill the window "
	}
	files := sortedFiles(writeFiles(t, root, map[string]string{"big.md": body}))

	uc := newRetrieve(200, retriever.FallbackRawTopK, zerolog.Nop())
	res := uc.Retrieve(root, files, "budget", 8)

	require.NotEmpty(t, res.Hits)
	assert.Contains(t, res.Context, TruncationMarker)
}

func TestRetrieve_LogsHits(t *testing.T) {
	root := t.TempDir()
	files := sortedFiles(writeFiles(t, root, map[string]string{"a.md": "needle here"}))

	var buf bytes.Buffer
	uc := newRetrieve(8000, retriever.FallbackRawTopK, zerolog.New(&buf))
	uc.Retrieve(root, files, "needle", 8)

	assert.Contains(t, buf.String(), "RAG hits")
	assert.Contains(t, buf.String(), "a.md#0(")
}

func TestFormatHitSummary(t *testing.T) {
	assert.Equal(t, "(none)", FormatHitSummary(nil))
	hits := []domain.Hit{
		{ID: 2, Path: "a.md", Score: 1.25},
		{ID: 0, Path: "b.md", Score: 0},
	}
	assert.Equal(t, "a.md#2(1.25), b.md#0(0)", FormatHitSummary(hits))
}
