package retriever

import (
	"math"
	"sort"

	"ragctx/internal/adapter/analyzer"
	"ragctx/internal/domain"
)

// epsilon keeps the BM25 denominator away from zero.
const epsilon = 1e-6

// scoreScale rounds returned scores to four decimal places.
const scoreScale = 10000

// Params are the BM25 tuning constants.
type Params struct {
	K1 float64 // term-frequency saturation
	B  float64 // length normalization, 0 disables it
}

// DefaultParams returns k1=1.2, b=0.75.
func DefaultParams() Params {
	return Params{K1: 1.2, B: 0.75}
}

// Fallback decides what Search returns when no document scores above zero.
type Fallback int

const (
	// FallbackRawTopK returns the top-K documents even if all scores are
	// zero, so callers always receive some context.
	FallbackRawTopK Fallback = iota
	// FallbackNone returns only positive-score documents.
	FallbackNone
)

type indexedDoc struct {
	doc    domain.Document
	tokens []string
	tf     map[string]int
}

// Index is an in-memory BM25 index over a document set. Statistics are
// rebuilt from scratch whenever the document set changes.
type Index struct {
	tokenizer *analyzer.Tokenizer
	params    Params
	fallback  Fallback

	docs     []indexedDoc
	df       map[string]int
	totalLen int
	avgLen   float64
}

// IndexOption configures an Index.
type IndexOption func(*Index)

func WithParams(p Params) IndexOption {
	return func(ix *Index) { ix.params = p }
}

func WithFallback(f Fallback) IndexOption {
	return func(ix *Index) { ix.fallback = f }
}

// Build tokenizes every document once and computes corpus statistics.
func Build(docs []domain.Document, tokenizer *analyzer.Tokenizer, opts ...IndexOption) *Index {
	if tokenizer == nil {
		tokenizer = analyzer.NewTokenizer(nil)
	}
	ix := &Index{
		tokenizer: tokenizer,
		params:    DefaultParams(),
		fallback:  FallbackRawTopK,
		docs:      make([]indexedDoc, 0, len(docs)),
	}
	for _, opt := range opts {
		opt(ix)
	}

	for _, d := range docs {
		ix.docs = append(ix.docs, ix.analyze(d))
	}
	ix.rebuild()
	return ix
}

func (ix *Index) analyze(d domain.Document) indexedDoc {
	tokens := ix.tokenizer.Tokenize(d.Text)
	tf := make(map[string]int, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	return indexedDoc{doc: d, tokens: tokens, tf: tf}
}

// rebuild recomputes document frequencies and lengths over all documents.
func (ix *Index) rebuild() {
	ix.df = make(map[string]int)
	ix.totalLen = 0

	for _, d := range ix.docs {
		ix.totalLen += len(d.tokens)
		// tf keys are the distinct terms of the document.
		for term := range d.tf {
			ix.df[term]++
		}
	}

	ix.avgLen = 0
	if len(ix.docs) > 0 {
		ix.avgLen = float64(ix.totalLen) / float64(len(ix.docs))
	}
}

// Add appends a document and rebuilds the statistics. A document whose id
// is already present replaces the old one in place.
func (ix *Index) Add(d domain.Document) {
	entry := ix.analyze(d)
	replaced := false
	for i := range ix.docs {
		if ix.docs[i].doc.ID == d.ID {
			ix.docs[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		ix.docs = append(ix.docs, entry)
	}
	ix.rebuild()
}

// Remove deletes the document with the given id and rebuilds the
// statistics. It reports whether a document was removed.
func (ix *Index) Remove(id int) bool {
	for i := range ix.docs {
		if ix.docs[i].doc.ID == id {
			ix.docs = append(ix.docs[:i], ix.docs[i+1:]...)
			ix.rebuild()
			return true
		}
	}
	return false
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	return len(ix.docs)
}

// Stats returns a copy of the corpus statistics.
func (ix *Index) Stats() domain.CorpusStats {
	df := make(map[string]int, len(ix.df))
	for t, n := range ix.df {
		df[t] = n
	}
	return domain.CorpusStats{
		DocumentCount:     len(ix.docs),
		AverageLength:     ix.avgLen,
		DocumentFrequency: df,
	}
}

// Tokens returns the cached tokens of the document with the given id.
func (ix *Index) Tokens(id int) ([]string, bool) {
	for _, d := range ix.docs {
		if d.doc.ID == id {
			return d.tokens, true
		}
	}
	return nil, false
}

type scoredDoc struct {
	doc   *indexedDoc
	score float64
}

// Search scores every document against the query and returns at most topK
// hits ordered by descending score. Ties keep document order.
func (ix *Index) Search(query string, topK int) []domain.Hit {
	if topK <= 0 || len(ix.docs) == 0 {
		return []domain.Hit{}
	}

	queryTokens := ix.tokenizer.Tokenize(query)

	scored := make([]scoredDoc, len(ix.docs))
	for i := range ix.docs {
		scored[i] = scoredDoc{doc: &ix.docs[i], score: ix.score(queryTokens, &ix.docs[i])}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}

	positive := make([]scoredDoc, 0, len(scored))
	for _, s := range scored {
		if s.score > 0 {
			positive = append(positive, s)
		}
	}
	if len(positive) > 0 || ix.fallback == FallbackNone {
		scored = positive
	}

	hits := make([]domain.Hit, 0, len(scored))
	for _, s := range scored {
		hits = append(hits, domain.Hit{
			ID:    s.doc.doc.ID,
			Path:  s.doc.doc.Path,
			Text:  s.doc.doc.Text,
			Score: RoundScore(s.score),
		})
	}
	return hits
}

func (ix *Index) score(queryTokens []string, d *indexedDoc) float64 {
	n := float64(len(ix.docs))
	avgLen := ix.avgLen
	if avgLen == 0 {
		avgLen = 1
	}
	k1, b := ix.params.K1, ix.params.B
	dl := float64(len(d.tokens))

	score := 0.0
	for _, term := range queryTokens {
		f := float64(d.tf[term])
		if f == 0 {
			continue
		}
		df := float64(ix.df[term])
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		denom := f + k1*(1-b+b*(dl/avgLen))
		score += idf * (f * (k1 + 1)) / (denom + epsilon)
	}
	return score
}

// RoundScore rounds a score to four decimal places.
func RoundScore(s float64) float64 {
	return math.Round(s*scoreScale) / scoreScale
}
