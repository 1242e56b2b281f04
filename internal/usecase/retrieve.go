package usecase

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"ragctx/internal/adapter/analyzer"
	"ragctx/internal/adapter/retriever"
	"ragctx/internal/domain"
)

// RetrieveUseCase builds a fresh BM25 index over a file list for every
// query and packs the best chunks into a bounded context.
type RetrieveUseCase struct {
	indexer   *Indexer
	tokenizer *analyzer.Tokenizer
	params    retriever.Params
	fallback  retriever.Fallback
	maxChars  int
	log       zerolog.Logger
}

// RetrieveOptions holds the ranking and budget settings.
type RetrieveOptions struct {
	Params   retriever.Params
	Fallback retriever.Fallback
	MaxChars int
}

// NewRetrieveUseCase creates a new retrieve use case.
func NewRetrieveUseCase(
	indexer *Indexer,
	tokenizer *analyzer.Tokenizer,
	opts RetrieveOptions,
	log zerolog.Logger,
) *RetrieveUseCase {
	return &RetrieveUseCase{
		indexer:   indexer,
		tokenizer: tokenizer,
		params:    opts.Params,
		fallback:  opts.Fallback,
		maxChars:  opts.MaxChars,
		log:       log,
	}
}

// Retrieve indexes files, ranks them against query and assembles the
// context. It never fails: unreadable files are skipped, an empty corpus
// gives an empty result.
func (u *RetrieveUseCase) Retrieve(root string, files []string, query string, topK int) domain.RetrievalResult {
	docs := u.indexer.Index(root, files)
	if len(docs) == 0 {
		u.log.Info().Str("hits", "(none)").Msg("RAG hits")
		return domain.RetrievalResult{Hits: []domain.Hit{}}
	}

	hits := u.Search(docs, query, topK)
	result := domain.RetrievalResult{
		Hits:    hits,
		Context: AssembleContext(hits, u.maxChars),
	}

	u.log.Info().Str("hits", FormatHitSummary(hits)).Msg("RAG hits")
	return result
}

// Search ranks an already indexed document set.
func (u *RetrieveUseCase) Search(docs []domain.Document, query string, topK int) []domain.Hit {
	ix := u.BuildIndex(docs)
	return ix.Search(query, topK)
}

// BuildIndex builds the BM25 index with the configured parameters.
func (u *RetrieveUseCase) BuildIndex(docs []domain.Document) *retriever.Index {
	return retriever.Build(docs, u.tokenizer,
		retriever.WithParams(u.params),
		retriever.WithFallback(u.fallback),
	)
}

// Indexer returns the indexer used for retrieval.
func (u *RetrieveUseCase) Indexer() *Indexer {
	return u.indexer
}

// FormatHitSummary renders hits as "path#id(score), ..." or "(none)".
func FormatHitSummary(hits []domain.Hit) string {
	if len(hits) == 0 {
		return "(none)"
	}
	parts := make([]string, len(hits))
	for i, h := range hits {
		parts[i] = fmt.Sprintf("%s#%d(%s)", h.Path, h.ID, FormatScore(h.Score))
	}
	return strings.Join(parts, ", ")
}
