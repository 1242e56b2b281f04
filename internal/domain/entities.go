package domain

import "time"

// Document is one retrievable chunk of a source file.
type Document struct {
	ID   int
	Path string
	Text string
}

// CorpusStats holds the aggregate term statistics of one document set.
type CorpusStats struct {
	DocumentCount     int
	AverageLength     float64
	DocumentFrequency map[string]int
}

type Hit struct {
	ID    int     `json:"id"`
	Path  string  `json:"path"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

type RetrievalResult struct {
	Hits    []Hit  `json:"hits"`
	Context string `json:"context"`
}

// Run is a recorded retrieval, kept in the history store.
type Run struct {
	ID      uint64    `json:"id"`
	Time    time.Time `json:"time"`
	Command string    `json:"command"`
	Root    string    `json:"root"`
	Query   string    `json:"query"`
	Hits    []HitRef  `json:"hits"`
	Answer  string    `json:"answer,omitempty"`
}

// HitRef identifies a hit without its text.
type HitRef struct {
	ID    int     `json:"id"`
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

// Refs strips the chunk text from hits.
func Refs(hits []Hit) []HitRef {
	refs := make([]HitRef, 0, len(hits))
	for _, h := range hits {
		refs = append(refs, HitRef{ID: h.ID, Path: h.Path, Score: h.Score})
	}
	return refs
}

// ChatMessage is one message of an LLM conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
