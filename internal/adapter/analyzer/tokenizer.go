package analyzer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// separators matches any run of characters that cannot be part of a term:
// everything except a-z, 0-9, underscore and CJK unified ideographs.
var separators = regexp.MustCompile(`[^a-z0-9_\x{4e00}-\x{9fa5}]+`)

// Tokenizer splits text into terms, dropping stop words and
// single-character tokens.
type Tokenizer struct {
	stopwords map[string]struct{}
}

// NewTokenizer creates a Tokenizer with the given stop words.
func NewTokenizer(stopwords map[string]struct{}) *Tokenizer {
	if stopwords == nil {
		stopwords = map[string]struct{}{}
	}
	return &Tokenizer{stopwords: stopwords}
}

// Tokenize splits text into terms.
func (t *Tokenizer) Tokenize(text string) []string {
	return Tokenize(text, t.stopwords)
}

// IsStopword reports whether word is in the stop-word set.
func (t *Tokenizer) IsStopword(word string) bool {
	_, ok := t.stopwords[word]
	return ok
}

// Tokenize lower-cases text, splits it on separator runs and filters out
// empty tokens, stop words and tokens shorter than two characters. It never
// returns nil.
func Tokenize(text string, stopwords map[string]struct{}) []string {
	parts := separators.Split(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(parts))

	for _, p := range parts {
		if utf8.RuneCountInString(p) < 2 {
			continue
		}
		if _, isStop := stopwords[p]; isStop {
			continue
		}
		tokens = append(tokens, p)
	}

	return tokens
}

// StopwordSet builds a set from a word list.
func StopwordSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
