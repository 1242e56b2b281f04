package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"ragctx/internal/domain"
)

// TruncationMarker is appended to a chunk body that was clipped to fit the
// context budget.
const TruncationMarker = "\n...<truncated>..."

// ChunkHeader returns the header line that introduces a hit in the context.
func ChunkHeader(h domain.Hit) string {
	return fmt.Sprintf("--- CHUNK: %s#%d (score = %s) ---\n", h.Path, h.ID, FormatScore(h.Score))
}

// FormatScore prints a score with the fewest digits that round-trip.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// AssembleContext packs hits, in order, into one text blob of roughly
// maxChars characters. Bodies that do not fit are clipped and marked;
// once not even a header fits, the remaining hits are dropped.
func AssembleContext(hits []domain.Hit, maxChars int) string {
	used := 0
	sections := make([]string, 0, len(hits))

	for _, h := range hits {
		header := ChunkHeader(h)
		headerLen := utf8.RuneCountInString(header)

		remaining := maxChars - used - headerLen
		if remaining <= 0 {
			break
		}

		body := h.Text
		if utf8.RuneCountInString(body) > remaining {
			body = string([]rune(body)[:remaining]) + TruncationMarker
		}

		sections = append(sections, header+body+"\n")
		used += headerLen + utf8.RuneCountInString(body) + 1
	}

	return strings.Join(sections, "\n")
}
