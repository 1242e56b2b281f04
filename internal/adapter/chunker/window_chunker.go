package chunker

import "strings"

// WindowChunker cuts text into fixed-size, overlapping character windows.
type WindowChunker struct {
	size    int
	overlap int
}

// NewWindowChunker creates a chunker. Overlap is clamped into [0, size).
func NewWindowChunker(size, overlap int) *WindowChunker {
	if size < 1 {
		size = 1
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}
	return &WindowChunker{size: size, overlap: overlap}
}

func (c *WindowChunker) Size() int    { return c.size }
func (c *WindowChunker) Overlap() int { return c.overlap }

func (c *WindowChunker) Chunk(text string) []string {
	return Chunk(text, c.size, c.overlap)
}

// Chunk splits text into windows of up to size characters, starting a new
// window every size-overlap characters (at least one). Windows holding only
// whitespace are dropped; the rest are returned verbatim.
func Chunk(text string, size, overlap int) []string {
	chunks := []string{}
	if text == "" {
		return chunks
	}

	step := size - overlap
	if step < 1 {
		step = 1
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i += step {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		slice := string(runes[i:end])
		if strings.TrimSpace(slice) == "" {
			continue
		}
		chunks = append(chunks, slice)
	}

	return chunks
}
