package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"unicode"

	"edumate/internal/adapter/analyzer"
	"edumate/internal/domain"
)

// TextChunker splits normalised text into overlapping chunks near a target
// character size, breaking at word boundaries where possible. Chunks carry
// rune offsets into the source text and together cover it with no gaps.
type TextChunker struct {
	chunkSize int
	overlap   int
	minSize   int
	tokenizer *analyzer.Tokenizer
}

// NewTextChunker creates a chunker with the given target size in runes and
// overlap expressed as a fraction of the chunk size.
func NewTextChunker(chunkSize int, overlapFraction float64, minSize int, tokenizer *analyzer.Tokenizer) (*TextChunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidConfig, chunkSize)
	}
	if overlapFraction < 0 {
		return nil, fmt.Errorf("%w: overlap fraction must not be negative, got %g", domain.ErrInvalidConfig, overlapFraction)
	}
	overlap := int(float64(chunkSize) * overlapFraction)
	if overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap (%d) must be smaller than chunk size (%d)", domain.ErrInvalidConfig, overlap, chunkSize)
	}
	if minSize < 0 || minSize >= chunkSize {
		return nil, fmt.Errorf("%w: minimum chunk size must be in [0, chunk size), got %d", domain.ErrInvalidConfig, minSize)
	}
	return &TextChunker{
		chunkSize: chunkSize,
		overlap:   overlap,
		minSize:   minSize,
		tokenizer: tokenizer,
	}, nil
}

func (c *TextChunker) Chunk(doc domain.Document) ([]domain.Chunk, error) {
	runes := []rune(doc.Text)
	n := len(runes)
	if n == 0 {
		return nil, nil
	}

	type span struct{ start, end int }
	var spans []span

	start := 0
	for start < n {
		if n-start <= c.chunkSize {
			// Trailing fragment below the minimum merges into the
			// previous chunk instead of being emitted or dropped.
			if n-start < c.minSize && len(spans) > 0 {
				spans[len(spans)-1].end = n
			} else {
				spans = append(spans, span{start, n})
			}
			break
		}

		end := start + c.chunkSize
		cut := c.wordBoundary(runes, start, end)
		spans = append(spans, span{start, cut})

		next := cut - c.overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	chunks := make([]domain.Chunk, 0, len(spans))
	for i, sp := range spans {
		text := string(runes[sp.start:sp.end])
		chunks = append(chunks, domain.Chunk{
			ID:          generateChunkID(doc.ID, sp.start, sp.end),
			DocID:       doc.ID,
			Seq:         i,
			StartOffset: sp.start,
			EndOffset:   sp.end,
			Text:        text,
			Tokens:      c.tokenizer.Tokenize(text),
		})
	}

	return chunks, nil
}

// wordBoundary backtracks from end to the nearest whitespace so chunks do
// not split words. Falls back to a hard cut when the window's second half
// holds no whitespace.
func (c *TextChunker) wordBoundary(runes []rune, start, end int) int {
	lowest := start + c.chunkSize/2
	for cut := end; cut > lowest; cut-- {
		if unicode.IsSpace(runes[cut-1]) {
			return cut
		}
	}
	return end
}

func generateChunkID(docID string, start, end int) string {
	data := fmt.Sprintf("%s:%d-%d", docID, start, end)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:8])
}
