package chunker

import (
	"errors"
	"strings"
	"testing"

	"edumate/internal/adapter/analyzer"
	"edumate/internal/domain"
)

func newTestChunker(t *testing.T, size int, overlap float64, min int) *TextChunker {
	t.Helper()
	c, err := NewTextChunker(size, overlap, min, analyzer.NewTokenizer())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestChunkerInvalidConfig(t *testing.T) {
	tok := analyzer.NewTokenizer()

	tests := []struct {
		name    string
		size    int
		overlap float64
		min     int
	}{
		{"zero chunk size", 0, 0.1, 0},
		{"overlap equals chunk size", 100, 1.0, 0},
		{"overlap exceeds chunk size", 100, 1.5, 0},
		{"negative overlap", 100, -0.1, 0},
		{"min size >= chunk size", 100, 0.1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTextChunker(tt.size, tt.overlap, tt.min, tok)
			if !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestChunkerShortTextSingleChunk(t *testing.T) {
	c := newTestChunker(t, 200, 0.15, 20)

	doc := domain.Document{ID: "doc1", Text: "Photosynthesis converts light energy into chemical energy."}
	chunks, err := c.Chunk(doc)
	if err != nil {
		t.Fatal(err)
	}

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for text shorter than chunk size, got %d", len(chunks))
	}
	if chunks[0].Text != doc.Text {
		t.Errorf("single chunk must carry the whole text")
	}
	if chunks[0].StartOffset != 0 || chunks[0].EndOffset != len([]rune(doc.Text)) {
		t.Errorf("offsets %d-%d do not cover the text", chunks[0].StartOffset, chunks[0].EndOffset)
	}
}

func TestChunkerEmptyText(t *testing.T) {
	c := newTestChunker(t, 100, 0.1, 10)
	chunks, err := c.Chunk(domain.Document{ID: "doc1", Text: ""})
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks for empty text, got %d", len(chunks))
	}
}

// Coverage property: chunk offsets are contiguous (each chunk starts at or
// before the previous end) and reconstructing from offsets yields the source
// text exactly.
func TestChunkerCoverageReconstruction(t *testing.T) {
	c := newTestChunker(t, 80, 0.2, 15)

	text := strings.Repeat("the mitochondria is the powerhouse of the cell ", 30)
	doc := domain.Document{ID: "doc1", Text: text}

	chunks, err := c.Chunk(doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	runes := []rune(text)
	if chunks[0].StartOffset != 0 {
		t.Errorf("first chunk must start at 0, got %d", chunks[0].StartOffset)
	}
	if last := chunks[len(chunks)-1]; last.EndOffset != len(runes) {
		t.Errorf("last chunk must end at %d, got %d", len(runes), last.EndOffset)
	}

	var rebuilt strings.Builder
	prevEnd := 0
	for i, ch := range chunks {
		if ch.Seq != i {
			t.Errorf("chunk %d has Seq %d", i, ch.Seq)
		}
		if ch.Text != string(runes[ch.StartOffset:ch.EndOffset]) {
			t.Errorf("chunk %d text does not match its offsets", i)
		}
		if ch.StartOffset > prevEnd {
			t.Fatalf("gap before chunk %d: starts at %d, previous ended at %d", i, ch.StartOffset, prevEnd)
		}
		// Append only the non-overlapping suffix.
		rebuilt.WriteString(string(runes[prevEnd:ch.EndOffset]))
		prevEnd = ch.EndOffset
	}

	if rebuilt.String() != text {
		t.Error("concatenating chunks minus overlaps did not reconstruct the source text")
	}
}

func TestChunkerOverlapBounded(t *testing.T) {
	c := newTestChunker(t, 100, 0.3, 10)

	text := strings.Repeat("cells divide through a process called mitosis and grow ", 20)
	chunks, err := c.Chunk(domain.Document{ID: "doc1", Text: text})
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i < len(chunks); i++ {
		overlap := chunks[i-1].EndOffset - chunks[i].StartOffset
		if overlap < 0 {
			t.Fatalf("gap between chunks %d and %d", i-1, i)
		}
		if overlap > 50 { // chunk_size / 2
			t.Errorf("overlap %d between chunks %d and %d exceeds half the chunk size", overlap, i-1, i)
		}
	}
}

func TestChunkerTrailingFragmentMerged(t *testing.T) {
	c := newTestChunker(t, 50, 0.0, 20)

	// 50 runes fill one chunk exactly; the 8-rune tail is below the
	// minimum and must merge into it.
	text := strings.Repeat("abcd ", 10) + "tail end"
	chunks, err := c.Chunk(domain.Document{ID: "doc1", Text: text})
	if err != nil {
		t.Fatal(err)
	}

	last := chunks[len(chunks)-1]
	if last.EndOffset != len([]rune(text)) {
		t.Fatalf("last chunk ends at %d, want %d", last.EndOffset, len([]rune(text)))
	}
	if !strings.HasSuffix(last.Text, "tail end") {
		t.Errorf("trailing fragment was not merged into the previous chunk: %q", last.Text)
	}
	for _, ch := range chunks[:len(chunks)-1] {
		if ch.EndOffset-ch.StartOffset < 20 {
			t.Errorf("non-final chunk shorter than the minimum: %d runes", ch.EndOffset-ch.StartOffset)
		}
	}
}

func TestChunkerWordBoundaries(t *testing.T) {
	c := newTestChunker(t, 60, 0.1, 10)

	text := strings.Repeat("photosynthesis chlorophyll thylakoid stroma granum ", 10)
	chunks, err := c.Chunk(domain.Document{ID: "doc1", Text: text})
	if err != nil {
		t.Fatal(err)
	}

	for i, ch := range chunks[:len(chunks)-1] {
		if !strings.HasSuffix(ch.Text, " ") {
			t.Errorf("chunk %d does not end on a word boundary: %q", i, ch.Text[len(ch.Text)-10:])
		}
	}
}
