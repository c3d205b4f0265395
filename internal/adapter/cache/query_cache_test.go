package cache

import (
	"fmt"
	"testing"
	"time"

	"edumate/internal/domain"
)

func results(ids ...string) []domain.ScoredChunk {
	out := make([]domain.ScoredChunk, len(ids))
	for i, id := range ids {
		out[i] = domain.ScoredChunk{Chunk: domain.Chunk{ID: id}, Score: 1 - float64(i)*0.1}
	}
	return out
}

func TestQueryCache_HitAndMiss(t *testing.T) {
	c := NewQueryCache(10, time.Minute)

	if _, ok := c.Get("what is osmosis?", 5); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Put("what is osmosis?", 5, results("c1", "c2"))

	got, ok := c.Get("what is osmosis?", 5)
	if !ok {
		t.Fatal("expected hit")
	}
	if len(got) != 2 || got[0].Chunk.ID != "c1" {
		t.Errorf("unexpected cached results: %+v", got)
	}

	// Same query, different k, is a different entry.
	if _, ok := c.Get("what is osmosis?", 3); ok {
		t.Error("expected miss for different k")
	}
}

func TestQueryCache_TTLExpiry(t *testing.T) {
	c := NewQueryCache(10, time.Millisecond)

	c.Put("q", 5, results("c1"))
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("q", 5); ok {
		t.Error("expected expired entry to miss")
	}
	if c.Size() != 0 {
		t.Errorf("expired entry not removed: size %d", c.Size())
	}
}

func TestQueryCache_InvalidateClearsAll(t *testing.T) {
	c := NewQueryCache(10, time.Minute)

	c.Put("a", 5, results("c1"))
	c.Put("b", 5, results("c2"))

	gen := c.Generation()
	c.Invalidate()

	if c.Size() != 0 {
		t.Errorf("invalidate left %d entries", c.Size())
	}
	if c.Generation() != gen+1 {
		t.Errorf("generation not bumped: %d -> %d", gen, c.Generation())
	}
	if _, ok := c.Get("a", 5); ok {
		t.Error("expected miss after invalidation")
	}
}

func TestQueryCache_EvictsOldest(t *testing.T) {
	c := NewQueryCache(2, time.Minute)

	c.Put("first", 5, results("c1"))
	c.Put("second", 5, results("c2"))

	// Touch "first" so "second" becomes the eviction candidate.
	c.Get("first", 5)

	c.Put("third", 5, results("c3"))

	if _, ok := c.Get("second", 5); ok {
		t.Error("expected least recently used entry to be evicted")
	}
	if _, ok := c.Get("first", 5); !ok {
		t.Error("recently used entry was evicted")
	}
	if _, ok := c.Get("third", 5); !ok {
		t.Error("newest entry missing")
	}
}

func TestQueryCache_SizeBounded(t *testing.T) {
	c := NewQueryCache(3, time.Minute)

	for i := 0; i < 20; i++ {
		c.Put(fmt.Sprintf("query-%d", i), 5, results("c"))
	}
	if c.Size() != 3 {
		t.Errorf("expected size capped at 3, got %d", c.Size())
	}
}
