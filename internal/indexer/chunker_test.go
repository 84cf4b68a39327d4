package indexer

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func testMeta() SourceMeta {
	return SourceMeta{
		FullURL:   "https://example.com/a/b",
		Domain:    "example.com",
		URLPath:   "/a/b",
		Title:     "Example",
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSplitter_Split_ShortText(t *testing.T) {
	s := NewSplitter()
	chunks := s.Split("Cats are mammals. Dogs are mammals too.", "content-1", testMeta())

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for short text, got %d", len(chunks))
	}
	if chunks[0].Text != "Cats are mammals. Dogs are mammals too." {
		t.Errorf("chunk text = %q", chunks[0].Text)
	}
	if chunks[0].ID != "content-1_0" {
		t.Errorf("chunk ID = %q, want content-1_0", chunks[0].ID)
	}
}

func TestSplitter_Split_EmptyText(t *testing.T) {
	s := NewSplitter()
	if chunks := s.Split("", "content-1", testMeta()); len(chunks) != 0 {
		t.Errorf("expected no chunks for empty text, got %d", len(chunks))
	}
	if chunks := s.Split("   \n\n  ", "content-1", testMeta()); len(chunks) != 0 {
		t.Errorf("expected no chunks for whitespace-only text, got %d", len(chunks))
	}
}

func TestSplitter_Split_SizeBounds(t *testing.T) {
	s := NewSplitter()

	var b strings.Builder
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&b, "Paragraph %d has some filler text to give it body.\n\n", i)
	}

	chunks := s.Split(b.String(), "content-2", testMeta())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for _, c := range chunks {
		if n := utf8.RuneCountInString(c.Text); n > chunkSize {
			t.Errorf("chunk %d has %d runes, exceeds max %d", c.Index, n, chunkSize)
		}
	}
}

func TestSplitter_Split_Overlap(t *testing.T) {
	s := NewSplitter()

	var b strings.Builder
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&b, "Sentence number %03d in a long running document.\n", i)
	}

	chunks := s.Split(b.String(), "content-3", testMeta())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Neighboring chunks share a tail/head: the start of each subsequent chunk
	// must appear near the end of its predecessor.
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Text
		head := chunks[i].Text
		if utf8.RuneCountInString(head) > 40 {
			head = string([]rune(head)[:40])
		}
		if !strings.Contains(prev, strings.TrimSpace(head)) {
			t.Errorf("chunk %d does not overlap with its predecessor: head %q", i, head)
		}
	}
}

func TestSplitter_Split_HardSplitLongWord(t *testing.T) {
	s := NewSplitter()
	word := strings.Repeat("x", 2500)

	chunks := s.Split(word, "content-4", testMeta())
	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks for a 2500-rune word, got %d", len(chunks))
	}
	for _, c := range chunks {
		if n := utf8.RuneCountInString(c.Text); n > chunkSize {
			t.Errorf("chunk %d has %d runes, exceeds max %d", c.Index, n, chunkSize)
		}
	}
}

func TestSplitter_Split_Deterministic(t *testing.T) {
	s := NewSplitter()

	var b strings.Builder
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&b, "Line %d with deterministic content.\n", i)
	}
	text := b.String()

	first := s.Split(text, "content-5", testMeta())
	second := s.Split(text, "content-5", testMeta())

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Text != second[i].Text || first[i].ID != second[i].ID {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestSplitter_Split_MetadataPropagation(t *testing.T) {
	s := NewSplitter()
	meta := testMeta()

	var b strings.Builder
	for i := 0; i < 120; i++ {
		fmt.Fprintf(&b, "Row %d of the corpus used for metadata checks.\n", i)
	}

	chunks := s.Split(b.String(), "content-6", meta)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i, c := range chunks {
		if c.Meta != meta {
			t.Errorf("chunk %d metadata = %+v, want %+v", i, c.Meta, meta)
		}
		if c.ContentID != "content-6" {
			t.Errorf("chunk %d content id = %q", i, c.ContentID)
		}
		if c.Index != i {
			t.Errorf("chunk %d index = %d", i, c.Index)
		}
		if want := fmt.Sprintf("content-6_%d", i); c.ID != want {
			t.Errorf("chunk %d id = %q, want %q", i, c.ID, want)
		}
	}
}
