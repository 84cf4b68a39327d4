package ingest

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"pagelens/internal/extractor"
	"pagelens/internal/indexer"
)

// fakeFetcher returns canned text or an error, counting calls.
type fakeFetcher struct {
	text  string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

// fakeIndex keeps inserted chunks in memory, keyed by user.
type fakeIndex struct {
	chunks    map[string][]indexer.Chunk
	insertErr error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{chunks: make(map[string][]indexer.Chunk)}
}

func (f *fakeIndex) ExistsForURL(ctx context.Context, userID, url string) bool {
	for _, c := range f.chunks[userID] {
		if c.Meta.FullURL == url {
			return true
		}
	}
	return false
}

func (f *fakeIndex) Insert(ctx context.Context, userID string, chunks []indexer.Chunk) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.chunks[userID] = append(f.chunks[userID], chunks...)
	return nil
}

func TestCoordinator_EnsureIngested_Idempotent(t *testing.T) {
	fetcher := &fakeFetcher{text: "Title: Animals\n\nCats are mammals. Dogs are mammals too."}
	idx := newFakeIndex()
	c := NewCoordinator(fetcher, idx)
	ctx := context.Background()
	url := "https://example.com/a"

	outcome, err := c.EnsureIngested(ctx, "alice", url)
	if err != nil {
		t.Fatalf("EnsureIngested() error = %v", err)
	}
	if outcome != OutcomeIngested {
		t.Fatalf("first call outcome = %v, want ingested", outcome)
	}

	outcome, err = c.EnsureIngested(ctx, "alice", url)
	if err != nil {
		t.Fatalf("EnsureIngested() error = %v", err)
	}
	if outcome != OutcomeAlreadyPresent {
		t.Fatalf("second call outcome = %v, want already_present", outcome)
	}

	if fetcher.calls != 1 {
		t.Errorf("fetch calls = %d, re-ingestion must not re-fetch", fetcher.calls)
	}

	// Exactly one content_id's worth of chunks for the URL
	ids := make(map[string]bool)
	for _, chunk := range idx.chunks["alice"] {
		ids[chunk.ContentID] = true
	}
	if len(ids) != 1 {
		t.Errorf("got %d content ids after two calls, want 1", len(ids))
	}
}

func TestCoordinator_EnsureIngested_Blocked(t *testing.T) {
	fetcher := &fakeFetcher{err: &extractor.BlockedError{URL: "https://example.com/a", StatusCode: http.StatusForbidden}}
	idx := newFakeIndex()
	c := NewCoordinator(fetcher, idx)

	outcome, err := c.EnsureIngested(context.Background(), "alice", "https://example.com/a")
	if err != nil {
		t.Fatalf("EnsureIngested() error = %v", err)
	}
	if outcome != OutcomeBlocked {
		t.Fatalf("outcome = %v, want blocked", outcome)
	}
	if len(idx.chunks["alice"]) != 0 {
		t.Error("no chunks may be inserted for a blocked site")
	}
}

func TestCoordinator_EnsureIngested_NetworkErrorIsExtractionFailed(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	idx := newFakeIndex()
	c := NewCoordinator(fetcher, idx)

	outcome, err := c.EnsureIngested(context.Background(), "alice", "https://example.com/a")
	if err != nil {
		t.Fatalf("EnsureIngested() error = %v", err)
	}
	if outcome != OutcomeExtractionFailed {
		t.Fatalf("outcome = %v, want extraction_failed", outcome)
	}
	if len(idx.chunks["alice"]) != 0 {
		t.Error("no chunks may be inserted when the fetch fails")
	}
}

func TestCoordinator_EnsureIngested_EmptyText(t *testing.T) {
	fetcher := &fakeFetcher{text: "   \n\n  "}
	c := NewCoordinator(fetcher, newFakeIndex())

	outcome, err := c.EnsureIngested(context.Background(), "alice", "https://example.com/a")
	if err != nil {
		t.Fatalf("EnsureIngested() error = %v", err)
	}
	if outcome != OutcomeExtractionFailed {
		t.Fatalf("outcome = %v, want extraction_failed", outcome)
	}
}

func TestCoordinator_EnsureIngested_InsertFailurePropagates(t *testing.T) {
	fetcher := &fakeFetcher{text: "Some page content."}
	idx := newFakeIndex()
	idx.insertErr = errors.New("vector store down")
	c := NewCoordinator(fetcher, idx)

	outcome, err := c.EnsureIngested(context.Background(), "alice", "https://example.com/a")
	if err == nil {
		t.Fatal("EnsureIngested() expected error when insert fails")
	}
	if outcome != OutcomeUnknown {
		t.Errorf("outcome = %v, want unknown on store failure", outcome)
	}
}

func TestCoordinator_MetadataFromURL(t *testing.T) {
	fetcher := &fakeFetcher{text: "Title: Animals\n\nCats are mammals."}
	idx := newFakeIndex()
	c := NewCoordinator(fetcher, idx)

	if _, err := c.EnsureIngested(context.Background(), "alice", "https://example.com/a/b?x=1"); err != nil {
		t.Fatalf("EnsureIngested() error = %v", err)
	}

	chunks := idx.chunks["alice"]
	if len(chunks) == 0 {
		t.Fatal("expected chunks to be inserted")
	}
	meta := chunks[0].Meta
	if meta.FullURL != "https://example.com/a/b?x=1" {
		t.Errorf("FullURL = %q", meta.FullURL)
	}
	if meta.Domain != "example.com" {
		t.Errorf("Domain = %q, want example.com", meta.Domain)
	}
	if meta.URLPath != "/a/b" {
		t.Errorf("URLPath = %q, want /a/b", meta.URLPath)
	}
	if meta.Title != "Animals" {
		t.Errorf("Title = %q, want Animals", meta.Title)
	}
	if meta.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}
