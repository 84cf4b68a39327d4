package index

import (
	"context"
	"errors"
	"testing"
	"time"

	"pagelens/internal/indexer"
	"pagelens/internal/vectorstore"
)

// fakeEmbedder returns a fixed-size vector per input text.
type fakeEmbedder struct {
	calls [][]string
	err   error
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, texts)
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

// fakeStore is an in-memory VectorStore keyed by collection name.
type fakeStore struct {
	collections map[string][]vectorstore.Point
	countErr    error
	existsErr   error
	searchErr   error
	upserted    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{collections: make(map[string][]vectorstore.Point)}
}

func (f *fakeStore) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	if _, ok := f.collections[collection]; !ok {
		f.collections[collection] = nil
	}
	return nil
}

func (f *fakeStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.collections[collection]
	return ok, nil
}

func (f *fakeStore) Upsert(ctx context.Context, collection string, points []vectorstore.Point) error {
	f.collections[collection] = append(f.collections[collection], points...)
	f.upserted += len(points)
	return nil
}

func (f *fakeStore) Search(ctx context.Context, collection string, query []float32, k int, filters map[string]string) ([]vectorstore.SearchResult, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var results []vectorstore.SearchResult
	for _, p := range f.collections[collection] {
		if matches(p.Meta, filters) {
			results = append(results, vectorstore.SearchResult{PointID: p.ID, Score: 0.9, Meta: p.Meta})
		}
		if len(results) == k {
			break
		}
	}
	return results, nil
}

func (f *fakeStore) Count(ctx context.Context, collection string, filters map[string]string) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	n := 0
	for _, p := range f.collections[collection] {
		if matches(p.Meta, filters) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) Delete(ctx context.Context, collection string, ids []string) error {
	return nil
}

func matches(meta map[string]any, filters map[string]string) bool {
	for k, v := range filters {
		if s, _ := meta[k].(string); s != v {
			return false
		}
	}
	return true
}

func testChunks(contentID, url string, n int) []indexer.Chunk {
	meta := indexer.SourceMeta{
		FullURL:   url,
		Domain:    "example.com",
		URLPath:   "/a",
		Timestamp: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	chunks := make([]indexer.Chunk, n)
	for i := range chunks {
		chunks[i] = indexer.Chunk{
			ID:        contentID + "_" + string(rune('0'+i)),
			ContentID: contentID,
			Index:     i,
			Text:      "chunk text",
			Meta:      meta,
		}
	}
	return chunks
}

func TestCollectionName(t *testing.T) {
	tests := []struct {
		userID string
		want   string
	}{
		{userID: "alice", want: "user_alice"},
		{userID: "a1b2-c3", want: "user_a1b2-c3"},
		{userID: "we!rd id", want: "user_we_rd_id"},
	}
	for _, tt := range tests {
		if got := CollectionName(tt.userID); got != tt.want {
			t.Errorf("CollectionName(%q) = %q, want %q", tt.userID, got, tt.want)
		}
	}
}

func TestUserIndex_InsertThenExistsForURL(t *testing.T) {
	store := newFakeStore()
	idx := NewUserIndex(&fakeEmbedder{}, store, 3)
	ctx := context.Background()

	url := "https://example.com/a"
	if idx.ExistsForURL(ctx, "alice", url) {
		t.Error("ExistsForURL should be false before any insert")
	}

	if err := idx.Insert(ctx, "alice", testChunks("c1", url, 3)); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if !idx.ExistsForURL(ctx, "alice", url) {
		t.Error("ExistsForURL should be true after insert")
	}
	if idx.ExistsForURL(ctx, "alice", "https://example.com/other") {
		t.Error("ExistsForURL should be false for a different URL")
	}
}

func TestUserIndex_PerUserIsolation(t *testing.T) {
	store := newFakeStore()
	idx := NewUserIndex(&fakeEmbedder{}, store, 3)
	ctx := context.Background()

	url := "https://example.com/a"
	if err := idx.Insert(ctx, "alice", testChunks("c1", url, 2)); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if idx.HasAnyDocuments(ctx, "bob") {
		t.Error("user B must not see user A's documents")
	}
	if idx.ExistsForURL(ctx, "bob", url) {
		t.Error("user B must not see user A's URL")
	}

	results, err := idx.Search(ctx, "bob", "anything", 5, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("search as user B returned %d results, want 0", len(results))
	}
}

func TestUserIndex_ConservativeOnStoreErrors(t *testing.T) {
	store := newFakeStore()
	store.collections["user_alice"] = nil
	store.countErr = errors.New("store down")
	idx := NewUserIndex(&fakeEmbedder{}, store, 3)
	ctx := context.Background()

	if idx.HasAnyDocuments(ctx, "alice") {
		t.Error("HasAnyDocuments must be false on store error")
	}
	if idx.ExistsForURL(ctx, "alice", "https://example.com/a") {
		t.Error("ExistsForURL must be false on store error")
	}
}

func TestUserIndex_SearchRoundTripsChunks(t *testing.T) {
	store := newFakeStore()
	idx := NewUserIndex(&fakeEmbedder{}, store, 3)
	ctx := context.Background()

	url := "https://example.com/a"
	if err := idx.Insert(ctx, "alice", testChunks("c1", url, 2)); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	results, err := idx.Search(ctx, "alice", "question", 5, map[string]string{"full_url": url})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	first := results[0].Chunk
	if first.ContentID != "c1" {
		t.Errorf("ContentID = %q, want c1", first.ContentID)
	}
	if first.Text != "chunk text" {
		t.Errorf("Text = %q", first.Text)
	}
	if first.Meta.FullURL != url {
		t.Errorf("FullURL = %q, want %q", first.Meta.FullURL, url)
	}
	if first.Meta.Timestamp.IsZero() {
		t.Error("Timestamp should round-trip")
	}
}

func TestUserIndex_InsertEmbedderFailure(t *testing.T) {
	store := newFakeStore()
	idx := NewUserIndex(&fakeEmbedder{err: errors.New("embeddings down")}, store, 3)

	err := idx.Insert(context.Background(), "alice", testChunks("c1", "https://example.com/a", 1))
	if err == nil {
		t.Fatal("Insert() expected error when embedder fails")
	}
	if store.upserted != 0 {
		t.Errorf("no points should be upserted when embedding fails, got %d", store.upserted)
	}
}

func TestPointID_Deterministic(t *testing.T) {
	a := PointID("c1_0")
	b := PointID("c1_0")
	c := PointID("c1_1")

	if a != b {
		t.Error("PointID must be deterministic for the same chunk id")
	}
	if a == c {
		t.Error("PointID must differ for different chunk ids")
	}
}
