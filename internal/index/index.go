package index

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pagelens/internal/contextutil"
	"pagelens/internal/indexer"
	"pagelens/internal/vectorstore"
)

// Embedder generates embedding vectors for texts.
// This interface is defined from the index layer's perspective (consumer-first).
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ScoredChunk is a retrieved chunk with its relevance score.
// Higher scores are more relevant.
type ScoredChunk struct {
	Chunk indexer.Chunk
	Score float32
}

// UserIndex owns one isolated similarity-searchable collection per user.
// Collections are created lazily on first write.
type UserIndex struct {
	embedder   Embedder
	store      vectorstore.VectorStore
	vectorSize int
}

// NewUserIndex creates a new per-user vector index.
func NewUserIndex(embedder Embedder, store vectorstore.VectorStore, vectorSize int) *UserIndex {
	return &UserIndex{
		embedder:   embedder,
		store:      store,
		vectorSize: vectorSize,
	}
}

// CollectionName returns the collection owned by the given user. The prefix
// plus sanitization guarantees no two user ids map to overlapping names.
func CollectionName(userID string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, userID)
	return "user_" + sanitized
}

// HasAnyDocuments reports whether the user's collection contains at least one
// chunk. A missing collection or a store failure is treated conservatively as
// "no documents".
func (x *UserIndex) HasAnyDocuments(ctx context.Context, userID string) bool {
	logger := contextutil.LoggerFromContext(ctx)
	collection := CollectionName(userID)

	exists, err := x.store.CollectionExists(ctx, collection)
	if err != nil {
		logger.WarnContext(ctx, "failed to check collection existence", "collection", collection, "error", err)
		return false
	}
	if !exists {
		return false
	}

	count, err := x.store.Count(ctx, collection, nil)
	if err != nil {
		logger.WarnContext(ctx, "failed to count documents", "collection", collection, "error", err)
		return false
	}
	return count > 0
}

// ExistsForURL reports whether at least one chunk with the exact full_url
// exists for this user. Store failures are treated conservatively as
// "does not exist".
func (x *UserIndex) ExistsForURL(ctx context.Context, userID, url string) bool {
	logger := contextutil.LoggerFromContext(ctx)
	collection := CollectionName(userID)

	exists, err := x.store.CollectionExists(ctx, collection)
	if err != nil {
		logger.WarnContext(ctx, "failed to check collection existence", "collection", collection, "error", err)
		return false
	}
	if !exists {
		return false
	}

	count, err := x.store.Count(ctx, collection, map[string]string{"full_url": url})
	if err != nil {
		logger.WarnContext(ctx, "failed to count chunks for url", "collection", collection, "url", url, "error", err)
		return false
	}
	return count > 0
}

// Insert embeds the chunks and adds them to the user's collection, creating
// it on first write. Each chunk is independently retrievable afterward by
// similarity or exact metadata filter.
func (x *UserIndex) Insert(ctx context.Context, userID string, chunks []indexer.Chunk) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(chunks) == 0 {
		return nil
	}

	collection := CollectionName(userID)
	if err := x.store.EnsureCollection(ctx, collection, x.vectorSize); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := x.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(vectors))
	}

	points := make([]vectorstore.Point, len(chunks))
	for i, chunk := range chunks {
		points[i] = vectorstore.Point{
			ID:   PointID(chunk.ID),
			Vec:  vectors[i],
			Meta: chunkPayload(chunk),
		}
	}

	if err := x.store.Upsert(ctx, collection, points); err != nil {
		return fmt.Errorf("failed to upsert chunks: %w", err)
	}

	logger.InfoContext(ctx, "inserted chunks", "collection", collection, "count", len(chunks))
	return nil
}

// Search runs a filtered nearest-neighbor search over the user's collection
// and returns chunks ranked descending by relevance, truncated to k.
func (x *UserIndex) Search(ctx context.Context, userID, query string, k int, filters map[string]string) ([]ScoredChunk, error) {
	collection := CollectionName(userID)

	vectors, err := x.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}

	results, err := x.store.Search(ctx, collection, vectors[0], k, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to search collection: %w", err)
	}

	scored := make([]ScoredChunk, 0, len(results))
	for _, r := range results {
		scored = append(scored, ScoredChunk{
			Chunk: chunkFromPayload(r.Meta),
			Score: r.Score,
		})
	}
	return scored, nil
}

// PointID derives a deterministic UUID from the logical chunk id, since the
// vector store requires UUID point identifiers.
func PointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(chunkID)).String()
}

// chunkPayload builds the stored payload for a chunk. The full chunk text is
// kept in the payload so retrieval needs no secondary lookup. "source"
// duplicates "full_url" and serves as the broader fallback filter key.
func chunkPayload(chunk indexer.Chunk) map[string]any {
	return map[string]any{
		"chunk_id":    chunk.ID,
		"content_id":  chunk.ContentID,
		"chunk_index": chunk.Index,
		"text":        chunk.Text,
		"full_url":    chunk.Meta.FullURL,
		"source":      chunk.Meta.FullURL,
		"domain":      chunk.Meta.Domain,
		"url_path":    chunk.Meta.URLPath,
		"title":       chunk.Meta.Title,
		"timestamp":   chunk.Meta.Timestamp.UTC().Format(time.RFC3339),
	}
}

// chunkFromPayload rebuilds a chunk from a stored payload.
func chunkFromPayload(meta map[string]any) indexer.Chunk {
	chunk := indexer.Chunk{
		ID:        stringValue(meta, "chunk_id"),
		ContentID: stringValue(meta, "content_id"),
		Text:      stringValue(meta, "text"),
		Meta: indexer.SourceMeta{
			FullURL: stringValue(meta, "full_url"),
			Domain:  stringValue(meta, "domain"),
			URLPath: stringValue(meta, "url_path"),
			Title:   stringValue(meta, "title"),
		},
	}

	switch v := meta["chunk_index"].(type) {
	case int64:
		chunk.Index = int(v)
	case int:
		chunk.Index = v
	case float64:
		chunk.Index = int(v)
	}

	if ts, err := time.Parse(time.RFC3339, stringValue(meta, "timestamp")); err == nil {
		chunk.Meta.Timestamp = ts
	}

	return chunk
}

func stringValue(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}
