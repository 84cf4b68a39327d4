package indexer

import "time"

// SourceMeta describes the provenance shared by every chunk derived from one
// ingestion of one URL. FullURL is the exact-match key used for per-URL
// retrieval filtering; Domain is a fallback filter.
type SourceMeta struct {
	FullURL   string
	Domain    string
	URLPath   string
	Title     string
	Timestamp time.Time
}

// Chunk is the unit of indexed text: a bounded window of the source document
// plus provenance metadata.
type Chunk struct {
	// ID is the logical chunk identifier, "<content_id>_<index>".
	ID string
	// ContentID is shared by all chunks of one ingestion of one URL.
	ContentID string
	// Index is the ordinal position of the chunk within the source document.
	Index int
	Text  string
	Meta  SourceMeta
}
