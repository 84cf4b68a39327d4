package ingest

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"pagelens/internal/contextutil"
	"pagelens/internal/extractor"
	"pagelens/internal/indexer"
)

// Outcome is the result of an EnsureIngested call.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	// OutcomeAlreadyPresent means content for the URL is already indexed; no work was done.
	OutcomeAlreadyPresent
	// OutcomeIngested means new content was fetched, chunked and indexed.
	OutcomeIngested
	// OutcomeBlocked means the site refuses automated access.
	OutcomeBlocked
	// OutcomeExtractionFailed means the page could not be fetched or yielded no usable text.
	OutcomeExtractionFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAlreadyPresent:
		return "already_present"
	case OutcomeIngested:
		return "ingested"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeExtractionFailed:
		return "extraction_failed"
	default:
		return "unknown"
	}
}

// Fetcher fetches a URL and returns cleaned plain text.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Index is the subset of the per-user vector index the coordinator needs.
type Index interface {
	ExistsForURL(ctx context.Context, userID, url string) bool
	Insert(ctx context.Context, userID string, chunks []indexer.Chunk) error
}

// Coordinator ensures a URL's content is indexed at most once per user.
// The guarantee is best-effort: two concurrent requests that both observe
// "not yet ingested" may both ingest, producing duplicate chunks for the
// same full_url. That race is accepted; there is no per-(user,URL) lock.
type Coordinator struct {
	fetcher  Fetcher
	splitter *indexer.Splitter
	index    Index
	now      func() time.Time
}

// NewCoordinator creates a new ingestion coordinator.
func NewCoordinator(fetcher Fetcher, index Index) *Coordinator {
	return &Coordinator{
		fetcher:  fetcher,
		splitter: indexer.NewSplitter(),
		index:    index,
		now:      time.Now,
	}
}

// EnsureIngested makes sure the URL's content is present in the user's index.
// Recoverable conditions (blocked site, failed extraction) are reported
// through the outcome with a nil error; only store-level failures return an
// error, in which case the outcome is OutcomeUnknown.
func (c *Coordinator) EnsureIngested(ctx context.Context, userID, pageURL string) (Outcome, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if c.index.ExistsForURL(ctx, userID, pageURL) {
		logger.DebugContext(ctx, "content already indexed", "url", pageURL)
		return OutcomeAlreadyPresent, nil
	}

	text, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		var blocked *extractor.BlockedError
		if errors.As(err, &blocked) {
			logger.InfoContext(ctx, "site blocks automated access", "url", pageURL, "status", blocked.StatusCode)
			return OutcomeBlocked, nil
		}
		logger.WarnContext(ctx, "failed to fetch page", "url", pageURL, "error", err)
		return OutcomeExtractionFailed, nil
	}

	if strings.TrimSpace(text) == "" {
		logger.WarnContext(ctx, "page yielded no usable text", "url", pageURL)
		return OutcomeExtractionFailed, nil
	}

	contentID := uuid.New().String()
	chunks := c.splitter.Split(text, contentID, c.sourceMeta(pageURL, text))
	if len(chunks) == 0 {
		return OutcomeExtractionFailed, nil
	}

	if err := c.index.Insert(ctx, userID, chunks); err != nil {
		return OutcomeUnknown, err
	}

	logger.InfoContext(ctx, "ingested page", "url", pageURL, "content_id", contentID, "chunks", len(chunks))
	return OutcomeIngested, nil
}

// sourceMeta builds the provenance metadata shared by all chunks of this
// ingestion.
func (c *Coordinator) sourceMeta(pageURL, text string) indexer.SourceMeta {
	meta := indexer.SourceMeta{
		FullURL:   pageURL,
		Title:     pageTitle(text),
		Timestamp: c.now().UTC(),
	}
	if parsed, err := url.Parse(pageURL); err == nil {
		meta.Domain = parsed.Hostname()
		meta.URLPath = parsed.Path
	}
	return meta
}

// pageTitle recovers the document title from the extractor's "Title: ..." prefix.
func pageTitle(text string) string {
	const prefix = "Title: "
	if !strings.HasPrefix(text, prefix) {
		return ""
	}
	line := text[len(prefix):]
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}
