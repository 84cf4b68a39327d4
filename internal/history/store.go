package history

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_store.go -package=mocks pagelens/internal/history Store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested history entry does not exist or
// belongs to another user.
var ErrNotFound = errors.New("history entry not found")

// History types accepted by DeleteUserHistory.
const (
	TypeQuery    = "query"
	TypeBrowsing = "browsing"
	TypeAll      = "all"
)

// QueryEntry is one answered question in a user's history.
type QueryEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
}

// BrowsingEntry is one visited page in a user's history.
type BrowsingEntry struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	URL       string         `json:"url"`
	Title     string         `json:"title,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// UserHistory bundles both history types for the combined retrieval endpoint.
type UserHistory struct {
	BrowsingHistory []BrowsingEntry `json:"browsing_history"`
	QueryHistory    []QueryEntry    `json:"query_history"`
}

// Store persists per-user browsing and query history. Implementations must
// scope every operation strictly to the given user id. Listings are ordered
// newest-first.
type Store interface {
	// SaveQueryHistory appends a query entry and returns its id.
	// A fresh id is assigned when entry.ID is empty.
	SaveQueryHistory(ctx context.Context, entry QueryEntry) (string, error)

	// SaveBrowsingHistory appends a browsing entry and returns its id.
	SaveBrowsingHistory(ctx context.Context, entry BrowsingEntry) (string, error)

	// GetUserHistory returns both history types for the user, paginated.
	GetUserHistory(ctx context.Context, userID string, limit, offset int) (*UserHistory, error)

	// GetQueryHistory returns the user's query history only, paginated.
	GetQueryHistory(ctx context.Context, userID string, limit, offset int) ([]QueryEntry, error)

	// DeleteUserHistory removes all of the user's history of the given type
	// (TypeQuery, TypeBrowsing or TypeAll).
	DeleteUserHistory(ctx context.Context, userID, historyType string) error

	// DeleteSpecificQuery removes one query entry by id. Returns ErrNotFound
	// when the entry does not exist or belongs to another user.
	DeleteSpecificQuery(ctx context.Context, userID, queryID string) error
}
