package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// sqliteTimeLayout is a fixed-width RFC3339 variant. Fractional seconds keep
// their trailing zeros so lexicographic ORDER BY on the TEXT column matches
// chronological order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store on a SQLite database: rows keyed by id with a
// user_id partition and a timestamp sort key.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and runs migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// migrate creates the history tables. Idempotent.
func migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS query_history (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			query TEXT NOT NULL,
			answer TEXT NOT NULL,
			url TEXT NOT NULL,
			timestamp TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_query_history_user_ts
			ON query_history (user_id, timestamp DESC);`,
		`CREATE TABLE IF NOT EXISTS browsing_history (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			url TEXT NOT NULL,
			title TEXT,
			timestamp TEXT NOT NULL,
			metadata TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_browsing_history_user_ts
			ON browsing_history (user_id, timestamp DESC);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveQueryHistory appends a query entry and returns its id.
func (s *SQLiteStore) SaveQueryHistory(ctx context.Context, entry QueryEntry) (string, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO query_history (id, user_id, query, answer, url, timestamp) VALUES (?, ?, ?, ?, ?, ?)",
		entry.ID, entry.UserID, entry.Query, entry.Answer, entry.URL, entry.Timestamp.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert query history: %w", err)
	}
	return entry.ID, nil
}

// SaveBrowsingHistory appends a browsing entry and returns its id.
func (s *SQLiteStore) SaveBrowsingHistory(ctx context.Context, entry BrowsingEntry) (string, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	var metadata []byte
	if len(entry.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(entry.Metadata)
		if err != nil {
			return "", fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO browsing_history (id, user_id, url, title, timestamp, metadata) VALUES (?, ?, ?, ?, ?, ?)",
		entry.ID, entry.UserID, entry.URL, entry.Title, entry.Timestamp.UTC().Format(sqliteTimeLayout), nullableString(metadata),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert browsing history: %w", err)
	}
	return entry.ID, nil
}

// GetUserHistory returns both history types for the user, newest first.
func (s *SQLiteStore) GetUserHistory(ctx context.Context, userID string, limit, offset int) (*UserHistory, error) {
	browsing, err := s.getBrowsingHistory(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	queries, err := s.GetQueryHistory(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &UserHistory{
		BrowsingHistory: browsing,
		QueryHistory:    queries,
	}, nil
}

// GetQueryHistory returns the user's query history, newest first.
func (s *SQLiteStore) GetQueryHistory(ctx context.Context, userID string, limit, offset int) ([]QueryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, query, answer, url, timestamp FROM query_history WHERE user_id = ? ORDER BY timestamp DESC LIMIT ? OFFSET ?",
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := []QueryEntry{}
	for rows.Next() {
		var entry QueryEntry
		var ts string
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Query, &entry.Answer, &entry.URL, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan query history row: %w", err)
		}
		entry.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}

func (s *SQLiteStore) getBrowsingHistory(ctx context.Context, userID string, limit, offset int) ([]BrowsingEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, url, title, timestamp, metadata FROM browsing_history WHERE user_id = ? ORDER BY timestamp DESC LIMIT ? OFFSET ?",
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query browsing history: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := []BrowsingEntry{}
	for rows.Next() {
		var entry BrowsingEntry
		var ts string
		var title, metadata sql.NullString
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.URL, &title, &ts, &metadata); err != nil {
			return nil, fmt.Errorf("failed to scan browsing history row: %w", err)
		}
		entry.Title = title.String
		entry.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		if metadata.Valid && metadata.String != "" {
			_ = json.Unmarshal([]byte(metadata.String), &entry.Metadata)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}

// DeleteUserHistory removes all history rows of the given type for the user.
func (s *SQLiteStore) DeleteUserHistory(ctx context.Context, userID, historyType string) error {
	switch historyType {
	case TypeQuery, TypeBrowsing, TypeAll:
	default:
		return fmt.Errorf("invalid history type: %q", historyType)
	}

	if historyType == TypeQuery || historyType == TypeAll {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM query_history WHERE user_id = ?", userID); err != nil {
			return fmt.Errorf("failed to delete query history: %w", err)
		}
	}
	if historyType == TypeBrowsing || historyType == TypeAll {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM browsing_history WHERE user_id = ?", userID); err != nil {
			return fmt.Errorf("failed to delete browsing history: %w", err)
		}
	}
	return nil
}

// DeleteSpecificQuery removes one query entry owned by the user.
func (s *SQLiteStore) DeleteSpecificQuery(ctx context.Context, userID, queryID string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM query_history WHERE id = ? AND user_id = ?",
		queryID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete query: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// nullableString converts an optional JSON blob to a sql-friendly value.
func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
