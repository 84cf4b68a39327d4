package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
)

const (
	queryHistoryFile    = "query_history.json"
	browsingHistoryFile = "browsing_history.json"
)

// FileStore implements Store on local JSON files, one per history type.
// Intended for development and single-node deployments without a database.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates a file-backed history store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// SaveQueryHistory appends a query entry and returns its id.
func (s *FileStore) SaveQueryHistory(ctx context.Context, entry QueryEntry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	var entries []QueryEntry
	if err := s.load(queryHistoryFile, &entries); err != nil {
		return "", err
	}
	entries = append(entries, entry)
	if err := s.save(queryHistoryFile, entries); err != nil {
		return "", err
	}
	return entry.ID, nil
}

// SaveBrowsingHistory appends a browsing entry and returns its id.
func (s *FileStore) SaveBrowsingHistory(ctx context.Context, entry BrowsingEntry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	var entries []BrowsingEntry
	if err := s.load(browsingHistoryFile, &entries); err != nil {
		return "", err
	}
	entries = append(entries, entry)
	if err := s.save(browsingHistoryFile, entries); err != nil {
		return "", err
	}
	return entry.ID, nil
}

// GetUserHistory returns both history types for the user, newest first.
func (s *FileStore) GetUserHistory(ctx context.Context, userID string, limit, offset int) (*UserHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	browsing, err := s.browsingForUser(userID, limit, offset)
	if err != nil {
		return nil, err
	}
	queries, err := s.queriesForUser(userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &UserHistory{
		BrowsingHistory: browsing,
		QueryHistory:    queries,
	}, nil
}

// GetQueryHistory returns the user's query history, newest first.
func (s *FileStore) GetQueryHistory(ctx context.Context, userID string, limit, offset int) ([]QueryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queriesForUser(userID, limit, offset)
}

// DeleteUserHistory removes all of the user's history of the given type.
func (s *FileStore) DeleteUserHistory(ctx context.Context, userID, historyType string) error {
	switch historyType {
	case TypeQuery, TypeBrowsing, TypeAll:
	default:
		return fmt.Errorf("invalid history type: %q", historyType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if historyType == TypeQuery || historyType == TypeAll {
		var entries []QueryEntry
		if err := s.load(queryHistoryFile, &entries); err != nil {
			return err
		}
		kept := entries[:0]
		for _, e := range entries {
			if e.UserID != userID {
				kept = append(kept, e)
			}
		}
		if err := s.save(queryHistoryFile, kept); err != nil {
			return err
		}
	}

	if historyType == TypeBrowsing || historyType == TypeAll {
		var entries []BrowsingEntry
		if err := s.load(browsingHistoryFile, &entries); err != nil {
			return err
		}
		kept := entries[:0]
		for _, e := range entries {
			if e.UserID != userID {
				kept = append(kept, e)
			}
		}
		if err := s.save(browsingHistoryFile, kept); err != nil {
			return err
		}
	}
	return nil
}

// DeleteSpecificQuery removes one query entry owned by the user.
func (s *FileStore) DeleteSpecificQuery(ctx context.Context, userID, queryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []QueryEntry
	if err := s.load(queryHistoryFile, &entries); err != nil {
		return err
	}

	kept := entries[:0]
	found := false
	for _, e := range entries {
		if e.UserID == userID && e.ID == queryID {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return ErrNotFound
	}
	return s.save(queryHistoryFile, kept)
}

func (s *FileStore) queriesForUser(userID string, limit, offset int) ([]QueryEntry, error) {
	var entries []QueryEntry
	if err := s.load(queryHistoryFile, &entries); err != nil {
		return nil, err
	}

	matched := []QueryEntry{}
	for _, e := range entries {
		if e.UserID == userID {
			matched = append(matched, e)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})
	return paginate(matched, limit, offset), nil
}

func (s *FileStore) browsingForUser(userID string, limit, offset int) ([]BrowsingEntry, error) {
	var entries []BrowsingEntry
	if err := s.load(browsingHistoryFile, &entries); err != nil {
		return nil, err
	}

	matched := []BrowsingEntry{}
	for _, e := range entries {
		if e.UserID == userID {
			matched = append(matched, e)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})
	return paginate(matched, limit, offset), nil
}

// paginate applies limit/offset to a sorted slice.
func paginate[T any](entries []T, limit, offset int) []T {
	if offset >= len(entries) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(entries) {
		end = len(entries)
	}
	return entries[offset:end]
}

// load reads a JSON file into dst; a missing file yields an empty slice.
func (s *FileStore) load(name string, dst any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

// save writes entries to a JSON file atomically (write-then-rename).
func (s *FileStore) save(name string, entries any) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}
