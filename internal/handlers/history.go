package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"pagelens/internal/contextutil"
	"pagelens/internal/history"
)

// HistoryHandler handles HTTP requests for per-user history.
type HistoryHandler struct {
	store history.Store
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(store history.Store) *HistoryHandler {
	return &HistoryHandler{store: store}
}

// RecordRequest represents the HTTP request payload for recording a page visit.
type RecordRequest struct {
	URL       string         `json:"url"`
	Title     string         `json:"title,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// RecordResponse represents the HTTP response payload for recording a page visit.
type RecordResponse struct {
	Success   bool   `json:"success"`
	HistoryID string `json:"history_id"`
}

// Record handles POST requests that record a visited page.
func (h *HistoryHandler) Record(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(ctx, w, http.StatusBadRequest, "URL is required")
		return
	}

	id, err := h.store.SaveBrowsingHistory(ctx, history.BrowsingEntry{
		UserID:    userID,
		URL:       req.URL,
		Title:     req.Title,
		Timestamp: requestTimestamp(req.Timestamp),
		Metadata:  req.Metadata,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to record history", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "Failed to record history")
		return
	}

	writeJSON(ctx, w, http.StatusCreated, RecordResponse{Success: true, HistoryID: id})
}

// Get handles GET requests for the user's combined history.
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit, offset := paginationParams(r)
	userHistory, err := h.store.GetUserHistory(ctx, userID, limit, offset)
	if err != nil {
		logger.ErrorContext(ctx, "failed to get history", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}

	writeJSON(ctx, w, http.StatusOK, userHistory)
}

// GetQueries handles GET requests for the user's query history only.
func (h *HistoryHandler) GetQueries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit, offset := paginationParams(r)
	entries, err := h.store.GetQueryHistory(ctx, userID, limit, offset)
	if err != nil {
		logger.ErrorContext(ctx, "failed to get query history", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "Failed to retrieve query history")
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]any{
		"success":       true,
		"query_history": entries,
	})
}

// Delete handles DELETE requests that clear the user's history. The type
// query parameter selects which history to clear and defaults to all.
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	historyType := r.URL.Query().Get("type")
	if historyType == "" {
		historyType = history.TypeAll
	}
	switch historyType {
	case history.TypeQuery, history.TypeBrowsing, history.TypeAll:
	default:
		writeError(ctx, w, http.StatusBadRequest, "Invalid history type")
		return
	}

	if err := h.store.DeleteUserHistory(ctx, userID, historyType); err != nil {
		logger.ErrorContext(ctx, "failed to delete history", "type", historyType, "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "Failed to delete history")
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]any{"success": true})
}

// DeleteQuery handles DELETE requests for a single query history entry.
func (h *HistoryHandler) DeleteQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	queryID := chi.URLParam(r, "id")
	if queryID == "" {
		writeError(ctx, w, http.StatusBadRequest, "Query id is required")
		return
	}

	if err := h.store.DeleteSpecificQuery(ctx, userID, queryID); err != nil {
		if errors.Is(err, history.ErrNotFound) {
			writeError(ctx, w, http.StatusNotFound, "Query not found")
			return
		}
		logger.ErrorContext(ctx, "failed to delete query", "query_id", queryID, "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "Failed to delete query")
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]any{"success": true})
}
