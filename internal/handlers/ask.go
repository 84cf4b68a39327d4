package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"pagelens/internal/contextutil"
	"pagelens/internal/history"
	"pagelens/internal/rag"
)

// AskHandler handles HTTP requests for page questions.
type AskHandler struct {
	engine       rag.Engine
	historyStore history.Store
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(engine rag.Engine, historyStore history.Store) *AskHandler {
	return &AskHandler{
		engine:       engine,
		historyStore: historyStore,
	}
}

// AskRequest represents the HTTP request payload for page questions.
type AskRequest struct {
	Query     string `json:"query"`
	URL       string `json:"url"`
	Timestamp string `json:"timestamp,omitempty"`
}

// AskResponse represents the HTTP response payload for page questions.
type AskResponse struct {
	Success    bool                `json:"success"`
	Answer     string              `json:"answer"`
	AnswerHTML string              `json:"answer_html,omitempty"`
	Sources    map[string][]string `json:"sources"`
	Confidence float64             `json:"confidence"`
}

// ServeHTTP handles HTTP requests for page questions.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(ctx, w, http.StatusBadRequest, "Query is required")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(ctx, w, http.StatusBadRequest, "URL is required")
		return
	}

	result, err := h.engine.Ask(ctx, rag.AskRequest{
		UserID:   userID,
		URL:      req.URL,
		Question: req.Query,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to answer query", "url", req.URL, "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "Failed to process query")
		return
	}

	// History is best-effort; an answered question is not failed retroactively
	// because the history write did not land.
	if _, err := h.historyStore.SaveQueryHistory(ctx, history.QueryEntry{
		UserID:    userID,
		Query:     req.Query,
		Answer:    result.Answer,
		URL:       req.URL,
		Timestamp: requestTimestamp(req.Timestamp),
	}); err != nil {
		logger.WarnContext(ctx, "failed to save query history", "error", err)
	}

	writeJSON(ctx, w, http.StatusOK, AskResponse{
		Success:    true,
		Answer:     result.Answer,
		AnswerHTML: result.AnswerHTML,
		Sources:    result.Sources,
		Confidence: result.Confidence,
	})
}

// requestTimestamp parses the client-supplied timestamp, defaulting to now.
func requestTimestamp(raw string) time.Time {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts
	}
	return time.Now().UTC()
}
