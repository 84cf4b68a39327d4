package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"pagelens/internal/contextutil"
	"pagelens/internal/ingest"
)

// Ingestor makes sure a page's content is indexed for a user.
type Ingestor interface {
	EnsureIngested(ctx context.Context, userID, url string) (ingest.Outcome, error)
}

// ContentHandler handles HTTP requests to process webpage content.
type ContentHandler struct {
	ingestor Ingestor
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(ingestor Ingestor) *ContentHandler {
	return &ContentHandler{ingestor: ingestor}
}

// ContentRequest represents the HTTP request payload for content processing.
type ContentRequest struct {
	URL       string `json:"url"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ContentResponse represents the HTTP response payload for content processing.
type ContentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ServeHTTP handles HTTP requests to process webpage content.
func (h *ContentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req ContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(ctx, w, http.StatusBadRequest, "URL is required")
		return
	}

	outcome, err := h.ingestor.EnsureIngested(ctx, userID, req.URL)
	if err != nil {
		logger.ErrorContext(ctx, "failed to process content", "url", req.URL, "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "Failed to process content")
		return
	}

	resp := ContentResponse{Status: outcome.String()}
	switch outcome {
	case ingest.OutcomeIngested:
		resp.Success = true
		resp.Message = "Content processed and stored successfully"
	case ingest.OutcomeAlreadyPresent:
		resp.Message = "Content already exists"
	case ingest.OutcomeBlocked:
		resp.Message = "Site blocks automated access"
	default:
		resp.Message = "Content could not be extracted"
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}
