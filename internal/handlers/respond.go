package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"pagelens/internal/contextutil"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(ctx context.Context, w http.ResponseWriter, statusCode int, message string) {
	writeJSON(ctx, w, statusCode, ErrorResponse{Error: message})
}

// requireUserID extracts the authenticated user id from the request context.
// The auth middleware guarantees it is present on protected routes; a missing
// id means the handler was wired without the middleware.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := contextutil.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(r.Context(), w, http.StatusUnauthorized, "Authentication required")
		return "", false
	}
	return userID, true
}

// paginationParams parses limit/offset query parameters with sane bounds.
func paginationParams(r *http.Request) (limit, offset int) {
	limit, offset = 100, 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > 500 {
		limit = 500
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
